package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Content request validation errors
var (
	// ErrTopicEmpty is returned when a content request has no topic.
	ErrTopicEmpty = errors.New("topic cannot be empty")

	// ErrUnknownContentType is returned when a content type is not one of the
	// supported kinds.
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrUnknownAudience is returned when an audience band is not recognized.
	ErrUnknownAudience = errors.New("unknown audience")
)

// ContentType identifies one of the educational artifact kinds the engine
// can produce.
type ContentType string

// Supported content types.
const (
	ContentTypeStudyGuide    ContentType = "study_guide"
	ContentTypeFlashcards    ContentType = "flashcards"
	ContentTypeQuiz          ContentType = "quiz"
	ContentTypePodcastScript ContentType = "podcast_script"
	ContentTypeOutline       ContentType = "outline"
	ContentTypeFAQ           ContentType = "faq"
	ContentTypeSummary       ContentType = "summary"
	ContentTypeTimeline      ContentType = "timeline"
)

// ContentTypes lists every supported content type in a stable order.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentTypeStudyGuide,
		ContentTypeFlashcards,
		ContentTypeQuiz,
		ContentTypePodcastScript,
		ContentTypeOutline,
		ContentTypeFAQ,
		ContentTypeSummary,
		ContentTypeTimeline,
	}
}

// Valid reports whether the content type is one of the supported kinds.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeStudyGuide, ContentTypeFlashcards, ContentTypeQuiz,
		ContentTypePodcastScript, ContentTypeOutline, ContentTypeFAQ,
		ContentTypeSummary, ContentTypeTimeline:
		return true
	}
	return false
}

// Audience identifies the target age band for generated content.
type Audience string

// Supported audience bands.
const (
	AudienceElementary   Audience = "elementary"
	AudienceMiddleSchool Audience = "middle_school"
	AudienceHighSchool   Audience = "high_school"
	AudienceCollege      Audience = "college"
	AudienceAdult        Audience = "adult"
)

// Valid reports whether the audience band is recognized.
func (a Audience) Valid() bool {
	switch a {
	case AudienceElementary, AudienceMiddleSchool, AudienceHighSchool,
		AudienceCollege, AudienceAdult:
		return true
	}
	return false
}

// ContentRequest describes a single content generation request.
// It is immutable once constructed; callers create it via NewContentRequest.
type ContentRequest struct {
	ID           uuid.UUID   `json:"id"`
	Topic        string      `json:"topic"`
	ContentType  ContentType `json:"content_type"`
	Audience     Audience    `json:"audience"`
	Requirements string      `json:"requirements,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewContentRequest creates a validated ContentRequest for the given topic,
// content type and audience. Requirements is optional free text appended to
// the prompt.
func NewContentRequest(topic string, contentType ContentType, audience Audience, requirements string) (*ContentRequest, error) {
	req := &ContentRequest{
		ID:           uuid.New(),
		Topic:        topic,
		ContentType:  contentType,
		Audience:     audience,
		Requirements: requirements,
		CreatedAt:    time.Now().UTC(),
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks the request fields against the supported enumerations.
func (r *ContentRequest) Validate() error {
	if r.Topic == "" {
		return ErrTopicEmpty
	}

	if !r.ContentType.Valid() {
		return ErrUnknownContentType
	}

	if !r.Audience.Valid() {
		return ErrUnknownAudience
	}

	return nil
}
