// Package quality scores normalized content along independent dimensions
// and aggregates them into a pass/fail verdict. Every dimension is a pure
// function of the content and request; no dimension performs I/O, so scoring
// is deterministic and total.
package quality

import (
	"strings"
	"unicode"

	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/template"
)

// Dimension scores one aspect of normalized content on a [0, 1] scale.
// Implementations must be deterministic pure functions.
type Dimension interface {
	Name() string
	Score(content *domain.NormalizedContent, req *domain.ContentRequest) float64
}

// DefaultDimensions returns the shipped dimension set.
func DefaultDimensions() []Dimension {
	return []Dimension{
		StructuralCompleteness{},
		FactualDensity{},
		AgeAppropriateness{},
		TopicRelevance{},
	}
}

// StructuralCompleteness measures how much of the content type's declared
// schema is present and substantively filled, not just non-empty.
type StructuralCompleteness struct{}

func (StructuralCompleteness) Name() string { return "structural_completeness" }

func (StructuralCompleteness) Score(content *domain.NormalizedContent, _ *domain.ContentRequest) float64 {
	schema, ok := template.SchemaFor(content.ContentType)
	if !ok || len(schema.Fields) == 0 {
		return 0
	}

	var total float64
	for _, f := range schema.Fields {
		value, present := content.Fields[f.Name]
		if !present {
			continue
		}
		total += fieldSubstance(value)
	}

	return clamp(total / float64(len(schema.Fields)))
}

// fieldSubstance rates one field's fill level. A field that exists but holds
// a token or two of content counts for less than a fully developed one.
func fieldSubstance(value domain.FieldValue) float64 {
	switch value.Kind {
	case domain.FieldText:
		return saturate(float64(len(tokenize(value.Text))), 30)

	case domain.FieldList:
		if len(value.Items) == 0 {
			return 0
		}
		return saturate(float64(len(value.Items)), 3)

	case domain.FieldPairs:
		if len(value.Pairs) == 0 {
			return 0
		}
		return saturate(float64(len(value.Pairs)), 3)
	}

	return 0
}

// FactualDensity is a proxy for information content: the unique-token ratio
// of the content's full text, weighted by a length component so that a
// two-word answer cannot score highly just by never repeating itself.
type FactualDensity struct{}

func (FactualDensity) Name() string { return "factual_density" }

func (FactualDensity) Score(content *domain.NormalizedContent, _ *domain.ContentRequest) float64 {
	tokens := tokenize(fullText(content))
	if len(tokens) == 0 {
		return 0
	}

	unique := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		unique[strings.ToLower(tok)] = struct{}{}
	}

	uniqueRatio := float64(len(unique)) / float64(len(tokens))
	lengthScore := saturate(float64(len(tokens)), 120)

	return clamp(0.5*uniqueRatio + 0.5*lengthScore)
}

// AgeAppropriateness compares average word and sentence length against the
// target band for the requested audience. Deviation in either direction
// lowers the score: college material should not read like a picture book.
type AgeAppropriateness struct{}

func (AgeAppropriateness) Name() string { return "age_appropriateness" }

// audienceBand is the target reading complexity for one audience.
type audienceBand struct {
	wordLen     float64
	sentenceLen float64
}

var audienceBands = map[domain.Audience]audienceBand{
	domain.AudienceElementary:   {wordLen: 4.0, sentenceLen: 8},
	domain.AudienceMiddleSchool: {wordLen: 4.5, sentenceLen: 12},
	domain.AudienceHighSchool:   {wordLen: 5.0, sentenceLen: 15},
	domain.AudienceCollege:      {wordLen: 5.5, sentenceLen: 18},
	domain.AudienceAdult:        {wordLen: 5.2, sentenceLen: 16},
}

func (AgeAppropriateness) Score(content *domain.NormalizedContent, req *domain.ContentRequest) float64 {
	band, ok := audienceBands[req.Audience]
	if !ok {
		return 0
	}

	text := fullText(content)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var letterCount int
	for _, tok := range tokens {
		letterCount += len(tok)
	}
	avgWordLen := float64(letterCount) / float64(len(tokens))

	sentences := countSentences(text)
	avgSentenceLen := float64(len(tokens)) / float64(sentences)

	wordScore := 1 - clamp(absDiff(avgWordLen, band.wordLen)/band.wordLen)
	sentenceScore := 1 - clamp(absDiff(avgSentenceLen, band.sentenceLen)/band.sentenceLen)

	return clamp(0.5*wordScore + 0.5*sentenceScore)
}

// TopicRelevance measures how many of the requested topic's terms appear in
// the generated content.
type TopicRelevance struct{}

func (TopicRelevance) Name() string { return "topic_relevance" }

func (TopicRelevance) Score(content *domain.NormalizedContent, req *domain.ContentRequest) float64 {
	topicTerms := significantTerms(req.Topic)
	if len(topicTerms) == 0 {
		return 0
	}

	contentTokens := make(map[string]struct{})
	for _, tok := range tokenize(fullText(content)) {
		contentTokens[strings.ToLower(tok)] = struct{}{}
	}

	matched := 0
	for _, term := range topicTerms {
		if _, ok := contentTokens[term]; ok {
			matched++
		}
	}

	return clamp(float64(matched) / float64(len(topicTerms)))
}

// fullText flattens every field of the content into one text blob, in schema
// declaration order so repeated scoring sees identical input.
func fullText(content *domain.NormalizedContent) string {
	schema, ok := template.SchemaFor(content.ContentType)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, f := range schema.Fields {
		value, present := content.Fields[f.Name]
		if !present {
			continue
		}
		switch value.Kind {
		case domain.FieldText:
			b.WriteString(value.Text)
			b.WriteString("\n")
		case domain.FieldList:
			for _, item := range value.Items {
				b.WriteString(item)
				b.WriteString("\n")
			}
		case domain.FieldPairs:
			for _, pair := range value.Pairs {
				b.WriteString(pair.Key)
				b.WriteString(" ")
				b.WriteString(pair.Value)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// tokenize splits text into alphanumeric word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// significantTerms extracts the lowercased tokens of a topic worth matching,
// skipping short function words.
func significantTerms(topic string) []string {
	var terms []string
	for _, tok := range tokenize(topic) {
		if len(tok) <= 2 {
			continue
		}
		terms = append(terms, strings.ToLower(tok))
	}
	return terms
}

// countSentences counts terminator-delimited sentences, never fewer than one.
func countSentences(text string) int {
	count := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines > count {
		count = lines
	}
	if count < 1 {
		count = 1
	}
	return count
}

func saturate(n, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return clamp(n / target)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
