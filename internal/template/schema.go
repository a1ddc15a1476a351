package template

import "github.com/studygen/studygen-api/internal/domain"

// Field declares one named field of a content type's output schema.
type Field struct {
	Name     string
	Kind     domain.FieldKind
	Required bool
}

// Schema is the declared output structure for one content type. Fields keep
// their declaration order so schema hints render deterministically.
type Schema struct {
	Fields []Field
}

// Field returns the declaration for the named field, if present.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// schemas declares the output schema for every supported content type.
var schemas = map[domain.ContentType]Schema{
	domain.ContentTypeStudyGuide: {Fields: []Field{
		{Name: "overview", Kind: domain.FieldText, Required: true},
		{Name: "key_concepts", Kind: domain.FieldList, Required: true},
		{Name: "sections", Kind: domain.FieldPairs, Required: true},
		{Name: "review_questions", Kind: domain.FieldList, Required: true},
	}},
	domain.ContentTypeFlashcards: {Fields: []Field{
		{Name: "cards", Kind: domain.FieldPairs, Required: true},
	}},
	domain.ContentTypeQuiz: {Fields: []Field{
		{Name: "instructions", Kind: domain.FieldText, Required: false},
		{Name: "questions", Kind: domain.FieldPairs, Required: true},
	}},
	domain.ContentTypePodcastScript: {Fields: []Field{
		{Name: "title", Kind: domain.FieldText, Required: true},
		{Name: "intro", Kind: domain.FieldText, Required: true},
		{Name: "segments", Kind: domain.FieldList, Required: true},
		{Name: "outro", Kind: domain.FieldText, Required: true},
	}},
	domain.ContentTypeOutline: {Fields: []Field{
		{Name: "title", Kind: domain.FieldText, Required: true},
		{Name: "sections", Kind: domain.FieldList, Required: true},
	}},
	domain.ContentTypeFAQ: {Fields: []Field{
		{Name: "questions", Kind: domain.FieldPairs, Required: true},
	}},
	domain.ContentTypeSummary: {Fields: []Field{
		{Name: "summary", Kind: domain.FieldText, Required: true},
		{Name: "key_points", Kind: domain.FieldList, Required: true},
	}},
	domain.ContentTypeTimeline: {Fields: []Field{
		{Name: "era_overview", Kind: domain.FieldText, Required: false},
		{Name: "events", Kind: domain.FieldPairs, Required: true},
	}},
}

// SchemaFor returns the declared schema for a content type.
func SchemaFor(contentType domain.ContentType) (Schema, bool) {
	s, ok := schemas[contentType]
	return s, ok
}
