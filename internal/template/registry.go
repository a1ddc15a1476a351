// Package template holds the prompt template registry: the mapping from
// content type to its parametrized prompt template and declared output
// schema. The registry is built once at startup and is read-only afterwards,
// so concurrent lookups need no locking.
package template

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/studygen/studygen-api/internal/domain"
)

// Registry errors
var (
	// ErrUnknownContentType is returned when a content type has no
	// registered template.
	ErrUnknownContentType = domain.ErrUnknownContentType

	// ErrTemplateRender is returned when a template cannot be executed,
	// typically because a placeholder has no corresponding request field.
	ErrTemplateRender = errors.New("failed to render prompt template")
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// PromptTemplate pairs a content type's parsed prompt template with its
// declared output schema.
type PromptTemplate struct {
	ContentType domain.ContentType
	Schema      Schema

	tmpl *texttemplate.Template
}

// Registry maps content types to their prompt templates. Read-only after
// construction.
type Registry struct {
	templates map[domain.ContentType]*PromptTemplate
}

// NewRegistry builds a registry from the embedded default templates,
// optionally overridden per content type by <type>.tmpl files in overrideDir.
// Every supported content type must end up with a parseable template.
func NewRegistry(overrideDir string) (*Registry, error) {
	templates := make(map[domain.ContentType]*PromptTemplate, len(schemas))

	for _, contentType := range domain.ContentTypes() {
		schema, ok := SchemaFor(contentType)
		if !ok {
			return nil, fmt.Errorf("no schema declared for content type %q", contentType)
		}

		body, err := templateBody(contentType, overrideDir)
		if err != nil {
			return nil, err
		}

		tmpl, err := texttemplate.New(string(contentType)).
			Option("missingkey=error").
			Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %q: %w", contentType, err)
		}

		templates[contentType] = &PromptTemplate{
			ContentType: contentType,
			Schema:      schema,
			tmpl:        tmpl,
		}
	}

	return &Registry{templates: templates}, nil
}

// templateBody loads the template source for a content type, preferring an
// override file when one exists.
func templateBody(contentType domain.ContentType, overrideDir string) (string, error) {
	if overrideDir != "" {
		path := filepath.Join(overrideDir, string(contentType)+".tmpl")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to read template override %s: %w", path, err)
		}
	}

	data, err := defaultTemplates.ReadFile("templates/" + string(contentType) + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("missing embedded template for %q: %w", contentType, err)
	}
	return string(data), nil
}

// Get returns the template registered for the content type.
// Returns ErrUnknownContentType if none is registered.
func (r *Registry) Get(contentType domain.ContentType) (*PromptTemplate, error) {
	tmpl, ok := r.templates[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}
	return tmpl, nil
}

// Render executes the template against the request, producing the prompt
// string sent to providers. elaboration is an optional extra instruction
// appended on quality-rejected regeneration; it is empty on first attempts.
// Returns ErrTemplateRender if a placeholder cannot be resolved.
func (r *Registry) Render(tmpl *PromptTemplate, req *domain.ContentRequest, elaboration string) (string, error) {
	data := map[string]string{
		"Topic":        req.Topic,
		"Audience":     audiencePhrase(req.Audience),
		"Requirements": req.Requirements,
		"SchemaHint":   SchemaHint(tmpl.Schema),
		"Elaboration":  elaboration,
	}

	var buf bytes.Buffer
	if err := tmpl.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// SchemaHint renders a JSON skeleton of the schema, sent to providers to
// steer their output shape.
func SchemaHint(schema Schema) string {
	skeleton := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		switch f.Kind {
		case domain.FieldText:
			skeleton[f.Name] = "string"
		case domain.FieldList:
			skeleton[f.Name] = []string{"string", "..."}
		case domain.FieldPairs:
			skeleton[f.Name] = []map[string]string{{"key": "string", "value": "string"}}
		}
	}

	// Deterministic ordering matters for prompt caching and for tests;
	// build the object manually in declaration order.
	var b strings.Builder
	b.WriteString("{")
	for i, f := range schema.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fragment, _ := json.Marshal(skeleton[f.Name])
		fmt.Fprintf(&b, "%q: %s", f.Name, fragment)
	}
	b.WriteString("}")
	return b.String()
}

// audiencePhrase renders an audience band as natural prompt language.
func audiencePhrase(a domain.Audience) string {
	switch a {
	case domain.AudienceElementary:
		return "elementary school students"
	case domain.AudienceMiddleSchool:
		return "middle school students"
	case domain.AudienceHighSchool:
		return "high school students"
	case domain.AudienceCollege:
		return "college students"
	case domain.AudienceAdult:
		return "adult learners"
	default:
		return string(a)
	}
}
