package template_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/template"
)

// placeholderPattern matches anything text/template left unexecuted.
var placeholderPattern = regexp.MustCompile(`{{[^}]*}}|<no value>`)

func TestRenderAllContentTypes(t *testing.T) {
	t.Parallel()

	registry, err := template.NewRegistry("")
	require.NoError(t, err)

	for _, contentType := range domain.ContentTypes() {
		contentType := contentType
		t.Run(string(contentType), func(t *testing.T) {
			t.Parallel()

			req, err := domain.NewContentRequest(
				"Photosynthesis",
				contentType,
				domain.AudienceHighSchool,
				"keep it under 500 words",
			)
			require.NoError(t, err)

			tmpl, err := registry.Get(contentType)
			require.NoError(t, err)

			prompt, err := registry.Render(tmpl, req, "")
			require.NoError(t, err)

			assert.NotEmpty(t, prompt)
			assert.Contains(t, prompt, "Photosynthesis")
			assert.Contains(t, prompt, "high school students")
			assert.Contains(t, prompt, "keep it under 500 words")
			assert.False(t, placeholderPattern.MatchString(prompt),
				"prompt contains unresolved placeholders: %s", prompt)
		})
	}
}

func TestRenderWithElaboration(t *testing.T) {
	t.Parallel()

	registry, err := template.NewRegistry("")
	require.NoError(t, err)

	req, err := domain.NewContentRequest("Gravity", domain.ContentTypeSummary, domain.AudienceCollege, "")
	require.NoError(t, err)

	tmpl, err := registry.Get(domain.ContentTypeSummary)
	require.NoError(t, err)

	first, err := registry.Render(tmpl, req, "")
	require.NoError(t, err)

	second, err := registry.Render(tmpl, req, "Your previous answer lacked detail. Elaborate on every point.")
	require.NoError(t, err)

	assert.NotContains(t, first, "previous answer")
	assert.Contains(t, second, "Elaborate on every point")
}

func TestGetUnknownContentType(t *testing.T) {
	t.Parallel()

	registry, err := template.NewRegistry("")
	require.NoError(t, err)

	tmpl, err := registry.Get(domain.ContentType("sonnet"))
	assert.Nil(t, tmpl)
	assert.ErrorIs(t, err, template.ErrUnknownContentType)
}

func TestOverrideDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := "Custom flashcards prompt about {{.Topic}} using schema {{.SchemaHint}}{{.Elaboration}}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flashcards.tmpl"), []byte(override), 0o600))

	registry, err := template.NewRegistry(dir)
	require.NoError(t, err)

	req, err := domain.NewContentRequest("Cell division", domain.ContentTypeFlashcards, domain.AudienceAdult, "")
	require.NoError(t, err)

	tmpl, err := registry.Get(domain.ContentTypeFlashcards)
	require.NoError(t, err)

	prompt, err := registry.Render(tmpl, req, "")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Custom flashcards prompt about Cell division")

	// Other content types still use the embedded defaults.
	other, err := registry.Get(domain.ContentTypeSummary)
	require.NoError(t, err)
	prompt, err = registry.Render(other, req, "")
	require.NoError(t, err)
	assert.Contains(t, prompt, "prose summary")
}

func TestRenderFailsOnUnknownPlaceholder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := "Tell me about {{.Subject}}" // no such field
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.tmpl"), []byte(override), 0o600))

	registry, err := template.NewRegistry(dir)
	require.NoError(t, err)

	req, err := domain.NewContentRequest("Magnets", domain.ContentTypeFAQ, domain.AudienceAdult, "")
	require.NoError(t, err)

	tmpl, err := registry.Get(domain.ContentTypeFAQ)
	require.NoError(t, err)

	_, err = registry.Render(tmpl, req, "")
	assert.ErrorIs(t, err, template.ErrTemplateRender)
}

func TestSchemaHintShape(t *testing.T) {
	t.Parallel()

	schema, ok := template.SchemaFor(domain.ContentTypeStudyGuide)
	require.True(t, ok)

	hint := template.SchemaHint(schema)
	assert.Contains(t, hint, `"overview": "string"`)
	assert.Contains(t, hint, `"key_concepts"`)
	assert.Contains(t, hint, `"sections"`)

	// Deterministic across calls.
	assert.Equal(t, hint, template.SchemaHint(schema))
}
