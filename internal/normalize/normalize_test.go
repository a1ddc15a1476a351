package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/normalize"
	"github.com/studygen/studygen-api/internal/template"
)

func rawResponse(text string) *generation.RawResponse {
	return &generation.RawResponse{
		Provider:   "test-provider",
		Text:       text,
		Latency:    5 * time.Millisecond,
		ReceivedAt: time.Now().UTC(),
	}
}

func summarySchema(t *testing.T) template.Schema {
	t.Helper()
	schema, ok := template.SchemaFor(domain.ContentTypeSummary)
	require.True(t, ok)
	return schema
}

func TestNormalizeWellFormedJSON(t *testing.T) {
	t.Parallel()

	raw := rawResponse(`{
		"summary": "Photosynthesis converts light into chemical energy.",
		"key_points": ["chlorophyll absorbs light", "water is split", "glucose is produced"]
	}`)

	content, err := normalize.Normalize(raw, domain.ContentTypeSummary, summarySchema(t))

	require.NoError(t, err)
	assert.Equal(t, "test-provider", content.Provider)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", content.Fields["summary"].Text)
	assert.Equal(t, []string{
		"chlorophyll absorbs light",
		"water is split",
		"glucose is produced",
	}, content.Fields["key_points"].Items)
}

func TestNormalizeStripsMarkdownFences(t *testing.T) {
	t.Parallel()

	raw := rawResponse("```json\n{\"summary\": \"Brief.\", \"key_points\": [\"one\", \"two\"]}\n```")

	content, err := normalize.Normalize(raw, domain.ContentTypeSummary, summarySchema(t))

	require.NoError(t, err)
	assert.Equal(t, "Brief.", content.Fields["summary"].Text)
}

func TestNormalizeMissingRequiredField(t *testing.T) {
	t.Parallel()

	raw := rawResponse(`{"summary": "Only a summary, no key points."}`)

	content, err := normalize.Normalize(raw, domain.ContentTypeSummary, summarySchema(t))

	assert.Nil(t, content)
	assert.ErrorIs(t, err, normalize.ErrSchemaMismatch)

	var sm *normalize.SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "key_points", sm.Field)
}

func TestNormalizeShapeMismatch(t *testing.T) {
	t.Parallel()

	// key_points must be an ordered list; a single block is a mismatch,
	// not something to silently coerce.
	raw := rawResponse(`{"summary": "ok", "key_points": "just one big paragraph"}`)

	content, err := normalize.Normalize(raw, domain.ContentTypeSummary, summarySchema(t))

	assert.Nil(t, content)
	assert.ErrorIs(t, err, normalize.ErrSchemaMismatch)
}

func TestNormalizeEmptyRequiredFieldIsMismatch(t *testing.T) {
	t.Parallel()

	raw := rawResponse(`{"summary": "   ", "key_points": ["a"]}`)

	_, err := normalize.Normalize(raw, domain.ContentTypeSummary, summarySchema(t))
	assert.ErrorIs(t, err, normalize.ErrSchemaMismatch)
}

func TestNormalizePairsShapes(t *testing.T) {
	t.Parallel()

	schema, ok := template.SchemaFor(domain.ContentTypeFlashcards)
	require.True(t, ok)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "canonical key value objects",
			body: `{"cards": [{"key": "What is ATP?", "value": "The cell's energy currency."},
				{"key": "What is NADPH?", "value": "An electron carrier."}]}`,
		},
		{
			name: "front back objects",
			body: `{"cards": [{"front": "What is ATP?", "back": "The cell's energy currency."},
				{"front": "What is NADPH?", "back": "An electron carrier."}]}`,
		},
		{
			name: "two element arrays",
			body: `{"cards": [["What is ATP?", "The cell's energy currency."],
				["What is NADPH?", "An electron carrier."]]}`,
		},
		{
			name: "plain object",
			body: `{"cards": {"What is ATP?": "The cell's energy currency.",
				"What is NADPH?": "An electron carrier."}}`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			content, err := normalize.Normalize(rawResponse(tc.body), domain.ContentTypeFlashcards, schema)
			require.NoError(t, err)

			pairs := content.Fields["cards"].Pairs
			require.Len(t, pairs, 2)
			assert.Equal(t, "What is ATP?", pairs[0].Key)
			assert.Equal(t, "The cell's energy currency.", pairs[0].Value)
			assert.Equal(t, "What is NADPH?", pairs[1].Key)
		})
	}
}

func TestNormalizeMarkdownFallback(t *testing.T) {
	t.Parallel()

	body := `# Summary

Photosynthesis is how plants make food from light.

# Key Points

1. Chlorophyll absorbs light
2. Water molecules are split
3. Glucose is produced
`

	content, err := normalize.Normalize(rawResponse(body), domain.ContentTypeSummary, summarySchema(t))

	require.NoError(t, err)
	assert.Contains(t, content.Fields["summary"].Text, "plants make food")
	assert.Equal(t, []string{
		"Chlorophyll absorbs light",
		"Water molecules are split",
		"Glucose is produced",
	}, content.Fields["key_points"].Items)
}

func TestNormalizeMarkdownPairs(t *testing.T) {
	t.Parallel()

	schema, ok := template.SchemaFor(domain.ContentTypeFAQ)
	require.True(t, ok)

	body := `# Questions

- Why is the sky blue?: Rayleigh scattering favors shorter wavelengths.
- What is air made of?: Mostly nitrogen and oxygen.
`

	content, err := normalize.Normalize(rawResponse(body), domain.ContentTypeFAQ, schema)

	require.NoError(t, err)
	pairs := content.Fields["questions"].Pairs
	require.Len(t, pairs, 2)
	assert.Equal(t, "Why is the sky blue?", pairs[0].Key)
	assert.Equal(t, "Rayleigh scattering favors shorter wavelengths.", pairs[0].Value)
}

func TestNormalizeMarkdownSingleFieldWholeDocument(t *testing.T) {
	t.Parallel()

	schema, ok := template.SchemaFor(domain.ContentTypeFlashcards)
	require.True(t, ok)

	// No headings at all; the document's list is the single required field.
	body := `- Mitochondria: The powerhouse of the cell.
- Ribosome: Builds proteins from RNA.
`

	content, err := normalize.Normalize(rawResponse(body), domain.ContentTypeFlashcards, schema)

	require.NoError(t, err)
	assert.Len(t, content.Fields["cards"].Pairs, 2)
}

func TestNormalizeGarbageFails(t *testing.T) {
	t.Parallel()

	_, err := normalize.Normalize(rawResponse("I cannot help with that."), domain.ContentTypeSummary, summarySchema(t))
	assert.ErrorIs(t, err, normalize.ErrSchemaMismatch)

	_, err = normalize.Normalize(rawResponse("   "), domain.ContentTypeSummary, summarySchema(t))
	assert.ErrorIs(t, err, normalize.ErrSchemaMismatch)
}

func TestNormalizeOptionalFieldMayBeAbsent(t *testing.T) {
	t.Parallel()

	schema, ok := template.SchemaFor(domain.ContentTypeQuiz)
	require.True(t, ok)

	// "instructions" is optional for quizzes.
	raw := rawResponse(`{"questions": [{"key": "2+2?", "value": "4"}]}`)

	content, err := normalize.Normalize(raw, domain.ContentTypeQuiz, schema)

	require.NoError(t, err)
	_, present := content.Fields["instructions"]
	assert.False(t, present)
	assert.Len(t, content.Fields["questions"].Pairs, 1)
}
