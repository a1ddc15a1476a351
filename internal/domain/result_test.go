package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/domain"
)

func testContent(t *testing.T) (*domain.ContentRequest, *domain.NormalizedContent) {
	t.Helper()

	req, err := domain.NewContentRequest("Photosynthesis", domain.ContentTypeSummary, domain.AudienceHighSchool, "")
	require.NoError(t, err)

	content := &domain.NormalizedContent{
		ContentType: domain.ContentTypeSummary,
		Fields: map[string]domain.FieldValue{
			"summary":    domain.TextValue("Plants convert light into chemical energy."),
			"key_points": domain.ListValue([]string{"chlorophyll", "light reactions"}),
		},
		Provider:    "gemini",
		GeneratedAt: time.Now().UTC(),
	}

	return req, content
}

func TestNewGenerationResult(t *testing.T) {
	t.Parallel()

	t.Run("passing score", func(t *testing.T) {
		t.Parallel()

		req, content := testContent(t)
		score := &domain.QualityScore{
			Dimensions: map[string]float64{"structural_completeness": 0.9},
			Aggregate:  0.9,
			Passed:     true,
		}

		result, err := domain.NewGenerationResult(req, content, score, nil, false)
		require.NoError(t, err)
		assert.False(t, result.BestEffort)
		assert.Equal(t, score, result.Score)
	})

	t.Run("failing score requires best-effort flag", func(t *testing.T) {
		t.Parallel()

		req, content := testContent(t)
		score := &domain.QualityScore{Aggregate: 0.4, Passed: false}

		result, err := domain.NewGenerationResult(req, content, score, nil, false)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrResultNotFlagged)

		flagged, err := domain.NewGenerationResult(req, content, score, nil, true)
		require.NoError(t, err)
		assert.True(t, flagged.BestEffort)
	})

	t.Run("missing score is rejected", func(t *testing.T) {
		t.Parallel()

		req, content := testContent(t)

		result, err := domain.NewGenerationResult(req, content, nil, nil, false)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrResultWithoutScore)
	})
}
