package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/testutils"
)

func testProvider() *Provider {
	return &Provider{
		id:          "openai-secondary",
		tier:        2,
		model:       "gpt-4o",
		callTimeout: time.Second,
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.ProviderConfig
	}{
		{
			name: "empty api key",
			cfg:  config.ProviderConfig{ID: "openai-secondary", Model: "gpt-4o"},
		},
		{
			name: "empty model",
			cfg:  config.ProviderConfig{ID: "openai-secondary", APIKey: "test-key"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tc.cfg, testutils.NewTestLogger(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantClass generation.FailureClass
	}{
		{
			name:      "rate limited",
			err:       &openai.Error{StatusCode: http.StatusTooManyRequests},
			wantClass: generation.FailureRateLimited,
		},
		{
			name:      "unauthorized",
			err:       &openai.Error{StatusCode: http.StatusUnauthorized},
			wantClass: generation.FailureAuth,
		},
		{
			name:      "server error",
			err:       &openai.Error{StatusCode: http.StatusBadGateway},
			wantClass: generation.FailureUnavailable,
		},
		{
			name:      "deadline",
			err:       context.DeadlineExceeded,
			wantClass: generation.FailureTimeout,
		},
		{
			name:      "plain network error",
			err:       errors.New("connection refused"),
			wantClass: generation.FailureUnavailable,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			provErr := testProvider().classify(tc.err)
			assert.Equal(t, tc.wantClass, provErr.Class)
			assert.Equal(t, "openai-secondary", provErr.Provider)
		})
	}
}

func TestClassifyReadsRetryAfterHeader(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"7"}}}
	apiErr := &openai.Error{StatusCode: http.StatusTooManyRequests, Response: resp}

	provErr := testProvider().classify(apiErr)

	assert.Equal(t, generation.FailureRateLimited, provErr.Class)
	assert.Equal(t, 7*time.Second, provErr.RetryAfter)
}
