// Package gemini implements the generation.Provider interface using Google's
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/redact"
	"google.golang.org/genai"
)

// Provider calls the Gemini API for one configured provider entry.
type Provider struct {
	id          string
	tier        int
	model       string
	callTimeout time.Duration
	client      *genai.Client
	logger      *slog.Logger
}

// New creates a Gemini-backed provider from its configuration entry.
func New(ctx context.Context, cfg config.ProviderConfig, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: provider %q: gemini API key cannot be empty", generation.ErrInvalidConfig, cfg.ID)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: provider %q: model name cannot be empty", generation.ErrInvalidConfig, cfg.ID)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("provider %q: failed to create gemini client: %v", cfg.ID, redact.Error(err))
	}

	return &Provider{
		id:          cfg.ID,
		tier:        cfg.Tier,
		model:       cfg.Model,
		callTimeout: cfg.CallTimeout,
		client:      client,
		logger:      logger.With(slog.String("component", "gemini_provider"), slog.String("provider", cfg.ID)),
	}, nil
}

var _ generation.Provider = (*Provider)(nil)

// ID implements generation.Provider.
func (p *Provider) ID() string { return p.id }

// Tier implements generation.Provider.
func (p *Provider) Tier() int { return p.tier }

// Generate implements generation.Provider. The schema hint rides along as a
// system instruction steering the output shape; the per-call timeout is
// enforced here, inside the adapter.
func (p *Provider) Generate(ctx context.Context, prompt, schemaHint string) (*generation.RawResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{}
	if schemaHint != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: "Answer as a single JSON object matching this shape:\n" + schemaHint}},
		}
	}

	start := time.Now()
	resp, err := p.client.Models.GenerateContent(callCtx, p.model, genai.Text(prompt), genConfig)
	latency := time.Since(start)

	if err != nil {
		p.logger.WarnContext(ctx, "gemini call failed",
			slog.String("error", redact.Error(err)),
			slog.Int64("latency_ms", latency.Milliseconds()))
		return nil, p.classify(err)
	}

	text, err := p.extractText(resp)
	if err != nil {
		return nil, err
	}

	p.logger.DebugContext(ctx, "gemini call succeeded",
		slog.Int64("latency_ms", latency.Milliseconds()),
		slog.Int("response_length", len(text)))

	return &generation.RawResponse{
		Provider:   p.id,
		Text:       text,
		Latency:    latency,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// Probe implements generation.Provider with a token count, which exercises
// auth and reachability without paying for a generation.
func (p *Provider) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	if _, err := p.client.Models.CountTokens(probeCtx, p.model, genai.Text("ping"), nil); err != nil {
		return p.classify(err)
	}
	return nil
}

// extractText pulls the generated text out of a response, treating blocked
// or empty candidates as malformed output.
func (p *Provider) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", generation.NewProviderError(p.id, generation.FailureMalformed,
			errors.New("no candidates in response"))
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.NewProviderError(p.id, generation.FailureMalformed,
			errors.New("content blocked by safety filters"))
	}

	text := resp.Text()
	if text == "" {
		return "", generation.NewProviderError(p.id, generation.FailureMalformed,
			errors.New("empty content in response"))
	}
	return text, nil
}

// classify maps a Gemini SDK error to exactly one failure class.
func (p *Provider) classify(err error) *generation.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return generation.NewProviderError(p.id, generation.FailureTimeout, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return generation.NewRateLimitError(p.id, 0, err)
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return generation.NewProviderError(p.id, generation.FailureAuth, err)
		case apiErr.Code >= 500:
			return generation.NewProviderError(p.id, generation.FailureUnavailable, err)
		}
	}

	return generation.NewProviderError(p.id, generation.FailureUnavailable, err)
}
