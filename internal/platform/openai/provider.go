// Package openai implements the generation.Provider interface using the
// official openai-go SDK (chat completions). BaseURL overrides make it work
// against any OpenAI-compatible gateway.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/redact"
)

// Provider calls an OpenAI-compatible chat completions API for one
// configured provider entry.
type Provider struct {
	id          string
	tier        int
	model       string
	callTimeout time.Duration
	client      openai.Client
	logger      *slog.Logger
}

// New creates an OpenAI-backed provider from its configuration entry.
func New(cfg config.ProviderConfig, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: provider %q: openai api key cannot be empty", generation.ErrInvalidConfig, cfg.ID)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: provider %q: model name cannot be empty", generation.ErrInvalidConfig, cfg.ID)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		id:          cfg.ID,
		tier:        cfg.Tier,
		model:       cfg.Model,
		callTimeout: cfg.CallTimeout,
		client:      openai.NewClient(opts...),
		logger:      logger.With(slog.String("component", "openai_provider"), slog.String("provider", cfg.ID)),
	}, nil
}

var _ generation.Provider = (*Provider)(nil)

// ID implements generation.Provider.
func (p *Provider) ID() string { return p.id }

// Tier implements generation.Provider.
func (p *Provider) Tier() int { return p.tier }

// Generate implements generation.Provider. The schema hint becomes the
// system message; the per-call timeout is enforced here, inside the adapter.
func (p *Provider) Generate(ctx context.Context, prompt, schemaHint string) (*generation.RawResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if schemaHint != "" {
		messages = append(messages, openai.SystemMessage(
			"Answer as a single JSON object matching this shape:\n"+schemaHint))
	}
	messages = append(messages, openai.UserMessage(prompt))

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	latency := time.Since(start)

	if err != nil {
		p.logger.WarnContext(ctx, "openai call failed",
			slog.String("error", redact.Error(err)),
			slog.Int64("latency_ms", latency.Milliseconds()))
		return nil, p.classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, generation.NewProviderError(p.id, generation.FailureMalformed,
			errors.New("empty choices in response"))
	}

	p.logger.DebugContext(ctx, "openai call succeeded",
		slog.Int64("latency_ms", latency.Milliseconds()))

	return &generation.RawResponse{
		Provider:   p.id,
		Text:       resp.Choices[0].Message.Content,
		Latency:    latency,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// Probe implements generation.Provider by listing the configured model,
// which exercises auth and reachability without a generation.
func (p *Provider) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	if _, err := p.client.Models.Get(probeCtx, p.model); err != nil {
		return p.classify(err)
	}
	return nil
}

// classify maps an openai-go SDK error to exactly one failure class,
// reading a Retry-After header into the rate-limit backoff when present.
func (p *Provider) classify(err error) *generation.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return generation.NewProviderError(p.id, generation.FailureTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return generation.NewRateLimitError(p.id, retryAfter(apiErr.Response), err)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return generation.NewProviderError(p.id, generation.FailureAuth, err)
		case apiErr.StatusCode >= 500:
			return generation.NewProviderError(p.id, generation.FailureUnavailable, err)
		}
	}

	return generation.NewProviderError(p.id, generation.FailureUnavailable, err)
}

// retryAfter parses the Retry-After header of a 429 response, if any.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := time.ParseDuration(header + "s"); err == nil {
		return seconds
	}
	return 0
}
