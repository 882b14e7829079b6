package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"github.com/matzehuels/reqtrace/pkg/cache"
	rterrors "github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/observability"
)

// GeminiConfig configures a Gemini client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *log.Logger
}

// Gemini generates text with the Gemini API.
type Gemini struct {
	models      *genai.Models
	model       string
	temperature float32
	timeout     time.Duration
	logger      *log.Logger
}

// NewGemini creates a client for the Gemini API backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, rterrors.New(rterrors.ErrCodeInvalidConfig, "gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "create gemini client")
	}

	return &Gemini{
		models:      client.Models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger.WithPrefix("gemini"),
	}, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

// Generate sends prompt as a single user turn and returns the response text.
// Rate limiting and server errors are marked retryable.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	hooks := observability.Generation()
	hooks.OnGenerateStart(ctx, g.model)
	start := time.Now()

	var config *genai.GenerateContentConfig
	if g.temperature > 0 {
		config = &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	duration := time.Since(start)
	if err != nil {
		hooks.OnGenerateComplete(ctx, g.model, duration, err)
		g.logger.Warn("generation failed", "model", g.model, "duration", duration, "err", err)
		return "", classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		err := rterrors.New(rterrors.ErrCodeGenerationFailed, "model %s returned no text", g.model)
		hooks.OnGenerateComplete(ctx, g.model, duration, err)
		return "", err
	}

	hooks.OnGenerateComplete(ctx, g.model, duration, nil)
	attrs := []any{"model", g.model, "duration", duration}
	if u := resp.UsageMetadata; u != nil {
		attrs = append(attrs, "prompt_tokens", u.PromptTokenCount, "total_tokens", u.TotalTokenCount)
	}
	g.logger.Debug("generation complete", attrs...)
	return text, nil
}

// classify maps a client error to a structured error, marking transient
// API failures retryable.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return cache.Retryable(rterrors.Wrap(rterrors.ErrCodeTimeout, err, "generation timed out"))
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	wrapped := rterrors.Wrap(rterrors.ErrCodeGenerationFailed, err, "generate content")
	if retryableStatus(code) {
		return cache.Retryable(wrapped)
	}
	return wrapped
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

var _ Generator = (*Gemini)(nil)
