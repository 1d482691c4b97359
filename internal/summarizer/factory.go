package summarizer

import (
	"briefly/internal/apperr"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Factory binds a caller credential to a ready engine.
type Factory func(credential string) (Summarizer, error)

type FactoryOptions struct {
	Provider   string
	Model      string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewFactory returns a Factory for the configured provider. Empty model and
// base URL fall back to the provider defaults.
func NewFactory(opts FactoryOptions, log *slog.Logger) Factory {
	return func(credential string) (Summarizer, error) {
		completer, err := newCompleter(opts, credential)
		if err != nil {
			log.Warn("Failed to initialize completer",
				"provider", opts.Provider,
				"error", err)
			return nil, apperr.UpstreamCredential(
				fmt.Sprintf("Failed to initialize summarization service: %s", err), err)
		}

		return NewEngine(completer, log), nil
	}
}

func newCompleter(opts FactoryOptions, credential string) (Completer, error) {
	switch opts.Provider {
	case ProviderGroq, "":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		return NewOpenAICompleter(credential, OpenAIOptions{
			BaseURL:    baseURL,
			Model:      orDefault(opts.Model, GroqDefaultModel),
			MaxRetries: opts.MaxRetries,
			Timeout:    opts.Timeout,
			HTTPClient: opts.HTTPClient,
		})
	case ProviderOpenAI:
		return NewOpenAICompleter(credential, OpenAIOptions{
			BaseURL:    opts.BaseURL,
			Model:      orDefault(opts.Model, OpenAIDefaultModel),
			MaxRetries: opts.MaxRetries,
			Timeout:    opts.Timeout,
			HTTPClient: opts.HTTPClient,
		})
	case ProviderGemini:
		httpClient := opts.HTTPClient
		if httpClient == nil && opts.Timeout > 0 {
			httpClient = &http.Client{Timeout: opts.Timeout}
		}
		return NewGeminiCompleter(context.Background(), credential, GeminiOptions{
			Model:      orDefault(opts.Model, GeminiDefaultModel),
			BaseURL:    opts.BaseURL,
			HTTPClient: httpClient,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %q", opts.Provider)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
