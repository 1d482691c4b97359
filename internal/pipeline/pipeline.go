// Package pipeline runs one summarization request through validation, rate
// limiting, the response cache, content acquisition and the model.
package pipeline

import (
	"briefly/internal/acquire"
	"briefly/internal/apperr"
	"briefly/internal/cache"
	"briefly/internal/domain"
	"briefly/internal/summarizer"
	"briefly/internal/validate"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

type Limiter interface {
	IsAllowed(id string) bool
	RetryAfter(id string) int
}

type Cache interface {
	Get(key string) (domain.SummaryResult, bool)
	Set(key string, value domain.SummaryResult)
	Clear() int
	Size() int
}

type HistoryStore interface {
	AddHistory(ctx context.Context, entry domain.HistoryEntry) (int64, error)
}

type Config struct {
	EnableCache        bool
	EnableRateLimiting bool

	MinLength     int
	MaxLength     int
	DefaultLength int

	Styles              []domain.Style
	TranscriptionModels []domain.TranscriptionModel
}

type Deps struct {
	Limiter     Limiter
	Cache       Cache
	Acquirers   map[domain.Kind]acquire.Acquirer
	Summarizers summarizer.Factory
	// History is optional.
	History HistoryStore
	// Observer is optional.
	Observer Observer
	Log      *slog.Logger
}

type Pipeline struct {
	cfg   Config
	deps  Deps
	stats *counters
	log   *slog.Logger
}

func New(cfg Config, deps Deps) *Pipeline {
	if len(cfg.Styles) == 0 {
		cfg.Styles = domain.Styles()
	}

	return &Pipeline{
		cfg:   cfg,
		deps:  deps,
		stats: newCounters(),
		log:   deps.Log,
	}
}

// Process runs req to completion. Every returned error is an *apperr.Error.
func (p *Pipeline) Process(ctx context.Context, req domain.Request) (domain.SummaryResult, error) {
	p.stats.requests.Add(1)

	result, err := p.process(ctx, req)
	if err != nil {
		appErr := apperr.Classify(err)

		p.transition(StateErrored)
		p.stats.recordFailure(appErr.Kind)
		p.logFailure(ctx, req, appErr)

		return domain.SummaryResult{}, appErr
	}

	p.transition(StateDone)
	p.stats.successes.Add(1)

	return result, nil
}

func (p *Pipeline) Stats() Stats {
	return p.stats.snapshot()
}

// ClearCache drops every cached summary and returns how many there were.
func (p *Pipeline) ClearCache() int {
	if p.deps.Cache == nil {
		return 0
	}
	return p.deps.Cache.Clear()
}

func (p *Pipeline) CacheSize() int {
	if p.deps.Cache == nil {
		return 0
	}
	return p.deps.Cache.Size()
}

func (p *Pipeline) process(ctx context.Context, req domain.Request) (domain.SummaryResult, error) {
	p.transition(StateValidating)

	params, err := p.validate(ctx, req)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	if p.cfg.EnableRateLimiting && p.deps.Limiter != nil {
		p.transition(StateRateChecking)

		if !p.deps.Limiter.IsAllowed(req.CallerID) {
			return domain.SummaryResult{}, apperr.RateLimited(p.deps.Limiter.RetryAfter(req.CallerID))
		}
	}

	key := cache.Key(params.url.Raw, string(params.style), params.length)

	if p.cfg.EnableCache && p.deps.Cache != nil {
		p.transition(StateCacheLookup)

		if cached, ok := p.deps.Cache.Get(key); ok {
			p.stats.cacheHits.Add(1)
			p.log.InfoContext(ctx, "Returning cached summary",
				"url", preview(params.url.Raw),
				"style", params.style,
				"length", params.length)

			cached.Cached = true
			return cached, nil
		}
	}

	p.log.InfoContext(ctx, "Processing URL",
		"urlType", params.url.Kind,
		"url", preview(params.url.Raw))

	p.transition(StateAcquiring)

	acquirer, ok := p.deps.Acquirers[params.url.Kind]
	if !ok {
		return domain.SummaryResult{}, apperr.Internal(
			fmt.Sprintf("No content source for URL type %s", params.url.Kind), nil)
	}

	content, err := acquirer.Acquire(ctx, params.url, acquire.Options{
		TranscriptionModel: params.model,
	})
	if err != nil {
		return domain.SummaryResult{}, err
	}
	p.stats.recordSource(params.url.Kind)

	p.transition(StateSummarizing)

	engine, err := p.deps.Summarizers(req.Credential)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	text, err := engine.Summarize(ctx, content, params.style, params.length)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	result := domain.NewSummaryResult(text, params.url.Kind)

	if p.cfg.EnableCache && p.deps.Cache != nil {
		p.deps.Cache.Set(key, result)
	}

	p.recordHistory(ctx, params, result)

	p.log.InfoContext(ctx, "Summarized URL",
		"url", preview(params.url.Raw),
		"wordCount", result.WordCount)

	return result, nil
}

type params struct {
	url    domain.ClassifiedURL
	style  domain.Style
	length int
	model  domain.TranscriptionModel
}

func (p *Pipeline) validate(ctx context.Context, req domain.Request) (params, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return params{}, apperr.Validation(FieldURL, "URL is required")
	}

	if strings.TrimSpace(req.Credential) == "" {
		return params{}, apperr.Validation(FieldCredential, "API key is required")
	}

	if !validate.IsValidURL(rawURL) {
		return params{}, apperr.Validation(FieldURL, "Invalid URL format")
	}

	// The raw value is checked because it is what the engine is bound to.
	if !validate.IsValidCredential(req.Credential) {
		return params{}, apperr.Validation(FieldCredential, "Invalid API key format")
	}

	kind, ok := validate.Classify(rawURL)
	if !ok {
		return params{}, apperr.Validation(FieldURL, "Unsupported URL type")
	}

	length := req.TargetLength
	if length == 0 {
		length = p.cfg.DefaultLength
	}
	if length < p.cfg.MinLength || length > p.cfg.MaxLength {
		return params{}, apperr.Validation(FieldLength,
			fmt.Sprintf("Length must be between %d and %d", p.cfg.MinLength, p.cfg.MaxLength))
	}

	model := req.TranscriptionModel
	if model == "" {
		model = domain.TranscriptionModelBase
	}
	if len(p.cfg.TranscriptionModels) > 0 && !slices.Contains(p.cfg.TranscriptionModels, model) {
		return params{}, apperr.Validation(FieldTranscriptionModel,
			fmt.Sprintf("Unsupported whisper model: %s", model))
	}

	return params{
		url:    domain.ClassifiedURL{Raw: rawURL, Kind: kind},
		style:  p.resolveStyle(ctx, req.Style),
		length: length,
		model:  model,
	}, nil
}

// resolveStyle falls back to balanced for unknown or disabled styles.
func (p *Pipeline) resolveStyle(ctx context.Context, style domain.Style) domain.Style {
	if slices.Contains(p.cfg.Styles, style) {
		return style
	}

	if style != "" {
		p.log.DebugContext(ctx, "Unknown summary style, using balanced",
			"style", style)
	}

	return domain.StyleBalanced
}

func (p *Pipeline) recordHistory(ctx context.Context, params params, result domain.SummaryResult) {
	if p.deps.History == nil {
		return
	}

	_, err := p.deps.History.AddHistory(ctx, domain.HistoryEntry{
		URL:          params.url.Raw,
		Kind:         params.url.Kind,
		Style:        params.style,
		TargetLength: params.length,
		Summary:      result.Text,
		WordCount:    result.WordCount,
	})
	if err != nil {
		p.log.WarnContext(ctx, "Failed to record history",
			"error", err,
			"url", preview(params.url.Raw))
	}
}

func (p *Pipeline) transition(state State) {
	if p.deps.Observer != nil {
		p.deps.Observer(state)
	}
}

func (p *Pipeline) logFailure(ctx context.Context, req domain.Request, err *apperr.Error) {
	fields := []any{
		"error", err,
		"errorCode", err.Kind,
		"url", preview(req.URL),
		"callerID", req.CallerID,
	}

	switch err.Kind {
	case apperr.KindInternal:
		p.log.ErrorContext(ctx, "Failed to process request", fields...)
	case apperr.KindValidation, apperr.KindRateLimit:
		p.log.InfoContext(ctx, "Rejected request", fields...)
	default:
		p.log.WarnContext(ctx, "Failed to process request", fields...)
	}
}

// preview shortens a URL for log lines.
func preview(s string) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= logPreviewLength {
		return s
	}

	return string(runes[:logPreviewLength])
}
