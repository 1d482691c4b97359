package main

import (
	"briefly/internal/acquire"
	"briefly/internal/cache"
	"briefly/internal/config"
	"briefly/internal/database"
	"briefly/internal/domain"
	"briefly/internal/pipeline"
	"briefly/internal/ratelimiter"
	"briefly/internal/summarizer"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// app holds everything both commands share.
type app struct {
	cfg      config.Config
	db       *database.Database
	pipeline *pipeline.Pipeline
	log      *slog.Logger
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	if cfg.Environment == config.EnvironmentProduction {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newApp loads the configuration and wires the pipeline. The caller must
// call close.
func newApp(ctx context.Context, withHistory bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg, os.Stderr)
	slog.SetDefault(log)

	a := &app{cfg: cfg, log: log}

	deps := pipeline.Deps{
		Limiter: ratelimiter.New(cfg.RateLimitCalls, cfg.RateLimitPeriod(), log),
		Cache:   cache.New[domain.SummaryResult](cfg.CacheTTL(), log),
		Acquirers: map[domain.Kind]acquire.Acquirer{
			domain.KindYouTube: acquire.NewYouTube(acquire.ExecRunner{}, acquire.YouTubeOptions{
				YTDLPPath:     cfg.YTDLPPath,
				WhisperPath:   cfg.WhisperPath,
				WhisperDevice: cfg.WhisperDevice,
			}, log),
			domain.KindWebsite: acquire.NewWebsite(acquire.WebsiteOptions{
				Timeout:          cfg.FetchTimeout,
				MaxContentLength: cfg.MaxWebsiteContentLength,
			}, log),
		},
		Summarizers: summarizer.NewFactory(summarizer.FactoryOptions{
			Provider:   cfg.LLMProvider,
			Model:      cfg.LLMModel,
			BaseURL:    cfg.LLMBaseURL,
			MaxRetries: cfg.LLMMaxRetries,
			Timeout:    cfg.LLMTimeout,
		}, log),
		Log: log,
	}

	if withHistory && cfg.EnableHistory {
		db, err := database.New(ctx, cfg.DBPath, log)
		if err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
		log.InfoContext(ctx, "DB is initialized",
			"dbPath", cfg.DBPath)

		a.db = db
		deps.History = db
	}

	a.pipeline = pipeline.New(pipeline.Config{
		EnableCache:         cfg.EnableCache,
		EnableRateLimiting:  cfg.EnableRateLimiting,
		MinLength:           cfg.MinSummaryLength,
		MaxLength:           cfg.MaxSummaryLength,
		DefaultLength:       cfg.DefaultSummaryLength,
		Styles:              cfg.SummaryStyles,
		TranscriptionModels: cfg.WhisperModels,
	}, deps)

	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.db == nil {
		return
	}

	if err := a.db.Close(); err != nil {
		a.log.ErrorContext(ctx, "Failed to close db",
			"error", err,
			"dbPath", a.cfg.DBPath)
	}
}
