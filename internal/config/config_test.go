package config_test

import (
	"briefly/internal/config"
	"briefly/internal/domain"
	"log/slog"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("unexpected HTTP addr: %q", cfg.HTTPAddr)
	}

	if cfg.CacheTTL() != time.Hour {
		t.Fatalf("unexpected cache TTL: %s", cfg.CacheTTL())
	}

	if cfg.RateLimitCalls != 10 || cfg.RateLimitPeriod() != time.Minute {
		t.Fatalf("unexpected rate limit: %d per %s", cfg.RateLimitCalls, cfg.RateLimitPeriod())
	}

	if cfg.MaxWebsiteContentLength != 4000 {
		t.Fatalf("unexpected max website content length: %d", cfg.MaxWebsiteContentLength)
	}

	if len(cfg.SummaryStyles) != 5 || cfg.SummaryStyles[0] != domain.StyleBalanced {
		t.Fatalf("unexpected summary styles: %v", cfg.SummaryStyles)
	}

	if len(cfg.WhisperModels) != 4 {
		t.Fatalf("unexpected whisper models: %v", cfg.WhisperModels)
	}

	if cfg.TrustProxyHeaders {
		t.Fatalf("expected proxy headers to be untrusted by default")
	}

	if cfg.LLMProvider != config.ProviderGroq {
		t.Fatalf("unexpected provider: %q", cfg.LLMProvider)
	}
}

func TestParseProductionForcesCacheAndRateLimiting(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("ENABLE_CACHE", "false")
	t.Setenv("ENABLE_RATE_LIMITING", "false")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.EnableCache || !cfg.EnableRateLimiting {
		t.Fatalf("expected production to force cache and rate limiting on")
	}

	if cfg.Level() != slog.LevelWarn {
		t.Fatalf("unexpected production log level: %s", cfg.Level())
	}
}

func TestParseHonoursPort(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected HTTP addr: %q", cfg.HTTPAddr)
	}
}

func TestParseAllowedUsers(t *testing.T) {
	t.Setenv("ALLOWED_USERS", "1,2,3")

	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 3 {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}
}

func TestParseRejectsInvalidBounds(t *testing.T) {
	t.Setenv("MIN_SUMMARY_LENGTH", "500")
	t.Setenv("MAX_SUMMARY_LENGTH", "100")

	if _, err := config.Parse(); err == nil {
		t.Fatalf("expected invalid bounds to be rejected")
	}
}

func TestParseRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "bard")

	if _, err := config.Parse(); err == nil {
		t.Fatalf("expected unknown provider to be rejected")
	}
}

func TestLevelExplicitOverride(t *testing.T) {
	cfg := config.Config{Environment: config.EnvironmentProduction, LogLevel: "debug"}

	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("expected explicit LOG_LEVEL to win, got %s", cfg.Level())
	}
}
