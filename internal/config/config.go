package config

import (
	"briefly/internal/domain"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`

	HTTPAddr       string        `env:"HTTP_ADDR"`
	Port           int           `env:"PORT"            envDefault:"8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10m"`

	// TrustProxyHeaders makes the REST server take the client address from
	// X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	LLMProvider   string        `env:"LLM_PROVIDER"    envDefault:"groq"`
	LLMAPIKey     string        `env:"LLM_API_KEY"`
	LLMModel      string        `env:"LLM_MODEL"`
	LLMBaseURL    string        `env:"LLM_BASE_URL"`
	LLMMaxRetries int           `env:"LLM_MAX_RETRIES" envDefault:"0"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT"     envDefault:"30s"`

	YTDLPPath     string `env:"YTDLP_PATH"     envDefault:"yt-dlp"`
	WhisperPath   string `env:"WHISPER_PATH"   envDefault:"whisper"`
	WhisperDevice string `env:"WHISPER_DEVICE" envDefault:"auto"`

	FetchTimeout            time.Duration `env:"FETCH_TIMEOUT"              envDefault:"20s"`
	MaxWebsiteContentLength int           `env:"MAX_WEBSITE_CONTENT_LENGTH" envDefault:"4000"`

	EnableCache     bool `env:"ENABLE_CACHE"      envDefault:"true"`
	CacheTTLSeconds int  `env:"CACHE_TTL_SECONDS" envDefault:"3600"`

	EnableRateLimiting     bool `env:"ENABLE_RATE_LIMITING"      envDefault:"true"`
	RateLimitCalls         int  `env:"RATE_LIMIT_CALLS"          envDefault:"10"`
	RateLimitPeriodSeconds int  `env:"RATE_LIMIT_PERIOD_SECONDS" envDefault:"60"`

	MinSummaryLength     int                         `env:"MIN_SUMMARY_LENGTH"     envDefault:"100"`
	MaxSummaryLength     int                         `env:"MAX_SUMMARY_LENGTH"     envDefault:"1000"`
	DefaultSummaryLength int                         `env:"DEFAULT_SUMMARY_LENGTH" envDefault:"300"`
	SummaryStyles        []domain.Style              `env:"SUMMARY_STYLES"         envDefault:"balanced,bullet_points,executive,technical,simplified"`
	WhisperModels        []domain.TranscriptionModel `env:"WHISPER_MODELS"         envDefault:"base,small,medium,large"`
	// SupportedDomains is informational only. Requests are never gated on it.
	SupportedDomains []string `env:"SUPPORTED_DOMAINS" envDefault:"youtube.com,youtu.be,wikipedia.org,github.com"`

	EnableHistory bool   `env:"ENABLE_HISTORY" envDefault:"true"`
	DBPath        string `env:"DB_PATH"        envDefault:"db.sqlite"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`

	EnableAnalytics bool   `env:"ENABLE_ANALYTICS" envDefault:"true"`
	AnalyticsSpec   string `env:"ANALYTICS_SPEC"   envDefault:"0 * * * *"`
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (Config, error) {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	return Parse()
}

// Parse builds the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvironment() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.LLMAPIKey = strings.TrimSpace(c.LLMAPIKey)

	if c.Environment == EnvironmentProduction {
		c.EnableCache = true
		c.EnableRateLimiting = true
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = fmt.Sprintf(":%d", c.Port)
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.MinSummaryLength <= 0 || c.MinSummaryLength > c.MaxSummaryLength {
		errs = append(errs, fmt.Errorf("invalid summary length bounds: [%d, %d]",
			c.MinSummaryLength, c.MaxSummaryLength))
	}

	if c.DefaultSummaryLength < c.MinSummaryLength || c.DefaultSummaryLength > c.MaxSummaryLength {
		errs = append(errs, fmt.Errorf("default summary length %d is out of bounds",
			c.DefaultSummaryLength))
	}

	if c.EnableRateLimiting && (c.RateLimitCalls <= 0 || c.RateLimitPeriodSeconds <= 0) {
		errs = append(errs, fmt.Errorf("invalid rate limit: %d calls per %d seconds",
			c.RateLimitCalls, c.RateLimitPeriodSeconds))
	}

	if c.EnableCache && c.CacheTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("invalid cache TTL: %d seconds", c.CacheTTLSeconds))
	}

	if c.MaxWebsiteContentLength <= 0 {
		errs = append(errs, fmt.Errorf("invalid max website content length: %d",
			c.MaxWebsiteContentLength))
	}

	if len(c.SummaryStyles) == 0 {
		errs = append(errs, errors.New("summary styles are empty"))
	}
	for _, s := range c.SummaryStyles {
		if !slices.Contains(domain.Styles(), s) {
			errs = append(errs, fmt.Errorf("unknown summary style: %q", s))
		}
	}

	if len(c.WhisperModels) == 0 {
		errs = append(errs, errors.New("whisper models are empty"))
	}

	switch c.LLMProvider {
	case ProviderGroq, ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM provider: %q", c.LLMProvider))
	}

	if c.LLMMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("invalid LLM max retries: %d", c.LLMMaxRetries))
	}

	return errors.Join(errs...)
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) RateLimitPeriod() time.Duration {
	return time.Duration(c.RateLimitPeriodSeconds) * time.Second
}

// Level resolves the log level. An explicit LOG_LEVEL wins, otherwise
// development logs at debug and production at warn.
func (c *Config) Level() slog.Level {
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	}

	if c.Environment == EnvironmentProduction {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}
