// Package server exposes the summarization pipeline over HTTP.
package server

import (
	"briefly/internal/domain"
	"briefly/internal/pipeline"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serviceName    = "content-summarizer"
	serviceVersion = "1.0.0"

	readHeaderTimeout = 10 * time.Second
)

// Summarizer is the part of the pipeline the server needs.
type Summarizer interface {
	Process(ctx context.Context, req domain.Request) (domain.SummaryResult, error)
	Stats() pipeline.Stats
	ClearCache() int
	CacheSize() int
}

// History is optional. A nil History disables the history routes.
type History interface {
	ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	GetHistory(ctx context.Context, id int64) (domain.HistoryEntry, error)
}

type Options struct {
	Addr           string
	RequestTimeout time.Duration

	// TrustProxyHeaders takes the client address, which is also the
	// rate-limit identity, from X-Forwarded-For or X-Real-IP. Enable it only
	// behind a proxy that overwrites them.
	TrustProxyHeaders bool

	MinLength           int
	MaxLength           int
	DefaultLength       int
	Styles              []domain.Style
	TranscriptionModels []domain.TranscriptionModel
}

type Server struct {
	opts      Options
	pipeline  Summarizer
	history   History
	mcpServer *mcp.Server
	handler   http.Handler
	server    *http.Server
	log       *slog.Logger
}

func New(opts Options, p Summarizer, history History, log *slog.Logger) *Server {
	s := &Server{
		opts:     opts,
		pipeline: p,
		history:  history,
		log:      log,
	}

	s.mcpServer = s.newMCPServer()
	s.handler = s.routes()
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	if s.opts.TrustProxyHeaders {
		mux.Use(middleware.RealIP)
	}
	mux.Use(requestLogger(s.log))
	mux.Use(cors)

	mux.Post("/summarize", s.handleSummarize)
	mux.Get("/health", s.handleHealth)
	mux.Get("/styles", s.handleStyles)
	mux.Get("/config", s.handleConfig)
	mux.Get("/stats", s.handleStats)
	mux.Delete("/cache", s.handleClearCache)

	mux.Route("/history", func(r chi.Router) {
		r.Get("/", s.handleListHistory)
		r.Get("/{id}", s.handleGetHistory)
		r.Get("/{id}/export", s.handleExportHistory)
	})

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/mcp/*", mcpHandler)

	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("Starting server",
		"addr", s.opts.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}
