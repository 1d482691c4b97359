package server

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"briefly/internal/pipeline"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

type summarizeRequest struct {
	URL          string                    `json:"url"`
	APIKey       string                    `json:"api_key"`
	Style        domain.Style              `json:"style"`
	Length       int                       `json:"length"`
	WhisperModel domain.TranscriptionModel `json:"whisper_model"`
}

type summarizeResponse struct {
	domain.SummaryResult

	Status string `json:"status"`
}

type statsResponse struct {
	pipeline.Stats

	CacheSize int `json:"cache_size"`
}

type configResponse struct {
	MaxSummaryLength     int                         `json:"max_summary_length"`
	MinSummaryLength     int                         `json:"min_summary_length"`
	DefaultSummaryLength int                         `json:"default_summary_length"`
	WhisperModels        []domain.TranscriptionModel `json:"whisper_models"`
	SummaryStyles        []domain.Style              `json:"summary_styles"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	req := summarizeRequest{
		Style:        domain.StyleBalanced,
		Length:       s.opts.DefaultLength,
		WhisperModel: domain.TranscriptionModelBase,
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, apperr.Validation("body", "Invalid request body"))
		return
	}

	ctx := r.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	result, err := s.pipeline.Process(ctx, domain.Request{
		URL:                req.URL,
		Credential:         req.APIKey,
		Style:              req.Style,
		TargetLength:       req.Length,
		TranscriptionModel: req.WhisperModel,
		CallerID:           callerID(r),
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	writeJSON(w, s.log, http.StatusOK, summarizeResponse{
		SummaryResult: result,
		Status:        "success",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, http.StatusOK, map[string][]domain.Style{
		"styles": s.opts.Styles,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, http.StatusOK, configResponse{
		MaxSummaryLength:     s.opts.MaxLength,
		MinSummaryLength:     s.opts.MinLength,
		DefaultSummaryLength: s.opts.DefaultLength,
		WhisperModels:        s.opts.TranscriptionModels,
		SummaryStyles:        s.opts.Styles,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.log, http.StatusOK, statsResponse{
		Stats:     s.pipeline.Stats(),
		CacheSize: s.pipeline.CacheSize(),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.pipeline.ClearCache()

	s.log.InfoContext(r.Context(), "Cleared cache over API",
		"entries", n)

	writeJSON(w, s.log, http.StatusOK, map[string]int{"cleared": n})
}

// callerID identifies the client for rate limiting by its IP address.
func callerID(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)

	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return addr
}
