package server

import (
	"briefly/internal/apperr"
	"briefly/internal/database"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	exportFormatText = "txt"
	exportFormatJSON = "json"

	exportTimeLayout = "20060102_150405"
)

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, s.log, apperr.Validation("limit", "Limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.history.ListHistory(r.Context(), limit)
	if err != nil {
		writeError(w, s.log, fmt.Errorf("list history: %w", err))
		return
	}

	writeJSON(w, s.log, http.StatusOK, map[string]any{
		"history": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}

	id, ok := s.historyID(w, r)
	if !ok {
		return
	}

	entry, err := s.history.GetHistory(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, s.log, fmt.Errorf("get history: %w", err))
		return
	}

	writeJSON(w, s.log, http.StatusOK, entry)
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.NotFound(w, r)
		return
	}

	id, ok := s.historyID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = exportFormatText
	}
	if format != exportFormatText && format != exportFormatJSON {
		writeError(w, s.log, apperr.Validation("format", "Format must be txt or json"))
		return
	}

	entry, err := s.history.GetHistory(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, s.log, fmt.Errorf("get history: %w", err))
		return
	}

	filename := fmt.Sprintf("summary_%s.%s", entry.CreatedAt.Format(exportTimeLayout), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if format == exportFormatJSON {
		writeJSON(w, s.log, http.StatusOK, entry)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write([]byte(entry.Summary)); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to write export",
			"error", err,
			"id", id)
	}
}

func (s *Server) historyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, s.log, apperr.Validation("id", "ID must be a positive integer"))
		return 0, false
	}

	return id, true
}
