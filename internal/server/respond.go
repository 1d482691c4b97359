package server

import (
	"briefly/internal/apperr"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

type errorResponse struct {
	Detail    string         `json:"detail"`
	ErrorCode apperr.Kind    `json:"error_code"`
	Details   map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response",
			"error", err,
			"status", status)
	}
}

// writeError renders err in the API error shape. Internal failures never
// leak their cause to the client.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	e := apperr.Classify(err)
	status := apperr.HTTPStatus(e.Kind)

	resp := errorResponse{
		Detail:    e.Message,
		ErrorCode: e.Kind,
	}

	switch e.Kind {
	case apperr.KindInternal:
		resp.Detail = "Internal server error"
	case apperr.KindRateLimit:
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
		resp.Details = map[string]any{apperr.DetailRetryAfter: e.RetryAfter}
	case apperr.KindValidation:
		if field, ok := e.Details[apperr.DetailField]; ok {
			resp.Details = map[string]any{apperr.DetailField: field}
		}
	}

	writeJSON(w, log, status, resp)
}
