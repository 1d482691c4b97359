// Package apperr defines the error taxonomy shared by the pipeline and its
// front-ends. Every failure that leaves the acquisition or summarization
// boundary is an *Error carrying a machine-readable Kind.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindRateLimit          Kind = "RATE_LIMIT_ERROR"
	KindYouTube            Kind = "YOUTUBE_ERROR"
	KindWebsite            Kind = "WEBSITE_ERROR"
	KindTranscription      Kind = "TRANSCRIPTION_ERROR"
	KindSummarization      Kind = "SUMMARIZATION_ERROR"
	KindUpstreamCredential Kind = "UPSTREAM_CREDENTIAL_ERROR"
	KindInternal           Kind = "INTERNAL_ERROR"
)

const (
	DetailField         = "field"
	DetailRetryAfter    = "retry_after"
	DetailOriginalError = "original_error"
)

type Error struct {
	Kind       Kind           `json:"error_code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	RetryAfter int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, cause error) *Error {
	e := &Error{
		Kind:    kind,
		Message: message,
		Details: map[string]any{},
		Err:     cause,
	}

	if cause != nil {
		e.Details[DetailOriginalError] = cause.Error()
	}

	return e
}

func Validation(field, message string) *Error {
	e := New(KindValidation, message, nil)
	e.Details[DetailField] = field
	return e
}

func RateLimited(retryAfter int) *Error {
	e := New(KindRateLimit,
		fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter), nil)
	e.RetryAfter = retryAfter
	e.Details[DetailRetryAfter] = retryAfter
	return e
}

func YouTube(message string, cause error) *Error {
	return New(KindYouTube, message, cause)
}

func Website(message string, cause error) *Error {
	return New(KindWebsite, message, cause)
}

func Transcription(message string, cause error) *Error {
	return New(KindTranscription, message, cause)
}

func Summarization(message string, cause error) *Error {
	return New(KindSummarization, message, cause)
}

func UpstreamCredential(message string, cause error) *Error {
	return New(KindUpstreamCredential, message, cause)
}

func Internal(message string, cause error) *Error {
	return New(KindInternal, message, cause)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Classify converts any error into an *Error. Domain errors pass through,
// everything else becomes an internal failure with the cause preserved.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	if e, ok := As(err); ok {
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Internal("Request timed out", err)
	case errors.Is(err, context.Canceled):
		return Internal("Request was cancelled", err)
	default:
		return Internal("An unexpected error occurred", err)
	}
}

func KindOf(err error) Kind {
	if e := Classify(err); e != nil {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps a kind onto the REST status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	case KindYouTube, KindWebsite, KindTranscription, KindSummarization, KindUpstreamCredential:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
