package summarizer

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const temperature = 0.5

// Summarizer produces a single summary for the extracted content of one
// source.
type Summarizer interface {
	Summarize(
		ctx context.Context,
		content domain.ExtractedContent,
		style domain.Style,
		length int,
	) (string, error)
}

// Completer sends one prompt to a hosted model and returns its raw output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine stuffs every segment into one prompt and asks the completer once.
type Engine struct {
	completer Completer
	log       *slog.Logger
}

func NewEngine(completer Completer, log *slog.Logger) *Engine {
	return &Engine{
		completer: completer,
		log:       log,
	}
}

func (e *Engine) Summarize(
	ctx context.Context,
	content domain.ExtractedContent,
	style domain.Style,
	length int,
) (string, error) {
	if len(content) == 0 {
		return "", apperr.Summarization("No documents provided for summarization", nil)
	}

	text := content.Text()
	if text == "" {
		return "", apperr.Summarization("No documents provided for summarization", nil)
	}

	prompt, err := Prompt(style, length, text)
	if err != nil {
		return "", apperr.Summarization("Failed to build summarization prompt", err)
	}

	e.log.DebugContext(ctx, "Requesting summary",
		"style", style,
		"length", length,
		"segments", len(content),
		"promptLength", len(prompt))

	output, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return "", apperr.Summarization(
			fmt.Sprintf("Failed to summarize content: %s", err), err)
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return "", apperr.Summarization("Summarization resulted in empty output", nil)
	}

	return output, nil
}
