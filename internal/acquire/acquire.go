// Package acquire turns a classified URL into plain text segments, either
// by transcribing the audio track of a video or by scraping a web page.
package acquire

import (
	"briefly/internal/domain"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type Options struct {
	TranscriptionModel domain.TranscriptionModel
}

// Acquirer fetches the content behind one URL. Failures are returned as
// *apperr.Error values.
type Acquirer interface {
	Acquire(
		ctx context.Context,
		u domain.ClassifiedURL,
		opts Options,
	) (domain.ExtractedContent, error)
}

// Runner executes an external tool and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Tool paths come from config.

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("run %s: %w (output = %s)", name, err, outputTail(out))
	}

	return out, nil
}

func outputTail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) <= runOutputTailLength {
		return s
	}
	return "..." + s[len(s)-runOutputTailLength:]
}

// truncateRunes cuts text to at most limit runes.
func truncateRunes(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}

	count := 0
	for i := range text {
		if count == limit {
			return text[:i], true
		}
		count++
	}

	return text, false
}
