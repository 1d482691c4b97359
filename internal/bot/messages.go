package bot

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"briefly/internal/markdown"
	"fmt"
	"strings"
)

const telegramMessageMaxLength = 4096

func formatSummaryMessages(result domain.SummaryResult, style domain.Style) []string {
	details := fmt.Sprintf("%s, %s, %d words, %d min read",
		result.SourceKind, style, result.WordCount, result.ReadingTimeMinutes)
	if result.Cached {
		details += ", cached"
	}

	header := fmt.Sprintf("📝 *Summary* \\(%s\\)\n\n", markdown.EscapeV2(details))

	return splitMessages(header, result.Text, telegramMessageMaxLength)
}

func formatError(err error) string {
	e := apperr.Classify(err)

	switch e.Kind {
	case apperr.KindInternal:
		return "🚫 An unexpected error occurred\\. Please try again later\\."
	case apperr.KindRateLimit:
		return "⏱️ " + markdown.EscapeV2(e.Message)
	case apperr.KindValidation:
		return "❌ Input error: " + markdown.EscapeV2(e.Message)
	default:
		return "❌ " + markdown.EscapeV2(e.Message)
	}
}

// splitMessages escapes text and packs it line by line into messages of at
// most limit bytes. The header opens the first message only. Lines that do
// not fit on their own are cut between characters, never inside an escape
// sequence.
func splitMessages(header, text string, limit int) []string {
	budget := limit - len(header)

	var (
		messages []string
		current  strings.Builder
		lines    int
	)

	current.WriteString(header)

	for _, line := range escapedLines(text, budget) {
		extra := len(line)
		if lines > 0 {
			extra++
		}

		if lines > 0 && current.Len()+extra > limit {
			messages = append(messages, current.String())
			current.Reset()
			lines = 0
		}

		if lines > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		lines++
	}

	if lines > 0 || len(messages) == 0 {
		messages = append(messages, current.String())
	}

	return messages
}

func escapedLines(text string, budget int) []string {
	var out []string

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if markdown.EscapedLen(line) <= budget {
			out = append(out, markdown.EscapeV2(line))
			continue
		}

		var b strings.Builder
		for _, r := range line {
			piece := markdown.EscapeV2(string(r))
			if b.Len()+len(piece) > budget {
				out = append(out, b.String())
				b.Reset()
			}
			b.WriteString(piece)
		}

		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}

	return out
}
