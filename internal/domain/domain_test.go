package domain_test

import (
	"briefly/internal/domain"
	"strings"
	"testing"
)

func TestReadingTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{words: 0, want: 1},
		{words: 50, want: 1},
		{words: 200, want: 1},
		{words: 399, want: 1},
		{words: 400, want: 2},
		{words: 1000, want: 5},
	}

	for _, tc := range cases {
		if got := domain.ReadingTime(tc.words); got != tc.want {
			t.Fatalf("ReadingTime(%d) = %d, want %d", tc.words, got, tc.want)
		}
	}
}

func TestNewSummaryResult(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 400))

	result := domain.NewSummaryResult(text, domain.KindWebsite)

	if result.WordCount != 400 {
		t.Fatalf("unexpected word count: %d", result.WordCount)
	}

	if result.ReadingTimeMinutes != 2 {
		t.Fatalf("unexpected reading time: %d", result.ReadingTimeMinutes)
	}

	if result.SourceKind != domain.KindWebsite {
		t.Fatalf("unexpected source kind: %q", result.SourceKind)
	}
}

func TestExtractedContentTextSkipsBlankSegments(t *testing.T) {
	content := domain.ExtractedContent{
		{Text: " first "},
		{Text: "   "},
		{Text: "second"},
	}

	if got := content.Text(); got != "first\n\nsecond" {
		t.Fatalf("unexpected joined text: %q", got)
	}
}
