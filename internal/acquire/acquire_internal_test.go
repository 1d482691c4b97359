package acquire

import "testing"

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		text      string
		limit     int
		want      string
		truncated bool
	}{
		{text: "hello", limit: 10, want: "hello"},
		{text: "hello", limit: 5, want: "hello"},
		{text: "hello world", limit: 5, want: "hello", truncated: true},
		{text: "привет мир", limit: 6, want: "привет", truncated: true},
		{text: "anything", limit: 0, want: "anything"},
	}

	for _, tc := range cases {
		got, truncated := truncateRunes(tc.text, tc.limit)
		if got != tc.want || truncated != tc.truncated {
			t.Fatalf("truncateRunes(%q, %d) = (%q, %v), want (%q, %v)",
				tc.text, tc.limit, got, truncated, tc.want, tc.truncated)
		}
	}
}

func TestIsFeedContentType(t *testing.T) {
	feeds := []string{
		"application/rss+xml",
		"application/atom+xml; charset=utf-8",
		"text/xml",
		"application/xml",
	}
	for _, ct := range feeds {
		if !isFeedContentType(ct) {
			t.Fatalf("expected %q to be a feed", ct)
		}
	}

	pages := []string{
		"text/html; charset=utf-8",
		"application/xhtml+xml",
		"",
		"text/plain",
	}
	for _, ct := range pages {
		if isFeedContentType(ct) {
			t.Fatalf("expected %q not to be a feed", ct)
		}
	}
}

func TestOutputTail(t *testing.T) {
	long := make([]byte, runOutputTailLength+50)
	for i := range long {
		long[i] = 'a'
	}

	if got := outputTail(long); len(got) != runOutputTailLength+3 {
		t.Fatalf("unexpected tail length: %d", len(got))
	}

	if got := outputTail([]byte("  short \n")); got != "short" {
		t.Fatalf("unexpected tail: %q", got)
	}
}
