package domain

import (
	"strings"
	"time"
)

const wordsPerMinute = 200

type Kind string

const (
	KindYouTube Kind = "youtube"
	KindWebsite Kind = "website"
)

type Style string

const (
	StyleBalanced     Style = "balanced"
	StyleBulletPoints Style = "bullet_points"
	StyleExecutive    Style = "executive"
	StyleTechnical    Style = "technical"
	StyleSimplified   Style = "simplified"
)

// Styles lists every known summary style in display order.
func Styles() []Style {
	return []Style{
		StyleBalanced,
		StyleBulletPoints,
		StyleExecutive,
		StyleTechnical,
		StyleSimplified,
	}
}

type TranscriptionModel string

const (
	TranscriptionModelBase   TranscriptionModel = "base"
	TranscriptionModelSmall  TranscriptionModel = "small"
	TranscriptionModelMedium TranscriptionModel = "medium"
	TranscriptionModelLarge  TranscriptionModel = "large"
)

// Request is a single summarization request. It is not modified once accepted.
type Request struct {
	URL                string
	Credential         string
	Style              Style
	TargetLength       int
	TranscriptionModel TranscriptionModel
	// CallerID identifies the caller for rate limiting. Empty means the
	// single global caller.
	CallerID string
}

type ClassifiedURL struct {
	Raw  string
	Kind Kind
}

// Segment is one logical unit of source content: a page, a feed item or a
// transcript.
type Segment struct {
	Text   string
	Source string
}

type ExtractedContent []Segment

// Text joins all segments into the single block handed to the model.
func (c ExtractedContent) Text() string {
	parts := make([]string, 0, len(c))
	for _, s := range c {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}

	return strings.Join(parts, "\n\n")
}

type SummaryResult struct {
	Text               string `json:"summary"`
	WordCount          int    `json:"word_count"`
	ReadingTimeMinutes int    `json:"reading_time"`
	SourceKind         Kind   `json:"url_type"`
	Cached             bool   `json:"cached"`
}

// NewSummaryResult shapes the generated text into a result with its
// statistics filled in.
func NewSummaryResult(text string, kind Kind) SummaryResult {
	words := WordCount(text)

	return SummaryResult{
		Text:               text,
		WordCount:          words,
		ReadingTimeMinutes: ReadingTime(words),
		SourceKind:         kind,
	}
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns whole minutes at 200 words per minute, never less
// than one.
func ReadingTime(words int) int {
	return max(1, words/wordsPerMinute)
}

type HistoryEntry struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Kind         Kind      `json:"url_type"`
	Style        Style     `json:"style"`
	TargetLength int       `json:"length"`
	Summary      string    `json:"summary"`
	WordCount    int       `json:"word_count"`
	CreatedAt    time.Time `json:"created_at"`
}
