package acquire

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const emptyWebsiteMessage = "Website content is empty or not readable."

var whitespaceRe = regexp.MustCompile(`\s+`)

type WebsiteOptions struct {
	Timeout time.Duration
	// MaxContentLength caps every segment, in characters.
	MaxContentLength int
	HTTPClient       *http.Client
}

// Website scrapes a page, or reads a feed when the URL serves RSS or Atom.
// Public Telegram channel links are read from the channel preview page.
type Website struct {
	client           *http.Client
	feedParser       *gofeed.Parser
	maxContentLength int
	telegramBase     string
	log              *slog.Logger
}

func NewWebsite(opts WebsiteOptions, log *slog.Logger) *Website {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = DefaultMaxContentLength
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Website{
		client:           client,
		feedParser:       gofeed.NewParser(),
		maxContentLength: opts.MaxContentLength,
		telegramBase:     telegramBaseURL,
		log:              log,
	}
}

func (w *Website) Acquire(
	ctx context.Context,
	u domain.ClassifiedURL,
	_ Options,
) (domain.ExtractedContent, error) {
	fetchURL := u.Raw

	slug, isChannel := telegramChannelSlug(u.Raw)
	if isChannel {
		fetchURL = telegramPreviewURL(w.telegramBase, slug)
	}

	body, contentType, err := w.fetch(ctx, fetchURL)
	if err != nil {
		return nil, apperr.Website(fmt.Sprintf("Failed to fetch website: %s", err), err)
	}

	var segments domain.ExtractedContent
	switch {
	case isChannel:
		segments, err = channelSegments(body, u.Raw)
	case isFeedContentType(contentType):
		segments, err = w.feedSegments(body, u.Raw)
	default:
		segments, err = pageSegments(body, u.Raw)
	}
	if err != nil {
		return nil, apperr.Website(fmt.Sprintf("Failed to extract website content: %s", err), err)
	}

	content := make(domain.ExtractedContent, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}

		if truncated, ok := truncateRunes(text, w.maxContentLength); ok {
			w.log.InfoContext(ctx, "Truncated website content",
				"url", u.Raw,
				"source", s.Source,
				"originalLength", len([]rune(text)),
				"maxContentLength", w.maxContentLength)
			text = truncated
		}

		content = append(content, domain.Segment{Text: text, Source: s.Source})
	}

	if len(content) == 0 {
		return nil, apperr.Website(emptyWebsiteMessage, nil)
	}

	return content, nil
}

func (w *Website) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := w.client.Do(req) //nolint:gosec // Caller-supplied URL is the whole point.
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			w.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func (w *Website) feedSegments(body []byte, rawURL string) (domain.ExtractedContent, error) {
	parsed, err := w.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	segments := make(domain.ExtractedContent, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		raw := item.Content
		if strings.TrimSpace(raw) == "" {
			raw = item.Description
		}

		parts := make([]string, 0, 2)
		if title := strings.TrimSpace(item.Title); title != "" {
			parts = append(parts, title)
		}
		if text := htmlToText(raw); text != "" {
			parts = append(parts, text)
		}

		source := strings.TrimSpace(item.Link)
		if source == "" {
			source = rawURL
		}

		segments = append(segments, domain.Segment{
			Text:   strings.Join(parts, "\n\n"),
			Source: source,
		})
	}

	return segments, nil
}

func pageSegments(body []byte, rawURL string) (domain.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	title := pageTitle(doc)

	doc.Find("script, style, noscript, iframe, svg").Remove()

	sel := doc.Find("article, main, [role=main]").First()
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	var text string
	if html, htmlErr := goquery.OuterHtml(sel); htmlErr == nil {
		text = htmlToText(html)
	} else {
		text = normalizeWhitespace(sel.Text())
	}

	if text != "" && title != "" && !strings.Contains(text, title) {
		text = title + "\n\n" + text
	}

	return domain.ExtractedContent{{Text: text, Source: rawURL}}, nil
}

func pageTitle(doc *goquery.Document) string {
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

// htmlToText converts an HTML fragment to markdown so headings and lists
// survive. Plain text extraction is the fallback.
func htmlToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err == nil {
		if md = strings.TrimSpace(md); md != "" {
			return md
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normalizeWhitespace(html)
	}

	return normalizeWhitespace(doc.Text())
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func isFeedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	switch {
	case strings.Contains(mediaType, "rss"), strings.Contains(mediaType, "atom"):
		return true
	case mediaType == "application/xml", mediaType == "text/xml":
		return true
	default:
		return false
	}
}
