package acquire

import (
	"briefly/internal/domain"
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	telegramHost             = "t.me"
	telegramBaseURL          = "https://" + telegramHost
	telegramPreviewPathParts = 2
)

var telegramSlugRe = regexp.MustCompile(`^\w{5,32}$`)

// telegramChannelSlug reports whether raw points at a public Telegram
// channel (t.me/<slug> or t.me/s/<slug>) and returns the slug.
func telegramChannelSlug(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	if !strings.EqualFold(u.Host, telegramHost) {
		return "", false
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", false
	}

	// Links to a single post (t.me/<slug>/<id>) are ordinary pages.
	parts := strings.Split(path, "/")

	slug := parts[0]
	switch {
	case slug == "s" && len(parts) == telegramPreviewPathParts:
		slug = parts[1]
	case len(parts) != 1:
		return "", false
	}

	if !telegramSlugRe.MatchString(slug) {
		return "", false
	}

	return slug, true
}

func telegramPreviewURL(base, slug string) string {
	return fmt.Sprintf("%s/s/%s", strings.TrimRight(base, "/"), slug)
}

// telegramPostURL drops the query and fragment Telegram appends to post links.
func telegramPostURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

// channelSegments turns the public preview page of a channel into one
// segment per post, oldest first as Telegram renders them.
func channelSegments(body []byte, rawURL string) (domain.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	var segments domain.ExtractedContent

	doc.Find(".tgme_widget_message").Each(func(_ int, message *goquery.Selection) {
		var text strings.Builder

		message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
			func(_ int, inner *goquery.Selection) {
				inner.Find("br").Each(func(_ int, br *goquery.Selection) {
					br.ReplaceWithHtml("\n")
				})

				fragment := strings.TrimSpace(inner.Text())
				if fragment == "" {
					return
				}
				if text.Len() > 0 {
					text.WriteString("\n")
				}
				text.WriteString(fragment)
			},
		)

		if text.Len() == 0 {
			return
		}

		source := rawURL
		if href, ok := message.Find("a.tgme_widget_message_date").Attr("href"); ok && href != "" {
			source = telegramPostURL(href)
		}

		segments = append(segments, domain.Segment{Text: text.String(), Source: source})
	})

	if len(segments) > 0 {
		if title, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(title) != "" {
			segments[0].Text = strings.TrimSpace(title) + "\n\n" + segments[0].Text
		}
	}

	return segments, nil
}
