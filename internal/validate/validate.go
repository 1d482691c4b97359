package validate

import (
	"briefly/internal/domain"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"mvdan.cc/xurls/v2"
)

const credentialMinLength = 10

var (
	youtubeRe   = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com|youtu\.be)/`)
	strictURLRe = xurls.Strict()
)

// IsValidURL reports whether raw is a single absolute http(s) URL.
func IsValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	if u.Hostname() == "" {
		return false
	}

	loc := strictURLRe.FindStringIndex(raw)

	return loc != nil && loc[0] == 0 && loc[1] == len(raw)
}

// Classify returns the kind of source behind raw. The second value is false
// when raw is not a valid URL.
func Classify(raw string) (domain.Kind, bool) {
	if !IsValidURL(raw) {
		return "", false
	}

	if youtubeRe.MatchString(strings.TrimSpace(raw)) {
		return domain.KindYouTube, true
	}

	return domain.KindWebsite, true
}

// IsValidCredential checks the shape of an API key. It never contacts the
// provider. The minimum length is counted in characters.
func IsValidCredential(key string) bool {
	if utf8.RuneCountInString(key) < credentialMinLength {
		return false
	}

	stripped := strings.NewReplacer("-", "", "_", "").Replace(key)
	if stripped == "" {
		return false
	}

	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
