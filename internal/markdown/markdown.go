// Package markdown escapes text for Telegram MarkdownV2.
package markdown

import "strings"

// Reserved by MarkdownV2, backslash included, see
// https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\_*[]()~>#+-=|{}.!` + "`"

//nolint:gochecknoglobals // Built once and never modified.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for _, c := range []byte(mdV2SpecialChars) {
		m[c] = true
	}
	return m
}()

// EscapeV2 escapes every reserved character in input. All reserved
// characters are ASCII so multi-byte runes pass through untouched.
func EscapeV2(input string) string {
	charsToEscape := 0
	for i := range len(input) {
		if mdV2Lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if mdV2Lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// EscapedLen is the length of EscapeV2(input) without building it.
func EscapedLen(input string) int {
	n := len(input)
	for i := range len(input) {
		if mdV2Lookup[input[i]] {
			n++
		}
	}
	return n
}
