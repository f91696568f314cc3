package render

import "strings"

// reserved is the structural punctuation of Telegram MarkdownV2, plus the
// backslash itself so literal backslashes in source text survive rendering.
const reserved = "_*[]()~`>#+-=|{}.!\\"

// codeReserved is the narrower set escaped inside code spans and blocks.
const codeReserved = "`\\"

func escapeWith(text, set string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(set, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Escape prepends a backslash to every MarkdownV2 reserved character.
func Escape(text string) string {
	return escapeWith(text, reserved)
}

// EscapeCode escapes only backtick and backslash, for text placed inside
// code spans or fenced blocks.
func EscapeCode(text string) string {
	return escapeWith(text, codeReserved)
}

// Unescape degrades escaped MarkdownV2 into plain text: unescaped reserved
// characters are dropped wholesale and backslash-escaped punctuation is
// restored. This is not an inverse of Escape; it exists to produce an
// always-acceptable fallback when a provider rejects the structured markup.
func Unescape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		if r < 128 && strings.ContainsRune(reserved, r) {
			continue
		}
		if r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
