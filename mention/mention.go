// Package mention detects subscriber aliases inside raw post bodies.
package mention

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"cow-notifier/pkg/news"
)

// AliasStore resolves a normalized alias to the chats that registered it.
type AliasStore interface {
	AliasRecipients(ctx context.Context, alias string) ([]int64, error)
}

// aliasPattern matches a student-number form at the start of a line: an
// optional leading letter followed by 6 or 7 digits.
var aliasPattern = regexp.MustCompile(`^[A-Za-z]?[0-9]{6,7}\b`)

// Scanner walks post bodies line by line looking for alias mentions.
type Scanner struct {
	store  AliasStore
	logger *slog.Logger
}

// New creates a scanner backed by the given alias store.
func New(store AliasStore, logger *slog.Logger) *Scanner {
	return &Scanner{store: store, logger: logger}
}

// Valid reports whether token is a non-empty alias form in its entirety.
func Valid(token string) bool {
	return token != "" && aliasPattern.FindString(token) == token
}

// Normalize reduces a matched token to its canonical minimal form: the
// leading letter is stripped and the digits truncated to six.
func Normalize(token string) string {
	if len(token) > 0 && (token[0] < '0' || token[0] > '9') {
		token = token[1:]
	}
	if len(token) > 6 {
		token = token[:6]
	}
	return token
}

// Scan is a single left-to-right pass over the body. It tracks the most
// recent non-alias line as the current header and a line counter that
// resets whenever a new header line is seen. Lines starting with an
// escaped quote marker are quoted-reply artifacts and never re-notify.
// Store lookup failures are logged and the alias skipped.
func (s *Scanner) Scan(ctx context.Context, body, category string) []news.MentionEvent {
	var events []news.MentionEvent
	header := ""
	lineNo := 0
	for _, rawLine := range strings.Split(body, "\n") {
		line := strings.TrimSpace(rawLine)
		if strings.HasPrefix(line, `\>`) {
			lineNo++
			continue
		}
		token := aliasPattern.FindString(line)
		if token == "" {
			header = line
			lineNo = 0
		} else {
			mentionHeader := header
			if len(line) > len(token) {
				mentionHeader = line
			}
			alias := Normalize(token)
			recipients, err := s.store.AliasRecipients(ctx, alias)
			if err != nil {
				s.logger.Warn("alias lookup failed", "alias", alias, "error", err)
				lineNo++
				continue
			}
			for _, cid := range recipients {
				events = append(events, news.MentionEvent{
					Recipient: cid,
					Alias:     token,
					Category:  category,
					Header:    mentionHeader,
					Line:      lineNo,
				})
			}
		}
		lineNo++
	}
	return events
}
