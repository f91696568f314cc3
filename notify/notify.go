// Package notify delivers rendered articles, mention notices, and command
// replies to chats through a pluggable sender.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"cow-notifier/pkg/news"
	"cow-notifier/render"
)

// Sender defines the interface for message delivery implementations.
type Sender interface {
	// Send transmits a MarkdownV2 text to a chat, chunking as needed.
	Send(ctx context.Context, chatID int64, text string) error
}

// Store resolves a category to its subscribed chats.
type Store interface {
	Recipients(ctx context.Context, categoryID int) ([]news.Recipient, error)
}

// Dispatcher fans rendered output out to subscribers.
type Dispatcher struct {
	sender Sender
	store  Store
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with the given sender.
func NewDispatcher(sender Sender, store Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, store: store, logger: logger}
}

// Deliver sends a rendered article to every subscriber of its category,
// honoring the per-recipient plus-one suppression preference. Send
// failures are logged per recipient and never fail the batch.
func (d *Dispatcher) Deliver(ctx context.Context, categoryID int, text string, plusOne bool) error {
	recipients, err := d.store.Recipients(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	for _, r := range recipients {
		if plusOne && r.NoPlusOne {
			d.logger.Debug("Plus-one suppressed", "chat_id", r.ChatID, "category_id", categoryID)
			continue
		}
		if err := d.sender.Send(ctx, r.ChatID, text); err != nil {
			d.logger.Warn("Delivery failed", "chat_id", r.ChatID, "error", err)
		}
	}
	return nil
}

// Mention notifies an alias owner that their alias appeared in a post.
func (d *Dispatcher) Mention(ctx context.Context, ev news.MentionEvent) error {
	text := fmt.Sprintf(`Your alias *%s* has been mentioned in newsgroup: *%s* with header: *%s* at line: %d\.`,
		render.Escape(ev.Alias), render.Escape(ev.Category), render.Escape(ev.Header), ev.Line)
	return d.sender.Send(ctx, ev.Recipient, text)
}

// Reply sends a command response to a single chat.
func (d *Dispatcher) Reply(ctx context.Context, chatID int64, text string) error {
	return d.sender.Send(ctx, chatID, text)
}
