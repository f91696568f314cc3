package notify

import (
	"context"
	"log/slog"
)

// MockSender logs messages instead of sending them, for local development.
type MockSender struct {
	logger *slog.Logger
}

// NewMockSender creates a mock sender.
func NewMockSender(logger *slog.Logger) *MockSender {
	return &MockSender{logger: logger}
}

// Send logs the message instead of sending it.
func (m *MockSender) Send(ctx context.Context, chatID int64, text string) error {
	m.logger.Info("MOCK MESSAGE",
		"chat_id", chatID,
		"length", len(text))
	return nil
}
