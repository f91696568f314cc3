// Package poll drives the sync, render, dispatch cycle on a fixed interval.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cow-notifier/pkg/news"
)

// Engine discovers new posts since the persisted cursor.
type Engine interface {
	UpdatePosts(ctx context.Context) (map[int][]*news.Article, error)
}

// Delivery transmits rendered output to subscribers.
type Delivery interface {
	Deliver(ctx context.Context, categoryID int, text string, plusOne bool) error
	Mention(ctx context.Context, ev news.MentionEvent) error
}

// Monitor runs the pipeline: one worker, one tick at a time.
type Monitor struct {
	engine   Engine
	renderer news.Renderer
	delivery Delivery
	logger   *slog.Logger
	interval time.Duration
}

// New creates a poll monitor.
func New(engine Engine, renderer news.Renderer, delivery Delivery, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		engine:   engine,
		renderer: renderer,
		delivery: delivery,
		logger:   logger,
		interval: interval,
	}
}

// Run ticks until the context is cancelled. Tick errors are logged and
// the next tick retries from the persisted cursor.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Poll worker started", "interval", m.interval.String())
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			m.logger.Warn("Poll tick failed", "error", err)
		}
		select {
		case <-ctx.Done():
			m.logger.Info("Poll worker stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one full pipeline pass: discover, render, dispatch.
func (m *Monitor) Tick(ctx context.Context) error {
	batches, err := m.engine.UpdatePosts(ctx)
	if err != nil {
		return err
	}

	for categoryID, articles := range batches {
		for _, article := range articles {
			text, mentions, err := article.Render(ctx, m.renderer)
			if err != nil {
				// The broken flag is sticky; this article never renders again.
				m.logger.Error("Render failed, dropping post",
					"post_id", article.PostID,
					"category", article.Category,
					"error", err)
				continue
			}

			for _, ev := range mentions {
				if err := m.delivery.Mention(ctx, ev); err != nil {
					m.logger.Warn("Mention notice failed",
						"chat_id", ev.Recipient,
						"alias", ev.Alias,
						"error", err)
				}
			}

			if err := m.delivery.Deliver(ctx, categoryID, text, article.IsPlusOne()); err != nil {
				m.logger.Warn("Dispatch failed",
					"post_id", article.PostID,
					"category_id", categoryID,
					"error", err)
			}
		}
	}
	return nil
}
