// Package feed discovers new forum posts since a persisted cursor and
// assembles them into per-category article batches.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cow-notifier/discourse"
	"cow-notifier/pkg/news"
)

// Client is the slice of the forum API the engine needs.
type Client interface {
	AuthEpoch() int
	LatestPostID(ctx context.Context) (int64, error)
	Post(ctx context.Context, id int64) (*discourse.Post, error)
	Topic(ctx context.Context, id int64) (*discourse.Topic, error)
}

// Resolver maps category ids to dotted paths.
type Resolver interface {
	Ready() bool
	Refresh(ctx context.Context) error
	PathByID(id int) (string, bool)
}

// CursorStore persists the highest fully processed post id.
type CursorStore interface {
	Load() (int64, error)
	Save(id int64) error
}

// Engine owns the sync cursor. It is driven by exactly one poll worker,
// so the cursor needs no locking.
type Engine struct {
	client   Client
	resolver Resolver
	cursors  CursorStore
	logger   *slog.Logger
	tzOffset int // hours, for display dates

	cursor        int64
	resolverEpoch int
}

// NewEngine creates a sync engine, reading the persisted cursor once.
func NewEngine(client Client, resolver Resolver, cursors CursorStore, tzOffset int, logger *slog.Logger) (*Engine, error) {
	cursor, err := cursors.Load()
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}
	logger.Info("Cursor loaded", "cursor", cursor)
	return &Engine{
		client:        client,
		resolver:      resolver,
		cursors:       cursors,
		logger:        logger,
		tzOffset:      tzOffset,
		cursor:        cursor,
		resolverEpoch: -1,
	}, nil
}

// Cursor returns the highest fully processed post id.
func (e *Engine) Cursor() int64 { return e.cursor }

// UpdatePosts runs one catch-up pass and returns the discovered posts as
// category-id keyed batches in ascending post-id order.
//
// Each id costs two dependent fetches: the post, then its owning topic.
// A 403/404 on either means deleted or private content; the id is skipped
// for good and the cursor still advances past it. Any other failure
// aborts the pass without advancing past the last processed id, so the
// next pass resumes from the same point. The cursor is persisted
// unconditionally on loop exit.
func (e *Engine) UpdatePosts(ctx context.Context) (map[int][]*news.Article, error) {
	if !e.refreshResolver(ctx) {
		return map[int][]*news.Article{}, nil
	}

	latest, err := e.client.LatestPostID(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover latest: %w", err)
	}

	if e.cursor == 0 && latest > 0 {
		// Fresh start: record the horizon instead of replaying history.
		e.cursor = latest
		e.persist()
		e.logger.Info("Initial cursor recorded", "cursor", e.cursor)
		return map[int][]*news.Article{}, nil
	}

	batches := make(map[int][]*news.Article)
	discovered := 0
	for e.cursor < latest {
		id := e.cursor + 1

		post, err := e.client.Post(ctx, id)
		if err != nil {
			if discourse.IsNotFound(err) {
				e.logger.Debug("Post gone or private, skipping", "post_id", id)
				e.cursor = id
				continue
			}
			e.logger.Warn("Catch-up aborted", "post_id", id, "cursor", e.cursor, "error", err)
			break
		}

		topic, err := e.client.Topic(ctx, post.TopicID)
		if err != nil {
			if discourse.IsNotFound(err) {
				e.logger.Debug("Topic gone or private, skipping", "post_id", id, "topic_id", post.TopicID)
				e.cursor = id
				continue
			}
			e.logger.Warn("Catch-up aborted", "post_id", id, "cursor", e.cursor, "error", err)
			break
		}

		if article := e.buildArticle(post, topic); article != nil {
			batches[article.CategoryID] = append(batches[article.CategoryID], article)
			discovered++
		}
		e.cursor = id
	}

	e.persist()
	if discovered > 0 {
		e.logger.Info("New posts discovered", "count", discovered, "cursor", e.cursor, "latest", latest)
	}
	return batches, nil
}

// refreshResolver rebuilds the category map once per auth session. When
// the map cannot be built yet the pass yields nothing; the next tick
// tries again.
func (e *Engine) refreshResolver(ctx context.Context) bool {
	if e.resolver.Ready() && e.client.AuthEpoch() == e.resolverEpoch {
		return true
	}
	if err := e.resolver.Refresh(ctx); err != nil {
		e.logger.Warn("Category refresh failed", "error", err)
		return false
	}
	e.resolverEpoch = e.client.AuthEpoch()
	return true
}

func (e *Engine) persist() {
	if err := e.cursors.Save(e.cursor); err != nil {
		e.logger.Error("Failed to persist cursor", "cursor", e.cursor, "error", err)
	}
}

func (e *Engine) buildArticle(post *discourse.Post, topic *discourse.Topic) *news.Article {
	path, ok := e.resolver.PathByID(topic.CategoryID)
	if !ok {
		e.logger.Warn("Unknown category, dropping post",
			"post_id", post.ID,
			"topic_id", topic.ID,
			"category_id", topic.CategoryID)
		return nil
	}

	raw := post.Raw
	if raw == "" {
		raw = discourse.CookedText(post.Cooked)
	}

	displayName := post.Name
	if displayName == "" {
		displayName = post.Username
	}

	return &news.Article{
		PostID:      post.ID,
		TopicID:     post.TopicID,
		Author:      news.Author{Username: post.Username, DisplayName: displayName},
		Category:    path,
		CategoryID:  topic.CategoryID,
		Subject:     topic.Title,
		CreatedAt:   e.parseCreatedAt(post.CreatedAt),
		TZOffset:    e.tzOffset,
		Raw:         raw,
		Attachments: discourse.Attachments(post.Cooked),
	}
}

// parseCreatedAt handles the forum's timestamp form, with or without
// fractional seconds. Unparseable values degrade to the zero time.
func (e *Engine) parseCreatedAt(raw string) time.Time {
	s := strings.SplitN(raw, ".", 2)[0]
	s = strings.TrimSuffix(s, "Z")
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		e.logger.Warn("Unparseable post timestamp", "value", raw, "error", err)
		return time.Time{}
	}
	return t
}
