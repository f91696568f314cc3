package news

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrBroken marks an article whose rendering failed permanently.
var ErrBroken = errors.New("article is broken")

// Renderer turns an article's raw Discourse markdown into Telegram
// MarkdownV2 and reports alias mentions found in the raw body.
type Renderer interface {
	RenderArticle(ctx context.Context, a *Article) (text string, mentions []MentionEvent, err error)
}

// Author identifies the poster of an article.
type Author struct {
	Username    string
	DisplayName string
}

// Article is a read-mostly value object built for each discovered post.
// Rendering happens at most once: the result is memoized and mention
// events fire only on the first call. A failed render sets the sticky
// broken flag and the article is never retried.
type Article struct {
	PostID      int64
	TopicID     int64
	Author      Author
	Category    string // dotted category path
	CategoryID  int
	Subject     string // owning topic title
	CreatedAt   time.Time
	TZOffset    int // hours added to CreatedAt for display
	Raw         string
	Attachments []string

	Broken bool

	rendered     string
	renderedOnce bool
	plusOne      *bool
}

// IsPlusOne reports whether the article is a short acknowledgement post.
// Computed once and cached.
func (a *Article) IsPlusOne() bool {
	if a.plusOne == nil {
		v := strings.HasPrefix(a.Raw, "+1") && len(a.Raw) < 10
		a.plusOne = &v
	}
	return *a.plusOne
}

// HumanDate formats the creation instant in the article's local timezone.
func (a *Article) HumanDate() string {
	return a.CreatedAt.Add(time.Duration(a.TZOffset) * time.Hour).Format("02 Jan 2006, 15:04:05")
}

// Render returns the memoized MarkdownV2 text for the article, rendering
// it on first call. Mention events are returned only by the call that
// performed the render, so they are delivered exactly once. Once a render
// fails the article answers ErrBroken forever.
func (a *Article) Render(ctx context.Context, r Renderer) (string, []MentionEvent, error) {
	if a.Broken {
		return "", nil, ErrBroken
	}
	if a.renderedOnce {
		return a.rendered, nil, nil
	}
	text, mentions, err := r.RenderArticle(ctx, a)
	if err != nil {
		a.Broken = true
		return "", nil, err
	}
	a.rendered = text
	a.renderedOnce = true
	return text, mentions, nil
}
