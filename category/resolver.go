// Package category flattens the forum's category tree into dotted
// root-to-leaf names and answers id/name lookups.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"cow-notifier/discourse"
)

// maxDepth bounds the parent walk so malformed data cannot loop forever.
const maxDepth = 32

// Client fetches the flat category list.
type Client interface {
	Categories(ctx context.Context) ([]discourse.Category, error)
}

// Resolver memoizes the id to dotted-path mapping for one sync session.
// The sync worker refreshes it; collaborators only read.
type Resolver struct {
	client Client
	logger *slog.Logger

	mu     sync.RWMutex
	byID   map[int]string
	byName map[string]int
}

// New creates an empty resolver; call Refresh before first use.
func New(client Client, logger *slog.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Ready reports whether a category map has been built.
func (r *Resolver) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID != nil
}

// Refresh rebuilds the mapping from the remote category list.
func (r *Resolver) Refresh(ctx context.Context) error {
	cats, err := r.client.Categories(ctx)
	if err != nil {
		return fmt.Errorf("refresh categories: %w", err)
	}

	catsByID := make(map[int]discourse.Category, len(cats))
	for _, c := range cats {
		catsByID[c.ID] = c
	}

	byID := make(map[int]string, len(cats))
	byName := make(map[string]int, len(cats))
	for _, c := range cats {
		path := resolvePath(c, catsByID)
		byID[c.ID] = path
		byName[path] = c.ID
	}

	r.mu.Lock()
	r.byID = byID
	r.byName = byName
	r.mu.Unlock()

	r.logger.Info("Category map rebuilt", "categories", len(byID))
	return nil
}

// resolvePath walks the parent chain root to leaf. A missing parent is
// treated as a root rather than an error.
func resolvePath(c discourse.Category, byID map[int]discourse.Category) string {
	segments := []string{segment(c.Name)}
	cur := c
	for depth := 0; cur.ParentID != nil && depth < maxDepth; depth++ {
		parent, ok := byID[*cur.ParentID]
		if !ok {
			break
		}
		segments = append(segments, segment(parent.Name))
		cur = parent
	}
	// Reverse into root-to-leaf order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}

func segment(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// PathByID returns the dotted path for a category id.
func (r *Resolver) PathByID(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.byID[id]
	return path, ok
}

// LookupByName resolves an exact dotted path, case-insensitively.
func (r *Resolver) LookupByName(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lower := strings.ToLower(name)
	id, ok := r.byName[lower]
	return id, ok
}

// ClosestMatches finds candidate paths for a user-supplied name. An exact
// case-insensitive match wins outright; otherwise every path containing
// the substring is a candidate and the caller decides whether a non-single
// result is ambiguous.
func (r *Resolver) ClosestMatches(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lower := strings.ToLower(name)
	if _, ok := r.byName[lower]; ok {
		return []string{lower}
	}
	var matches []string
	for path := range r.byName {
		if strings.Contains(path, lower) {
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	return matches
}

// Paths lists every known dotted path in sorted order.
func (r *Resolver) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.byName))
	for p := range r.byName {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
