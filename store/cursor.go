// Package store holds the pipeline's persistence adapters: the cursor
// file owned by the sync engine and the redis-backed subscription store.
package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CursorFile persists the sync cursor as a plain-text integer.
type CursorFile struct {
	path string
}

// NewCursorFile creates a cursor store at the given path.
func NewCursorFile(path string) *CursorFile {
	return &CursorFile{path: path}
}

// Load reads the persisted cursor. A missing file means a fresh start.
func (c *CursorFile) Load() (int64, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cursor file: %w", err)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cursor file %s: %w", c.path, err)
	}
	return id, nil
}

// Save writes the cursor.
func (c *CursorFile) Save(id int64) error {
	if err := os.WriteFile(c.path, []byte(strconv.FormatInt(id, 10)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write cursor file: %w", err)
	}
	return nil
}
