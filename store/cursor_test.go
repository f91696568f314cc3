package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCursorFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_post_id")
	c := NewCursorFile(path)

	if err := c.Save(12345); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := c.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != 12345 {
		t.Errorf("Load() = %d, want 12345", got)
	}
}

func TestCursorFileMissingMeansFreshStart(t *testing.T) {
	c := NewCursorFile(filepath.Join(t.TempDir(), "nope"))
	got, err := c.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != 0 {
		t.Errorf("Load() = %d, want 0 for missing file", got)
	}
}

func TestCursorFileTolerantOfWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor")
	if err := os.WriteFile(path, []byte("  42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewCursorFile(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Load() = %d, want 42", got)
	}
}

func TestCursorFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor")
	if err := os.WriteFile(path, []byte("not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCursorFile(path).Load(); err == nil {
		t.Error("Load() expected error for unparseable content")
	}
}
