package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "app.log_filters.json")
	other := filepath.Join(dir, "other.json")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New([]string{watched})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	// Unwatched sibling must be ignored.
	if err := os.WriteFile(other, []byte("[1]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(watched, []byte(`[{"type":"Include Text","value":"x","case_sensitive":true}]`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events:
		if ev.Path != watched {
			t.Errorf("expected event for %q, got %q", watched, ev.Path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	// Cancel and allow goroutines to stop before TempDir cleanup.
	cancel()
	time.Sleep(100 * time.Millisecond)
}

func TestWatcherPaths(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")})
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()

	if got := len(w.Paths()); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
}
