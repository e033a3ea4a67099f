package mission

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchAbortCancelsContext(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aw, err := WatchAbort(dir, cancel, &Logger{})
	if err != nil {
		t.Fatalf("WatchAbort: %v", err)
	}
	defer aw.Close()

	if err := os.WriteFile(filepath.Join(dir, "signals", "abort"), []byte("stop"), 0644); err != nil {
		t.Fatalf("write abort file: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("abort file did not cancel the context")
	}
}

func TestWatchAbortIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aw, err := WatchAbort(dir, cancel, &Logger{})
	if err != nil {
		t.Fatalf("WatchAbort: %v", err)
	}
	defer aw.Close()

	if err := os.WriteFile(filepath.Join(dir, "signals", "note"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-ctx.Done():
		t.Fatal("unrelated file cancelled the context")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchAbortClearsStaleSignal(t *testing.T) {
	dir := t.TempDir()
	signals := filepath.Join(dir, "signals")
	if err := os.MkdirAll(signals, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(signals, "abort"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aw, err := WatchAbort(dir, cancel, &Logger{})
	if err != nil {
		t.Fatalf("WatchAbort: %v", err)
	}
	defer aw.Close()

	select {
	case <-ctx.Done():
		t.Fatal("stale abort file cancelled a fresh mission")
	case <-time.After(300 * time.Millisecond):
	}
}
