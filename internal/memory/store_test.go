package memory

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndListRecent(t *testing.T) {
	store := openTestStore(t)

	if err := store.Append("Ciri", KindResult, "scouted the ruins", []string{"recon"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append("Ciri", KindError, "portal unstable", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append("Yennefer", KindResult, "warded the camp", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := store.ListRecent("Ciri", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for Ciri, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Content != "portal unstable" {
		t.Errorf("expected newest entry first, got %q", entries[0].Content)
	}
	if entries[1].Tags[0] != "recon" {
		t.Errorf("expected tag round-trip, got %v", entries[1].Tags)
	}
}

func TestClearAgent(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "a", nil)
	_ = store.Append("Yennefer", KindResult, "b", nil)

	if err := store.ClearAgent("Ciri"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	ciri, _ := store.ListRecent("Ciri", 10)
	if len(ciri) != 0 {
		t.Errorf("expected Ciri memory cleared, got %d entries", len(ciri))
	}
	yen, _ := store.ListRecent("Yennefer", 10)
	if len(yen) != 1 {
		t.Errorf("expected Yennefer memory untouched, got %d entries", len(yen))
	}
}

func TestSessionCache(t *testing.T) {
	store := openTestStore(t)

	if err := store.PutCache(ChronicleKey, "day one"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.PutCache(ChronicleKey, "day two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.GetCache(ChronicleKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "day two" {
		t.Errorf("expected upserted value, got %q", got)
	}

	if err := store.ResetSession(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ = store.GetCache(ChronicleKey)
	if got != "" {
		t.Errorf("expected cache emptied at mission start, got %q", got)
	}
}

func TestGetCacheMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetCache("absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty value for missing key, got %q", got)
	}
}
