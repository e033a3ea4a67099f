package memory

import (
	"strings"
	"testing"
)

func TestRetrieveScoredOrder(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "mapped the swamp paths", nil)
	_ = store.Append("Ciri", KindResult, "swamp swamp swamp everywhere", nil)
	_ = store.Append("Ciri", KindResult, "nothing relevant here", nil)

	entries, err := store.Retrieve("Ciri", "swamp", 2, RetrieveOptions{})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Content != "swamp swamp swamp everywhere" {
		t.Errorf("expected highest match count first, got %q", entries[0].Content)
	}
}

func TestRetrieveErrorBoost(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "portal worked fine", nil)
	_ = store.Append("Ciri", KindError, "portal collapsed mid-jump", nil)

	entries, err := store.Retrieve("Ciri", "portal", 2, RetrieveOptions{})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != KindError {
		t.Errorf("expected matching error entry boosted to the top, got kind %q", entries[0].Kind)
	}
}

func TestRetrieveRecencyFallback(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "oldest", nil)
	_ = store.Append("Ciri", KindResult, "middle", nil)
	_ = store.Append("Ciri", KindResult, "newest", nil)

	entries, err := store.Retrieve("Ciri", "zzz-unmatched-keyword", 2, RetrieveOptions{})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected recency fallback of 2, got %d", len(entries))
	}
	if entries[0].Content != "newest" || entries[1].Content != "middle" {
		t.Errorf("expected newest entries, got %q, %q", entries[0].Content, entries[1].Content)
	}
}

func TestRetrieveKindFilters(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "portal result", nil)
	_ = store.Append("Ciri", KindError, "portal error", nil)

	only, err := store.Retrieve("Ciri", "portal", 5, RetrieveOptions{Kind: KindError})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(only) != 1 || only[0].Kind != KindError {
		t.Errorf("expected kind filter to keep only errors, got %v", only)
	}

	excluded, err := store.Retrieve("Ciri", "portal", 5, RetrieveOptions{ExcludeKind: KindError})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(excluded) != 1 || excluded[0].Kind != KindResult {
		t.Errorf("expected errors excluded, got %v", excluded)
	}
}

func TestRetrieveZeroTopK(t *testing.T) {
	store := openTestStore(t)
	_ = store.Append("Ciri", KindResult, "x", nil)

	entries, err := store.Retrieve("Ciri", "x", 0, RetrieveOptions{})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil for topK=0, got %v", entries)
	}
}

func TestRetrievePartialMatchNotPadded(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "ferry schedule memorized", nil)
	_ = store.Append("Ciri", KindResult, "nothing of note", nil)
	_ = store.Append("Ciri", KindResult, "quiet day in Oxenfurt", nil)

	entries, err := store.Retrieve("Ciri", "ferry", 3, RetrieveOptions{})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	// Sparse match sets stay sparse: zero-score entries never fill the
	// remaining topK slots.
	if len(entries) != 1 {
		t.Fatalf("expected only the matching entry, got %d", len(entries))
	}
	if entries[0].Content != "ferry schedule memorized" {
		t.Errorf("unexpected entry %q", entries[0].Content)
	}
}

func TestContextBuilderBudget(t *testing.T) {
	store := openTestStore(t)

	_ = store.PutCache(ChronicleKey, "the party crossed the Pontar")
	_ = store.Append("Ciri", KindResult, "ferry ferry ferry schedule memorized", nil)
	_ = store.Append("Ciri", KindResult, "ferry docked on the north bank", nil)

	// Budget large enough for the chronicle and exactly one memory line.
	builder := NewContextBuilder(store, func(s string) int { return len(s) })
	chronicleCost := len("Chronicle:\nthe party crossed the Pontar")
	firstLine := "- [result] ferry ferry ferry schedule memorized"
	budget := chronicleCost + len(firstLine) + 1

	ctx, err := builder.Build("Ciri", "ferry", budget)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(ctx, "crossed the Pontar") {
		t.Errorf("expected chronicle included, got %q", ctx)
	}
	if !strings.Contains(ctx, "schedule memorized") {
		t.Errorf("expected top-scored memory included, got %q", ctx)
	}
	if strings.Contains(ctx, "north bank") {
		t.Errorf("expected second memory excluded by budget, got %q", ctx)
	}
}

func TestContextBuilderTopK(t *testing.T) {
	store := openTestStore(t)

	_ = store.Append("Ciri", KindResult, "ferry ferry ferry schedule", nil)
	_ = store.Append("Ciri", KindResult, "ferry docked on the north bank", nil)
	_ = store.Append("Ciri", KindResult, "ferry fare paid in advance", nil)

	builder := NewContextBuilder(store, func(s string) int { return 0 })
	builder.SetTopK(1)

	ctx, err := builder.Build("Ciri", "ferry", 1000)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := strings.Count(ctx, "- [result]"); got != 1 {
		t.Errorf("expected 1 memory line with topK=1, got %d:\n%s", got, ctx)
	}

	// Non-positive values keep the existing limit.
	builder.SetTopK(0)
	ctx, err = builder.Build("Ciri", "ferry", 1000)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := strings.Count(ctx, "- [result]"); got != 1 {
		t.Errorf("expected limit unchanged by SetTopK(0), got %d lines", got)
	}
}

func TestContextBuilderDefaultEstimator(t *testing.T) {
	if got := DefaultEstimator("12345678"); got != 2 {
		t.Errorf("expected chars/4 heuristic, got %d", got)
	}
}
