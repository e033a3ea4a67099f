package plan

import "testing"

func TestSanitizeCodeFence(t *testing.T) {
	input := "```json\n[{\"id\":1}]\n```"
	got := Sanitize(input)
	if got != `[{"id":1}]` {
		t.Errorf("expected fenced JSON extracted, got %q", got)
	}
}

func TestSanitizeProseWrapped(t *testing.T) {
	input := "Here is the plan you asked for:\n[{\"id\": 1, \"task\": \"list files\"}]\nLet me know if you need changes."
	got := Sanitize(input)
	want := `[{"id": 1, "task": "list files"}]`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSanitizeLineComments(t *testing.T) {
	input := "[\n  // first task\n  {\"id\": 1}\n]"
	got := Sanitize(input)
	want := "[\n  {\"id\": 1}\n]"
	if got != want {
		t.Errorf("expected comment stripped, got %q", got)
	}
}

func TestSanitizeKeepsURLsInStrings(t *testing.T) {
	input := `[{"id":1,"task":"fetch https://example.com/api"}]`
	got := Sanitize(input)
	if got != input {
		t.Errorf("expected URL preserved, got %q", got)
	}
}

func TestSanitizeControlBytes(t *testing.T) {
	input := "[{\"id\":1}]\x00\x07"
	got := Sanitize(input)
	if got != `[{"id":1}]` {
		t.Errorf("expected control bytes removed, got %q", got)
	}
}

func TestSanitizeBracketsInsideStrings(t *testing.T) {
	input := `prefix {"note": "a ] tricky } value", "id": 1} suffix`
	got := Sanitize(input)
	want := `{"note": "a ] tricky } value", "id": 1}`
	if got != want {
		t.Errorf("expected quote-aware balancing, got %q", got)
	}
}

func TestSanitizeNoStructure(t *testing.T) {
	input := "I could not produce a plan."
	got := Sanitize(input)
	if got != input {
		t.Errorf("expected cleaned text returned unchanged, got %q", got)
	}
}

// Sanitize must be a fixpoint: cleaning already-clean output is a no-op.
func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n[{\"id\":1}]\n```",
		`[{"id": 1, "task": "x"}]`,
		"noise before {\"id\": 2} noise after",
		"no json here at all",
		"[\n  // comment\n  {\"id\": 3}\n]",
	}

	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
