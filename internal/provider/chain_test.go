package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/silverglade/conclave/pkg/models"
)

// fakeClient returns scripted responses keyed by model id.
type fakeClient struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Invoke(ctx context.Context, model, prompt string) (string, error) {
	f.calls = append(f.calls, model)
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

func TestChainFirstFailureFallsThrough(t *testing.T) {
	remote := &fakeClient{
		responses: map[string]string{"model-b": "answer from b"},
		errs:      map[string]error{"model-a": errors.New("connection refused")},
	}
	chain := ForStrategist(remote, models.Chain{
		{ID: "model-a", Role: "primary"},
		{ID: "model-b", Role: "fallback"},
		{ID: "model-c", Role: "last-resort"},
	})

	text, err := chain.Invoke(context.Background(), "plan this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "answer from b" {
		t.Errorf("expected b's output, got %q", text)
	}
	for _, model := range remote.calls {
		if model == "model-c" {
			t.Error("model-c should never be invoked once b succeeded")
		}
	}
}

func TestChainRejectsEmptyAndErrorShaped(t *testing.T) {
	remote := &fakeClient{
		responses: map[string]string{
			"empty":    "   \n\t ",
			"shaped":   "Error: model unavailable",
			"sentinel": Sentinel,
			"good":     "usable output",
		},
	}
	chain := ForStrategist(remote, models.Chain{
		{ID: "empty"}, {ID: "shaped"}, {ID: "sentinel"}, {ID: "good"},
	})

	text, err := chain.Invoke(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "usable output" {
		t.Errorf("expected rejection of empty/error-shaped responses, got %q", text)
	}
	if len(remote.calls) != 4 {
		t.Errorf("expected all 4 models attempted in order, got %v", remote.calls)
	}
}

func TestChainExhaustion(t *testing.T) {
	remote := &fakeClient{
		errs: map[string]error{
			"a": errors.New("down"),
			"b": errors.New("down"),
		},
	}
	chain := ForStrategist(remote, models.Chain{{ID: "a"}, {ID: "b"}})

	text, err := chain.Invoke(context.Background(), "p")
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if text != Sentinel {
		t.Errorf("expected sentinel text, got %q", text)
	}
}

func TestChainWalksListOnce(t *testing.T) {
	remote := &fakeClient{
		errs: map[string]error{"a": errors.New("down")},
	}
	chain := ForStrategist(remote, models.Chain{{ID: "a"}})

	_, _ = chain.Invoke(context.Background(), "p")
	if len(remote.calls) != 1 {
		t.Errorf("expected exactly one attempt per model, got %v", remote.calls)
	}
}

func TestStandardChainWithoutLocalModel(t *testing.T) {
	remote := &fakeClient{responses: map[string]string{"r": "ok"}}
	profile := models.AgentProfile{Name: "Ciri"} // no bound local model

	chain := ForAgent(profile, nil, remote, models.Chain{{ID: "r"}})
	text, err := chain.Invoke(context.Background(), "p")
	if err != nil || text != "ok" {
		t.Fatalf("expected remote fallback to serve, got %q, %v", text, err)
	}
}

func TestUsable(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"real output", true},
		{"", false},
		{"  \n ", false},
		{"Error: nope", false},
		{"ERROR: nope", false},
		{"error: nope", false},
		{Sentinel, false},
		{"  Error: padded", false},
		{"An error occurred mid-sentence is fine", true},
	}
	for _, c := range cases {
		if got := Usable(c.text); got != c.want {
			t.Errorf("Usable(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
