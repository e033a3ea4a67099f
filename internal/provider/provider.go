// Package provider wraps the model backends conclave can invoke: a local
// Ollama endpoint, the claude CLI, and the direct Anthropic API.
package provider

import (
	"context"
	"errors"
	"strings"
)

// Sentinel is the in-band failure marker returned when every model in a
// fallback chain has been tried without usable output. Callers treat it
// as text so degraded missions keep running instead of crashing.
const Sentinel = "[PROVIDER-EXHAUSTED]"

// ErrExhausted indicates a fallback chain walked its full model list
// without an accepted response.
var ErrExhausted = errors.New("all providers exhausted")

// Client issues one model invocation and returns raw text or an error.
type Client interface {
	// Name identifies the backend in logs.
	Name() string
	// Invoke sends the prompt to the given model and returns its output.
	Invoke(ctx context.Context, model, prompt string) (string, error)
}

// errorPrefixes are known error-shape markers in model output. A
// response starting with one of these is rejected even though the call
// itself did not fail.
var errorPrefixes = []string{
	"Error:",
	"ERROR:",
	"error:",
	Sentinel,
}

// Usable reports whether a response is non-empty and not error-shaped.
func Usable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}
	return true
}
