package provider

import (
	"context"
	"log"
	"strings"

	"github.com/silverglade/conclave/pkg/models"
)

// Chain walks an ordered fallback list of models until one yields usable
// output. A standard chain tries the agent's bound local model once before
// the remote list; the strategist chain skips the local tier entirely and
// walks a dedicated, longer remote list from the highest-capability entry
// down. No model is retried beyond the one pass.
type Chain struct {
	role string
	// local is the local inference client, nil for the strategist.
	local *Ollama
	// localModel is the agent's bound local model.
	localModel string
	// remote is the client used for every remote fallback entry.
	remote Client
	// fallbacks is the ordered remote model list.
	fallbacks models.Chain
}

// ForAgent builds the standard chain for one agent profile: its local
// model first, then the shared remote fallbacks.
func ForAgent(profile models.AgentProfile, local *Ollama, remote Client, fallbacks models.Chain) *Chain {
	return &Chain{
		role:       profile.Name,
		local:      local,
		localModel: profile.LocalModel,
		remote:     remote,
		fallbacks:  fallbacks,
	}
}

// ForStrategist builds the dedicated planning chain. The local tier is
// skipped; only the dedicated remote list is walked.
func ForStrategist(remote Client, dedicated models.Chain) *Chain {
	return &Chain{
		role:      "strategist",
		remote:    remote,
		fallbacks: dedicated,
	}
}

// Role returns the role this chain serves.
func (c *Chain) Role() string { return c.role }

// Invoke tries each tier in order and returns the first accepted
// response. On exhaustion it returns the failure sentinel text together
// with ErrExhausted so callers can keep degrading gracefully.
func (c *Chain) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.local != nil && c.localModel != "" {
		if text, ok := c.attempt(ctx, c.local, c.localModel, "local", prompt); ok {
			return text, nil
		}
	}

	for _, ref := range c.fallbacks {
		role := ref.Role
		if role == "" {
			role = "fallback"
		}
		if text, ok := c.attempt(ctx, c.remote, ref.ID, role, prompt); ok {
			return text, nil
		}
	}

	log.Printf("[chain] ERROR role=%s exhausted all %d models", c.role, len(c.fallbacks))
	return Sentinel, ErrExhausted
}

// attempt makes one invocation and applies the accept/reject rules.
// Every rejected attempt is logged at WARN with role, model, and reason.
func (c *Chain) attempt(ctx context.Context, client Client, model, tier, prompt string) (string, bool) {
	if client == nil {
		return "", false
	}

	log.Printf("[chain] role=%s trying %s model %s via %s", c.role, tier, model, client.Name())

	text, err := client.Invoke(ctx, model, prompt)
	if err != nil {
		log.Printf("[chain] WARN role=%s model=%s rejected: %v", c.role, model, err)
		return "", false
	}
	if !Usable(text) {
		log.Printf("[chain] WARN role=%s model=%s rejected: empty or error-shaped output %q",
			c.role, model, preview(text))
		return "", false
	}

	log.Printf("[chain] role=%s model=%s accepted (%d chars)", c.role, model, len(text))
	return text, true
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
