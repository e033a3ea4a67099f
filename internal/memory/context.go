package memory

import "strings"

// ChronicleKey is the session-cache key holding the running mission
// summary carried across prompts.
const ChronicleKey = "chronicle"

// TokenEstimator approximates how many tokens a string costs. The
// default is the chars/4 heuristic; swap in a real tokenizer without
// touching retrieval.
type TokenEstimator func(s string) int

// DefaultEstimator is the chars/4 approximation.
func DefaultEstimator(s string) int {
	return len(s) / 4
}

// ContextBuilder assembles token-budgeted prompt context from the
// session cache and scored memories.
type ContextBuilder struct {
	store    *Store
	estimate TokenEstimator
	topK     int
}

// NewContextBuilder creates a builder over the store. A nil estimator
// falls back to DefaultEstimator.
func NewContextBuilder(store *Store, estimate TokenEstimator) *ContextBuilder {
	if estimate == nil {
		estimate = DefaultEstimator
	}
	return &ContextBuilder{store: store, estimate: estimate, topK: 10}
}

// SetTopK overrides how many scored memories are considered during
// assembly. Non-positive values keep the current limit.
func (b *ContextBuilder) SetTopK(k int) {
	if k > 0 {
		b.topK = k
	}
}

// Build assembles context for one agent prompt. The chronicle summary is
// counted against the budget first; scored memories are then added in
// score order until the next one would exceed the budget, at which point
// assembly stops. Entries are excluded whole, never truncated.
func (b *ContextBuilder) Build(agent, query string, budget int) (string, error) {
	var sections []string
	used := 0

	chronicle, err := b.store.GetCache(ChronicleKey)
	if err != nil {
		return "", err
	}
	if chronicle != "" {
		section := "Chronicle:\n" + chronicle
		used += b.estimate(section)
		if used <= budget {
			sections = append(sections, section)
		} else {
			// Even the chronicle alone blows the budget; nothing fits.
			return "", nil
		}
	}

	entries, err := b.store.Retrieve(agent, query, b.topK, RetrieveOptions{})
	if err != nil {
		return "", err
	}

	var lines []string
	for _, e := range entries {
		line := "- [" + e.Kind + "] " + e.Content
		cost := b.estimate(line)
		if used+cost > budget {
			break
		}
		used += cost
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		sections = append(sections, "Relevant memories:\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n"), nil
}
