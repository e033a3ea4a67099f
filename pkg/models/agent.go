package models

// AgentProfile is the static configuration for one persona.
// Profiles are read-only at runtime.
type AgentProfile struct {
	// Name is the persona name tasks are assigned to.
	Name string `yaml:"name"`
	// Persona is the instructional system text for this agent.
	Persona string `yaml:"persona"`
	// LocalModel is the preferred local inference model, tried before
	// any remote fallback.
	LocalModel string `yaml:"local_model"`
	// Grimoires lists capability bundles this agent always carries.
	Grimoires []string `yaml:"grimoires,omitempty"`
}

// ModelRef identifies one entry in a provider fallback chain.
type ModelRef struct {
	// ID is the provider-facing model identifier.
	ID string `yaml:"id"`
	// Role is the display role used in logs (e.g. "primary", "fallback").
	Role string `yaml:"role"`
}

// Chain is an ordered fallback list of models, walked from the highest
// capability entry toward the most conservative one.
type Chain []ModelRef
