package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/silverglade/conclave/pkg/models"
)

// StrategistName is the reserved role that plans, evaluates, and
// synthesizes. It never runs plan tasks itself.
const StrategistName = "Vesemir"

// AgentBundle holds the persona roster and the grimoire reference texts.
type AgentBundle struct {
	// Agents maps persona name to its profile.
	Agents map[string]models.AgentProfile `yaml:"agents"`
	// Grimoires maps bundle name to its reference text. Names without
	// an entry here are passed through to prompts as opaque labels.
	Grimoires map[string]string `yaml:"grimoires"`
}

// Profile returns the profile for an agent name, falling back to a bare
// profile so tasks assigned to unknown personas still run.
func (b *AgentBundle) Profile(name string) models.AgentProfile {
	if p, ok := b.Agents[name]; ok {
		return p
	}
	return models.AgentProfile{Name: name}
}

// GrimoireText returns the reference text for a grimoire name, or the
// bare name when no bundle is configured for it.
func (b *AgentBundle) GrimoireText(name string) string {
	if text, ok := b.Grimoires[name]; ok {
		return text
	}
	return name
}

// LoadAgents loads the agent bundle from agents.yaml in the user config
// directory, falling back to the compiled-in defaults when the file is
// absent.
func LoadAgents() (*AgentBundle, error) {
	return LoadAgentsFromPath(filepath.Join(UserConfigDir(), "agents.yaml"))
}

// LoadAgentsFromPath loads an agent bundle from a specific file.
// A missing file yields the default bundle; a malformed file is an error.
func LoadAgentsFromPath(path string) (*AgentBundle, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultAgents(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	bundle := &AgentBundle{}
	if err := yaml.Unmarshal(data, bundle); err != nil {
		return nil, fmt.Errorf("parse agents file: %w", err)
	}

	// Merge defaults for anything the file leaves out.
	defaults := DefaultAgents()
	if bundle.Agents == nil {
		bundle.Agents = defaults.Agents
	}
	if bundle.Grimoires == nil {
		bundle.Grimoires = defaults.Grimoires
	}

	for name, p := range bundle.Agents {
		if p.Name == "" {
			p.Name = name
			bundle.Agents[name] = p
		}
	}

	return bundle, nil
}

// DefaultAgents returns the compiled-in persona roster.
func DefaultAgents() *AgentBundle {
	return &AgentBundle{
		Agents: map[string]models.AgentProfile{
			StrategistName: {
				Name:    StrategistName,
				Persona: "You are Vesemir, the strategist. You break objectives into precise, parallelizable tasks, judge outcomes without sentiment, and write plans as strict JSON.",
			},
			"Geralt": {
				Name:       "Geralt",
				Persona:    "You are Geralt, the executor. You carry tasks out directly and report exactly what you did and what you found.",
				LocalModel: "llama3.1:8b",
			},
			"Ciri": {
				Name:       "Ciri",
				Persona:    "You are Ciri, the scout. You gather information quickly and summarize it tersely.",
				LocalModel: "llama3.1:8b",
				Grimoires:  []string{"pathfinding"},
			},
			"Yennefer": {
				Name:       "Yennefer",
				Persona:    "You are Yennefer, the analyst. You reason carefully about evidence and flag anything inconsistent.",
				LocalModel: "qwen2.5:14b",
			},
			"Triss": {
				Name:       "Triss",
				Persona:    "You are Triss, the writer. You turn raw findings into clear prose for humans.",
				LocalModel: "llama3.1:8b",
			},
		},
		Grimoires: map[string]string{
			"pathfinding": "Prefer breadth-first exploration. Record every dead end so it is not revisited.",
		},
	}
}
