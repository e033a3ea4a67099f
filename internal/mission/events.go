package mission

import "github.com/silverglade/conclave/pkg/models"

// Phase names reported over the event stream.
const (
	PhasePlanning     = "planning"
	PhaseExecuting    = "executing"
	PhaseEvaluating   = "evaluating"
	PhaseRepairing    = "repairing"
	PhaseSynthesizing = "synthesizing"
	PhaseDone         = "done"
)

// EventKind distinguishes event payloads.
type EventKind string

const (
	// EventPhase marks a protocol phase transition.
	EventPhase EventKind = "phase"
	// EventTask carries one recorded task result.
	EventTask EventKind = "task"
	// EventText carries streamed status text for rendering.
	EventText EventKind = "text"
)

// Event is one item on the mission event stream consumed by the CLI or
// TUI renderer. The renderer owns no scheduling or retry logic; it only
// displays what it receives.
type Event struct {
	Kind    EventKind
	Mission string
	Phase   string
	Result  *models.ExecutionResult
	Text    string
}
