package models

// ResultStatus represents the terminal outcome of one task attempt.
type ResultStatus string

const (
	// StatusSuccess indicates the task produced usable output.
	StatusSuccess ResultStatus = "success"
	// StatusFailed indicates the task failed, timed out, or could not be dispatched.
	StatusFailed ResultStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s ResultStatus) Valid() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Task represents one unit of work assigned to an agent within a plan.
// Tasks are normalized at decode time and immutable once admitted to the
// scheduler.
type Task struct {
	// ID is the plan-unique positive identifier for this task.
	ID int `json:"id"`
	// Agent is the name of the persona assigned to this task.
	Agent string `json:"agent"`
	// Instruction is the work description handed to the agent.
	Instruction string `json:"task"`
	// Grimoires lists capability bundle names attached to this task.
	Grimoires []string `json:"grimoires,omitempty"`
	// DependsOn lists task IDs that must have a recorded result before
	// this task is dispatched.
	DependsOn []int `json:"dependencies,omitempty"`
}

// Plan is an ordered sequence of tasks produced by one planning or repair call.
type Plan []Task

// ExecutionResult records the outcome of exactly one task attempt.
// Results are append-only: once created they are never mutated.
type ExecutionResult struct {
	// TaskID is the ID of the task this result belongs to.
	TaskID int `json:"id"`
	// Agent is the persona that ran (or should have run) the task.
	Agent string `json:"agent"`
	// Status is the terminal outcome.
	Status ResultStatus `json:"status"`
	// Message is a short human-readable outcome description.
	Message string `json:"message"`
	// Output is the raw text the agent produced, empty on failure.
	Output string `json:"result,omitempty"`
}

// Succeeded returns true if the result recorded a success.
func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
