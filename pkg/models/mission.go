package models

import "time"

// MissionState spans one full run of the plan/execute/evaluate/synthesize
// protocol. It is discarded at the start of each new mission.
type MissionState struct {
	// ID is the short unique identifier for this mission.
	ID string `json:"id"`
	// Objective is the user-supplied mission objective.
	Objective string `json:"objective"`
	// Results is the append-only aggregation of every task attempt
	// across all execution rounds, including repairs.
	Results []ExecutionResult `json:"results"`
	// Retries counts completed evaluate/repair iterations. Never exceeds
	// the configured maximum.
	Retries int `json:"retries"`
	// Success is true once the strategist judged the mission complete.
	Success bool `json:"success"`
	// StartedAt is when the mission began.
	StartedAt time.Time `json:"started_at"`
}

// FailureCount returns the number of failed results recorded so far.
func (m *MissionState) FailureCount() int {
	n := 0
	for _, r := range m.Results {
		if !r.Succeeded() {
			n++
		}
	}
	return n
}
