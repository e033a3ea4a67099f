package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/silverglade/conclave/pkg/models"
)

// ErrParse indicates the strategist output could not be decoded into a
// plan. During planning this is terminal for the mission; during repair
// it only aborts the repair loop.
var ErrParse = errors.New("plan parse failed")

// rawTask is the loosely-typed JSON shape the strategist returns.
// IDs arrive as numbers or numeric strings depending on the model.
type rawTask struct {
	ID           json.RawMessage   `json:"id"`
	Agent        string            `json:"agent"`
	Task         string            `json:"task"`
	Grimoires    []string          `json:"grimoires"`
	Dependencies []json.RawMessage `json:"dependencies"`
}

// rawEnvelope covers strategists that wrap the task list in an object.
type rawEnvelope struct {
	Tasks []rawTask `json:"tasks"`
}

// Decode sanitizes raw strategist output and decodes it into a normalized
// plan. Normalization coerces ids to integers, removes self-references
// from dependencies (with a logged warning), and rejects duplicate or
// non-positive ids with an ErrParse-wrapped error.
func Decode(raw string) (models.Plan, error) {
	cleaned := Sanitize(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var decoded []rawTask
	if strings.HasPrefix(cleaned, "{") {
		var env rawEnvelope
		if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
			return nil, fmt.Errorf("%w: unmarshal object: %v", ErrParse, err)
		}
		decoded = env.Tasks
	} else {
		if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
			return nil, fmt.Errorf("%w: unmarshal array: %v", ErrParse, err)
		}
	}

	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: empty task list", ErrParse)
	}

	seen := make(map[int]bool, len(decoded))
	tasks := make(models.Plan, 0, len(decoded))

	for i, rt := range decoded {
		id, err := coerceID(rt.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %v", ErrParse, i, err)
		}
		if id <= 0 {
			return nil, fmt.Errorf("%w: task %d: non-positive id %d", ErrParse, i, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate task id %d", ErrParse, id)
		}
		seen[id] = true

		task := models.Task{
			ID:          id,
			Agent:       strings.TrimSpace(rt.Agent),
			Instruction: strings.TrimSpace(rt.Task),
			Grimoires:   rt.Grimoires,
		}

		depSeen := make(map[int]bool)
		for _, rd := range rt.Dependencies {
			depID, err := coerceID(rd)
			if err != nil {
				return nil, fmt.Errorf("%w: task %d: dependency: %v", ErrParse, id, err)
			}
			if depID == id {
				log.Printf("[plan] WARN task %d lists itself as a dependency, dropping", id)
				continue
			}
			if depSeen[depID] {
				continue
			}
			depSeen[depID] = true
			task.DependsOn = append(task.DependsOn, depID)
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

// coerceID accepts a JSON number or a numeric string and returns the
// integer value.
func coerceID(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing id")
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("non-numeric id %q", s)
		}
		return n, nil
	}

	return 0, fmt.Errorf("unparsable id %s", string(raw))
}
