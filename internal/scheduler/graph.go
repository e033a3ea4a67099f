// Package scheduler executes validated plans as dependency-gated rounds
// over a bounded worker pool.
package scheduler

import (
	"sync"

	"github.com/silverglade/conclave/pkg/models"
)

// Graph tracks dependency state for one plan execution.
// The completed set is written by the coordinating loop after worker
// joins and read when scanning for runnable tasks; both failed and
// succeeded tasks enter it, so dependents of a failed task still run
// (deliberate continue-on-error gating).
type Graph struct {
	mu sync.RWMutex
	// order preserves plan order for deterministic ready scans.
	order []int
	// nodes maps task ID to the task itself.
	nodes map[int]models.Task
	// completed tracks tasks with a recorded result.
	completed map[int]bool
}

// NewGraph builds a graph from a normalized plan.
func NewGraph(p models.Plan) *Graph {
	g := &Graph{
		nodes:     make(map[int]models.Task, len(p)),
		completed: make(map[int]bool, len(p)),
	}
	for _, t := range p {
		g.order = append(g.order, t.ID)
		g.nodes[t.ID] = t
	}
	return g
}

// Ready returns tasks whose every dependency has a recorded result and
// which have no result themselves, in plan order.
func (g *Graph) Ready() []models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []models.Task
	for _, id := range g.order {
		if g.completed[id] {
			continue
		}
		task := g.nodes[id]
		satisfied := true
		for _, dep := range task.DependsOn {
			// Dependencies on unknown ids are never satisfied; the
			// deadlock scan reports them.
			if !g.completed[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, task)
		}
	}
	return ready
}

// MarkComplete records that a task has a result. Success and failure
// both unblock dependents.
func (g *Graph) MarkComplete(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed[id] = true
}

// Pending returns the tasks that have no recorded result yet, in plan order.
func (g *Graph) Pending() []models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var pending []models.Task
	for _, id := range g.order {
		if !g.completed[id] {
			pending = append(pending, g.nodes[id])
		}
	}
	return pending
}

// Size returns the number of tasks in the graph.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}
