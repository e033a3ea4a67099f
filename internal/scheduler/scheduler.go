package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/silverglade/conclave/pkg/models"
)

// TaskFunc executes one task and returns its raw output text.
// Implementations are expected to be blocking network or process calls;
// the scheduler enforces the per-task timeout around them.
type TaskFunc func(ctx context.Context, task models.Task) (string, error)

// Scheduler runs plans as round-based parallel batches. Each round
// dispatches every runnable task onto a bounded worker pool and joins
// them all before re-scanning for newly unblocked work.
type Scheduler struct {
	// capacity is the maximum number of concurrently running workers.
	capacity int
	// taskTimeout is the wall-clock limit for a single task attempt.
	taskTimeout time.Duration
	// onResult, if set, is called from the coordinating loop as each
	// result is recorded, before the next round is scanned.
	onResult func(models.ExecutionResult)
}

// New creates a Scheduler with the given pool capacity and per-task timeout.
func New(capacity int, taskTimeout time.Duration) *Scheduler {
	if capacity < 1 {
		capacity = 1
	}
	return &Scheduler{capacity: capacity, taskTimeout: taskTimeout}
}

// Capacity returns the configured worker pool size.
func (s *Scheduler) Capacity() int {
	return s.capacity
}

// SetOnResult registers a callback invoked for every recorded result,
// including the synthetic deadlock entry. It runs on the coordinating
// loop between worker joins, so implementations need no locking of
// their own against the scheduler.
func (s *Scheduler) SetOnResult(fn func(models.ExecutionResult)) {
	s.onResult = fn
}

// Run executes the plan and returns one ExecutionResult per attempted
// task, in completion order. Failed and timed-out tasks never abort the
// batch. If a scan finds no runnable tasks while tasks remain pending,
// a single synthetic deadlock result is recorded and the call ends;
// Run never returns an error for plan-shaped problems.
func (s *Scheduler) Run(ctx context.Context, p models.Plan, run TaskFunc) []models.ExecutionResult {
	g := NewGraph(p)
	results := make([]models.ExecutionResult, 0, len(p))
	round := 0

	for {
		pending := g.Pending()
		if len(pending) == 0 {
			break
		}

		ready := g.Ready()
		if len(ready) == 0 {
			dead := s.deadlockResult(pending)
			results = append(results, dead)
			if s.onResult != nil {
				s.onResult(dead)
			}
			break
		}

		round++
		log.Printf("[scheduler] round %d: dispatching %d tasks (capacity %d, %d pending)",
			round, len(ready), s.capacity, len(pending))

		for _, res := range s.runRound(ctx, ready, run) {
			results = append(results, res)
			g.MarkComplete(res.TaskID)
			if s.onResult != nil {
				s.onResult(res)
			}
			log.Printf("[scheduler] round %d: task %d (%s) completed: %s", round, res.TaskID, res.Agent, res.Status)
		}
	}

	log.Printf("[scheduler] finished after %d rounds, %d results", round, len(results))
	return results
}

// runRound dispatches one batch and blocks until every worker has
// completed, failed, or timed out. The semaphore bounds concurrency at
// pool capacity; results are collected and returned to the single
// coordinating loop so the aggregated list needs no lock.
func (s *Scheduler) runRound(ctx context.Context, batch []models.Task, run TaskFunc) []models.ExecutionResult {
	resCh := make(chan models.ExecutionResult, len(batch))
	sem := make(chan struct{}, s.capacity)
	var wg sync.WaitGroup

	for _, task := range batch {
		wg.Add(1)
		go func(task models.Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resCh <- s.runOne(ctx, task, run)
		}(task)
	}

	wg.Wait()
	close(resCh)

	results := make([]models.ExecutionResult, 0, len(batch))
	for res := range resCh {
		results = append(results, res)
	}
	return results
}

// runOne executes a single task under its timeout. A timed-out worker is
// cancelled via its context and the task recorded as failed; the
// scheduler itself never retries.
func (s *Scheduler) runOne(ctx context.Context, task models.Task, run TaskFunc) models.ExecutionResult {
	tctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := run(tctx, task)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-tctx.Done():
		msg := fmt.Sprintf("timed out after %s", s.taskTimeout)
		if ctx.Err() != nil {
			msg = "cancelled: " + ctx.Err().Error()
		}
		log.Printf("[scheduler] WARN task %d (%s) %s", task.ID, task.Agent, msg)
		return models.ExecutionResult{
			TaskID:  task.ID,
			Agent:   task.Agent,
			Status:  models.StatusFailed,
			Message: msg,
		}
	case o := <-done:
		if o.err != nil {
			return models.ExecutionResult{
				TaskID:  task.ID,
				Agent:   task.Agent,
				Status:  models.StatusFailed,
				Message: o.err.Error(),
			}
		}
		return models.ExecutionResult{
			TaskID:  task.ID,
			Agent:   task.Agent,
			Status:  models.StatusSuccess,
			Message: "completed",
			Output:  o.text,
		}
	}
}

// deadlockResult builds the single synthetic failure recorded when no
// pending task can ever become runnable.
func (s *Scheduler) deadlockResult(pending []models.Task) models.ExecutionResult {
	ids := make([]string, len(pending))
	for i, t := range pending {
		ids[i] = fmt.Sprintf("%d", t.ID)
	}
	msg := fmt.Sprintf("Deadlock detected: %d tasks cannot run (ids %s), dependencies unsatisfiable",
		len(pending), strings.Join(ids, ", "))
	log.Printf("[scheduler] ERROR %s", msg)
	return models.ExecutionResult{
		TaskID:  pending[0].ID,
		Agent:   "scheduler",
		Status:  models.StatusFailed,
		Message: msg,
	}
}
