package mission

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/silverglade/conclave/internal/config"
	"github.com/silverglade/conclave/internal/memory"
	"github.com/silverglade/conclave/internal/plan"
	"github.com/silverglade/conclave/internal/provider"
	"github.com/silverglade/conclave/internal/scheduler"
	"github.com/silverglade/conclave/pkg/models"
)

// Coordinator drives one mission through the four-phase protocol:
// Plan, Execute, Evaluate/Repair (bounded by the retry budget), and
// Synthesize. It owns the strategist chain and builds a per-agent chain
// for every dispatched task.
type Coordinator struct {
	cfg            *config.Config
	agents         *config.AgentBundle
	store          *memory.Store
	builder        *memory.ContextBuilder
	local          *provider.Ollama
	remote         provider.Client
	logger         *Logger
	events         chan<- Event
	strategistName string

	// mu guards the per-mission result map read by task workers.
	mu      sync.RWMutex
	results map[int]models.ExecutionResult
	state   *models.MissionState
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLocal sets the local inference client used as the first tier of
// standard agent chains.
func WithLocal(local *provider.Ollama) Option {
	return func(c *Coordinator) { c.local = local }
}

// WithEvents sets the channel mission events are streamed to. Events
// are dropped rather than blocking when the consumer falls behind.
func WithEvents(events chan<- Event) Option {
	return func(c *Coordinator) { c.events = events }
}

// WithLogger sets the mission log.
func WithLogger(logger *Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithEstimator overrides the token estimator used for memory context
// assembly. Missions built without a store keep running memoryless.
func WithEstimator(estimate memory.TokenEstimator) Option {
	return func(c *Coordinator) {
		if c.store == nil {
			return
		}
		c.builder = c.newBuilder(estimate)
	}
}

// WithStrategistName overrides the persona used for planning,
// evaluation, and synthesis.
func WithStrategistName(name string) Option {
	return func(c *Coordinator) { c.strategistName = name }
}

// New creates a Coordinator. The remote client serves every fallback
// chain entry; the local tier is optional.
func New(cfg *config.Config, agents *config.AgentBundle, store *memory.Store, remote provider.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:            cfg,
		agents:         agents,
		store:          store,
		remote:         remote,
		logger:         &Logger{},
		strategistName: config.StrategistName,
	}
	if store != nil {
		c.builder = c.newBuilder(nil)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newBuilder constructs a context builder carrying the configured
// retrieval breadth.
func (c *Coordinator) newBuilder(estimate memory.TokenEstimator) *memory.ContextBuilder {
	b := memory.NewContextBuilder(c.store, estimate)
	if c.cfg != nil {
		b.SetTopK(c.cfg.Memory.TopK)
	}
	return b
}

// Run executes one mission and returns the final report text. The
// mission always ends with a synthesized report or an explicit Critical
// Failure message; it never panics through partial failures.
func (c *Coordinator) Run(ctx context.Context, objective string, boosted bool) (string, error) {
	state := &models.MissionState{
		ID:        uuid.New().String()[:8],
		Objective: objective,
		StartedAt: time.Now(),
	}

	c.mu.Lock()
	c.state = state
	c.results = make(map[int]models.ExecutionResult)
	c.mu.Unlock()

	c.logger.Infof("mission %s started: %q (boosted=%v)", state.ID, objective, boosted)
	c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhasePlanning})

	if c.store != nil {
		if err := c.store.ResetSession(); err != nil {
			c.logger.Warnf("mission %s: reset session cache: %v", state.ID, err)
		}
	}

	strategist := provider.ForStrategist(c.remote, c.cfg.StrategistChain())

	// Planning. A parse failure here is terminal.
	raw, err := strategist.Invoke(ctx, c.planningPrompt(objective))
	if err != nil {
		c.logger.Errorf("mission %s: planning chain exhausted", state.ID)
		return c.criticalFailure(state, fmt.Errorf("planning failed: %w", err))
	}
	current, err := plan.Decode(raw)
	if err != nil {
		c.logger.Errorf("mission %s: %v", state.ID, err)
		return c.criticalFailure(state, err)
	}
	c.logger.Infof("mission %s: plan accepted with %d tasks", state.ID, len(current))

	capacity := c.cfg.Pool.Capacity
	if boosted {
		capacity = c.cfg.Pool.BoostedCapacity
	}
	sched := scheduler.New(capacity, c.cfg.Mission.TaskTimeout)
	sched.SetOnResult(c.recordResult)

	// Execute, then evaluate; repair plans re-enter execution until the
	// strategist signals success or the retry budget runs out.
	for {
		c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhaseExecuting})
		results := sched.Run(ctx, current, c.runTask)
		state.Results = append(state.Results, results...)
		c.updateChronicle(state)

		c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhaseEvaluating})
		verdict, err := strategist.Invoke(ctx, c.evaluationPrompt(state))
		if err != nil {
			c.logger.Errorf("mission %s: evaluation chain exhausted, stopping retries", state.ID)
			break
		}

		if strings.TrimSpace(verdict) == SuccessSentinel {
			state.Success = true
			c.logger.Infof("mission %s: strategist declared success after %d repairs", state.ID, state.Retries)
			break
		}

		if state.Retries >= c.cfg.Mission.MaxRetries {
			c.logger.Warnf("mission %s: retry budget (%d) exhausted", state.ID, c.cfg.Mission.MaxRetries)
			break
		}

		repair, err := plan.Decode(verdict)
		if err != nil {
			// A bad repair plan aborts only the loop; synthesis still runs.
			c.logger.Warnf("mission %s: repair plan unparsable, stopping retries: %v", state.ID, err)
			break
		}

		state.Retries++
		current = repair
		c.logger.Infof("mission %s: repair round %d with %d tasks", state.ID, state.Retries, len(repair))
		c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhaseRepairing})
	}

	c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhaseSynthesizing})
	report := c.synthesize(ctx, strategist, state)

	c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhaseDone})
	c.logger.Infof("mission %s: finished (success=%v, %d results, %d failures)",
		state.ID, state.Success, len(state.Results), state.FailureCount())
	return report, nil
}

// runTask executes one task through its agent's fallback chain. Chain
// exhaustion surfaces as an error so the scheduler records a failed
// result; it is never raised past the worker.
func (c *Coordinator) runTask(ctx context.Context, task models.Task) (string, error) {
	profile := c.agents.Profile(task.Agent)
	chain := provider.ForAgent(profile, c.local, c.remote, c.cfg.GenericChain())

	text, err := chain.Invoke(ctx, c.taskPrompt(task, profile))
	if err != nil {
		return "", fmt.Errorf("provider chain exhausted for agent %s", task.Agent)
	}
	return text, nil
}

// recordResult runs on the scheduler's coordinating loop. It feeds the
// dependency-context map, the memory log, and the event stream.
func (c *Coordinator) recordResult(res models.ExecutionResult) {
	c.mu.Lock()
	c.results[res.TaskID] = res
	missionID := ""
	if c.state != nil {
		missionID = c.state.ID
	}
	c.mu.Unlock()

	if c.store != nil && res.Agent != "" {
		kind := memory.KindResult
		content := res.Output
		if !res.Succeeded() {
			kind = memory.KindError
			content = res.Message
		}
		if err := c.store.Append(res.Agent, kind, content, []string{"mission:" + missionID}); err != nil {
			c.logger.Warnf("mission %s: memory append for %s: %v", missionID, res.Agent, err)
		}
	}

	r := res
	c.emit(Event{Kind: EventTask, Mission: missionID, Result: &r})
}

// resultFor returns the recorded result for a task id in the current
// mission.
func (c *Coordinator) resultFor(id int) (models.ExecutionResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[id]
	return res, ok
}

// memoryContext assembles token-budgeted memory context for an agent
// prompt. Failures degrade to no context rather than failing the task.
func (c *Coordinator) memoryContext(agent, query string) string {
	if c.builder == nil {
		return ""
	}
	text, err := c.builder.Build(agent, query, c.cfg.Memory.TokenBudget)
	if err != nil {
		c.logger.Warnf("memory context for %s: %v", agent, err)
		return ""
	}
	return text
}

// updateChronicle refreshes the session-cache summary carried across
// prompts within this mission.
func (c *Coordinator) updateChronicle(state *models.MissionState) {
	if c.store == nil {
		return
	}
	summary := fmt.Sprintf("Mission %s: %q. %d results recorded, %d failed, %d repair rounds so far.",
		state.ID, state.Objective, len(state.Results), state.FailureCount(), state.Retries)
	if err := c.store.PutCache(memory.ChronicleKey, summary); err != nil {
		c.logger.Warnf("mission %s: chronicle update: %v", state.ID, err)
	}
}

// synthesize produces the final report, degrading to a fixed message
// when the strategist cannot deliver one.
func (c *Coordinator) synthesize(ctx context.Context, strategist *provider.Chain, state *models.MissionState) string {
	report, err := strategist.Invoke(ctx, c.synthesisPrompt(state))
	if err != nil {
		c.logger.Errorf("mission %s: synthesis failed: %v", state.ID, err)
		return fmt.Sprintf("Mission %s recorded %d results (%d failed), but report generation failed.",
			state.ID, len(state.Results), state.FailureCount())
	}
	return strings.TrimSpace(report)
}

// criticalFailure ends the mission with an explicit failure message
// instead of a report.
func (c *Coordinator) criticalFailure(state *models.MissionState, err error) (string, error) {
	c.emit(Event{Kind: EventPhase, Mission: state.ID, Phase: PhaseDone})
	return fmt.Sprintf("Critical Failure: %v", err), err
}

// emit sends an event without blocking; slow consumers lose events, not
// missions.
func (c *Coordinator) emit(ev Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}
