package mission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/silverglade/conclave/pkg/models"
)

// SuccessSentinel is the exact marker the strategist returns from the
// evaluation phase when the mission objective has been met. Anything
// else is treated as a repair plan.
const SuccessSentinel = "MISSION-COMPLETE"

const planFormat = `Respond with ONLY a JSON array of tasks, no prose. Each task:
{"id": <positive integer, unique>, "agent": "<agent name>", "task": "<instruction>", "grimoires": ["<bundle name>", ...], "dependencies": [<ids of tasks that must finish first>]}`

// planningPrompt asks the strategist to decompose the objective across
// the persona roster.
func (c *Coordinator) planningPrompt(objective string) string {
	var sb strings.Builder

	strategist := c.agents.Profile(c.strategistName)
	if strategist.Persona != "" {
		sb.WriteString(strategist.Persona)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Available agents:\n")
	names := make([]string, 0, len(c.agents.Agents))
	for name := range c.agents.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == c.strategistName {
			continue
		}
		p := c.agents.Agents[name]
		fmt.Fprintf(&sb, "- %s: %s\n", name, p.Persona)
	}

	if memCtx := c.memoryContext(c.strategistName, objective); memCtx != "" {
		sb.WriteString("\n")
		sb.WriteString(memCtx)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nObjective: %s\n\n%s\n", objective, planFormat)
	return sb.String()
}

// taskPrompt assembles the worker prompt for one task: persona, grimoire
// texts, token-budgeted memory context, recorded dependency outcomes,
// and the instruction itself. Failed dependencies are included exactly
// like successful ones, with their status visible.
func (c *Coordinator) taskPrompt(task models.Task, profile models.AgentProfile) string {
	var sb strings.Builder

	if profile.Persona != "" {
		sb.WriteString(profile.Persona)
		sb.WriteString("\n\n")
	}

	grimoires := append([]string{}, profile.Grimoires...)
	grimoires = append(grimoires, task.Grimoires...)
	if len(grimoires) > 0 {
		sb.WriteString("Grimoires:\n")
		seen := make(map[string]bool)
		for _, name := range grimoires {
			if seen[name] {
				continue
			}
			seen[name] = true
			fmt.Fprintf(&sb, "## %s\n%s\n", name, c.agents.GrimoireText(name))
		}
		sb.WriteString("\n")
	}

	if memCtx := c.memoryContext(task.Agent, task.Instruction); memCtx != "" {
		sb.WriteString(memCtx)
		sb.WriteString("\n\n")
	}

	if deps := c.dependencyContext(task); deps != "" {
		sb.WriteString(deps)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Your task: %s\n", task.Instruction)
	return sb.String()
}

// dependencyContext renders the recorded results of this task's
// dependencies.
func (c *Coordinator) dependencyContext(task models.Task) string {
	if len(task.DependsOn) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Results from prerequisite tasks:\n")
	for _, dep := range task.DependsOn {
		res, ok := c.resultFor(dep)
		if !ok {
			continue
		}
		text := res.Output
		if text == "" {
			text = res.Message
		}
		fmt.Fprintf(&sb, "- task %d (%s, %s): %s\n", res.TaskID, res.Agent, res.Status, truncate(text, c.cfg.Mission.SynthTruncate))
	}
	return sb.String()
}

// evaluationPrompt asks the strategist for a verdict: the success
// sentinel, or a repair plan.
func (c *Coordinator) evaluationPrompt(state *models.MissionState) string {
	return fmt.Sprintf(`%s

Objective: %s

Results so far:
%s
If the objective is fully met, respond with exactly:
%s

Otherwise respond with ONLY a JSON array of repair tasks in the same format as the original plan, fixing what failed.`,
		c.agents.Profile(c.strategistName).Persona,
		state.Objective,
		summarizeResults(state.Results, c.cfg.Mission.EvalTruncate),
		SuccessSentinel)
}

// synthesisPrompt asks the strategist for the final human-readable report.
func (c *Coordinator) synthesisPrompt(state *models.MissionState) string {
	return fmt.Sprintf(`%s

Objective: %s

All recorded results:
%s
Write a clear, human-readable report of what was accomplished, what failed, and anything the reader should follow up on. Plain prose, no JSON.`,
		c.agents.Profile(c.strategistName).Persona,
		state.Objective,
		summarizeResults(state.Results, c.cfg.Mission.SynthTruncate))
}
