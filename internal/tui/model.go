// Package tui renders a live mission status view. It consumes the
// mission event stream and owns no orchestration logic.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/silverglade/conclave/internal/mission"
	"github.com/silverglade/conclave/pkg/models"
)

const tailLines = 8

// eventMsg wraps one mission event for the update loop.
type eventMsg mission.Event

// closedMsg signals that the event stream ended.
type closedMsg struct{}

// Model is the bubbletea model for the mission view.
type Model struct {
	spin   spinner.Model
	events <-chan mission.Event
	cancel context.CancelFunc

	mission string
	phase   string
	order   []int
	tasks   map[int]models.ExecutionResult
	tail    []string
	done    bool
	width   int

	titleStyle   lipgloss.Style
	phaseStyle   lipgloss.Style
	successStyle lipgloss.Style
	failedStyle  lipgloss.Style
	tailStyle    lipgloss.Style
}

// New creates a mission view reading from events. cancel is invoked
// when the user quits so the mission stops with the display.
func New(events <-chan mission.Event, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		spin:   sp,
		events: events,
		cancel: cancel,
		tasks:  make(map[int]models.ExecutionResult),
		width:  80,

		titleStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		phaseStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		failedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		tailStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Init starts the spinner and the event reader.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles key input, spinner ticks, and mission events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(mission.Event(msg))
		if m.done {
			return m, tea.Quit
		}
		return m, m.waitForEvent()

	case closedMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) apply(ev mission.Event) {
	if ev.Mission != "" {
		m.mission = ev.Mission
	}
	switch ev.Kind {
	case mission.EventPhase:
		m.phase = ev.Phase
		if ev.Phase == mission.PhaseDone {
			m.done = true
		}
	case mission.EventTask:
		if ev.Result == nil {
			return
		}
		if _, seen := m.tasks[ev.Result.TaskID]; !seen {
			m.order = append(m.order, ev.Result.TaskID)
			sort.Ints(m.order)
		}
		m.tasks[ev.Result.TaskID] = *ev.Result
	case mission.EventText:
		m.tail = append(m.tail, ev.Text)
		if len(m.tail) > tailLines {
			m.tail = m.tail[len(m.tail)-tailLines:]
		}
	}
}

// View renders the mission header, task rows, and the text tail.
func (m Model) View() string {
	var sb strings.Builder

	title := "conclave"
	if m.mission != "" {
		title = fmt.Sprintf("conclave · mission %s", m.mission)
	}
	sb.WriteString(m.titleStyle.Render(title))
	sb.WriteString("\n")

	if m.phase != "" {
		line := m.phaseStyle.Render(m.phase)
		if !m.done {
			line = m.spin.View() + " " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(m.order) > 0 {
		sb.WriteString("\n")
		for _, id := range m.order {
			res := m.tasks[id]
			mark := m.successStyle.Render("✓")
			text := res.Output
			if !res.Succeeded() {
				mark = m.failedStyle.Render("✗")
				text = res.Message
			}
			fmt.Fprintf(&sb, "  %s task %d (%s) %s\n", mark, res.TaskID, res.Agent, clip(text, m.width-20))
		}
	}

	if len(m.tail) > 0 {
		sb.WriteString("\n")
		for _, line := range m.tail {
			sb.WriteString(m.tailStyle.Render("  " + clip(line, m.width-4)))
			sb.WriteString("\n")
		}
	}

	if !m.done {
		sb.WriteString("\n")
		sb.WriteString(m.tailStyle.Render("  q to abort"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func clip(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// Run drives the mission view until the event stream ends or the user
// quits.
func Run(events <-chan mission.Event, cancel context.CancelFunc) error {
	p := tea.NewProgram(New(events, cancel))
	_, err := p.Run()
	return err
}
