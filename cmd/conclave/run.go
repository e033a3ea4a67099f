package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/silverglade/conclave/internal/config"
	"github.com/silverglade/conclave/internal/memory"
	"github.com/silverglade/conclave/internal/mission"
	"github.com/silverglade/conclave/internal/provider"
	"github.com/silverglade/conclave/internal/tui"
)

var (
	runBoost    bool
	runHeadless bool
	runAgents   string
	runTimeout  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <objective>",
	Short: "Run a mission against an objective",
	Long: `Run a full mission: the strategist plans, the agent pool executes,
the strategist evaluates and repairs, and you get a final report.

Boosted mode (--boost) widens the worker pool for objectives that fan
out into many independent tasks. Use --headless to stream plain output
instead of the live status view.

A running mission can be aborted from another terminal by creating an
"abort" file in the signals directory under the conclave data dir, or
with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMission,
}

func init() {
	runCmd.Flags().BoolVar(&runBoost, "boost", false, "Widen the worker pool for highly parallel objectives")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Stream plain output instead of the live view")
	runCmd.Flags().StringVar(&runAgents, "agents", "", "Path to an agents.yaml overriding the built-in roster")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-task timeout override (e.g. 90s, 10m)")
}

func runMission(cmd *cobra.Command, args []string) error {
	objective := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runTimeout > 0 {
		cfg.Mission.TaskTimeout = runTimeout
	}

	agents, err := loadAgents()
	if err != nil {
		return err
	}

	remote, err := buildRemote(cfg)
	if err != nil {
		return err
	}

	dataDir := config.UserDataDir()
	logger := mission.NewLoggerForData(dataDir)
	defer logger.Close()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if aw, err := mission.WatchAbort(dataDir, cancel, logger); err == nil {
		defer aw.Close()
	} else {
		color.Yellow("warning: abort watcher unavailable: %v", err)
	}

	events := make(chan mission.Event, 256)
	opts := []mission.Option{
		mission.WithEvents(events),
		mission.WithLogger(logger),
	}
	if local, err := provider.NewOllama(cfg.Ollama.Host); err == nil {
		opts = append(opts, mission.WithLocal(local))
	} else {
		color.Yellow("warning: local inference unavailable: %v", err)
	}

	coord := mission.New(cfg, agents, store, remote, opts...)

	type outcome struct {
		report string
		err    error
	}
	resCh := make(chan outcome, 1)
	go func() {
		report, err := coord.Run(ctx, objective, runBoost)
		resCh <- outcome{report, err}
		close(events)
	}()

	if runHeadless {
		renderHeadless(events)
	} else if err := tui.Run(events, cancel); err != nil {
		color.Yellow("warning: live view failed (%v), continuing headless", err)
		renderHeadless(events)
	}

	out := <-resCh
	if out.err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, out.report)
		return out.err
	}

	fmt.Println()
	color.New(color.FgGreen, color.Bold).Println("Mission report")
	fmt.Println(out.report)
	return nil
}

func loadAgents() (*config.AgentBundle, error) {
	if runAgents != "" {
		agents, err := config.LoadAgentsFromPath(runAgents)
		if err != nil {
			return nil, fmt.Errorf("load agents from %s: %w", runAgents, err)
		}
		return agents, nil
	}
	agents, err := config.LoadAgents()
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	return agents, nil
}

// buildRemote constructs the remote backend shared by every fallback
// chain entry.
func buildRemote(cfg *config.Config) (provider.Client, error) {
	switch cfg.Mission.RemoteBackend {
	case "api":
		key, _ := config.GetAPIKey(cfg)
		remote, err := provider.NewAPI(provider.APIConfig{
			APIKey:     key,
			UseBedrock: cfg.Anthropic.UseBedrock,
			AWSRegion:  cfg.Anthropic.AWSRegion,
			AWSProfile: cfg.Anthropic.AWSProfile,
		})
		if err != nil {
			return nil, fmt.Errorf("api backend: %w", err)
		}
		return remote, nil
	case "cli", "":
		cli := provider.NewCLI("")
		if err := cli.Check(); err != nil {
			return nil, fmt.Errorf("claude CLI not found in PATH\n\n"+
				"Conclave uses the Claude Code CLI as its default remote backend.\n"+
				"Install it with:\n"+
				"  npm install -g @anthropic-ai/claude-code\n\n"+
				"or switch to the direct API with:\n"+
				"  mission.remote_backend: api\n"+
				"in your config (%w)", err)
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q (want \"cli\" or \"api\")", cfg.Mission.RemoteBackend)
	}
}

// openStore opens the memory database, degrading to a memoryless
// mission with a warning when it cannot be opened.
func openStore(cfg *config.Config) *memory.Store {
	dbPath := cfg.Memory.DBPath
	if dbPath == "" {
		dbPath = memory.DefaultDBPath()
	}
	store, err := memory.Open(dbPath)
	if err != nil {
		color.Yellow("warning: agent memory unavailable: %v", err)
		return nil
	}
	return store
}

func renderHeadless(events <-chan mission.Event) {
	phase := color.New(color.FgCyan, color.Bold)
	for ev := range events {
		switch ev.Kind {
		case mission.EventPhase:
			phase.Printf("== %s\n", ev.Phase)
		case mission.EventTask:
			if ev.Result == nil {
				continue
			}
			if ev.Result.Succeeded() {
				color.Green("  ✓ task %d (%s)", ev.Result.TaskID, ev.Result.Agent)
			} else {
				color.Red("  ✗ task %d (%s): %s", ev.Result.TaskID, ev.Result.Agent, ev.Result.Message)
			}
		case mission.EventText:
			fmt.Println("  " + ev.Text)
		}
	}
}
