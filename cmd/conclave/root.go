package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "conclave",
	Short: "Multi-agent mission orchestrator",
	Long: `Conclave runs a mission through a council of model-backed agents.

A strategist decomposes your objective into a task plan, a bounded worker
pool executes it in dependency order, the strategist evaluates the outcome
and proposes repairs, and the run ends with a synthesized report.

Each agent carries its own persona, grimoires (knowledge bundles), and an
append-only memory that feeds context into later missions. Model calls go
through per-agent fallback chains: a local model first where one is bound,
then the configured remote models in order.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
