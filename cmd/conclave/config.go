package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/silverglade/conclave/internal/config"
	"github.com/silverglade/conclave/internal/memory"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after merging defaults, the user
config, any project .conclave.yaml, and environment variables.

Configuration is stored at ~/.config/conclave/config.yaml.
Project-specific overrides can be placed in .conclave.yaml.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
		fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
		fmt.Printf("ollama.host: %s\n", cfg.Ollama.Host)
		fmt.Printf("pool.capacity: %d\n", cfg.Pool.Capacity)
		fmt.Printf("pool.boosted_capacity: %d\n", cfg.Pool.BoostedCapacity)
		fmt.Printf("mission.max_retries: %d\n", cfg.Mission.MaxRetries)
		fmt.Printf("mission.task_timeout: %s\n", cfg.Mission.TaskTimeout)
		fmt.Printf("mission.remote_backend: %s\n", cfg.Mission.RemoteBackend)
		fmt.Printf("memory.db_path: %s\n", dbPathDisplay(cfg))
		fmt.Printf("memory.token_budget: %d\n", cfg.Memory.TokenBudget)
		fmt.Printf("memory.top_k: %d\n", cfg.Memory.TopK)

		fmt.Println("chains.generic:")
		for _, ref := range cfg.GenericChain() {
			fmt.Printf("  - %s (%s)\n", ref.ID, ref.Role)
		}
		fmt.Println("chains.strategist:")
		for _, ref := range cfg.StrategistChain() {
			fmt.Printf("  - %s (%s)\n", ref.ID, ref.Role)
		}
	},
}

func dbPathDisplay(cfg *config.Config) string {
	if cfg.Memory.DBPath != "" {
		return cfg.Memory.DBPath
	}
	return memory.DefaultDBPath()
}
