// Package config handles configuration loading for conclave.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/silverglade/conclave/pkg/models"
)

// Config holds all configuration for conclave.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Pool      PoolConfig      `mapstructure:"pool"`
	Mission   MissionConfig   `mapstructure:"mission"`
	Chains    ChainsConfig    `mapstructure:"chains"`
	Memory    MemoryConfig    `mapstructure:"memory"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// OllamaConfig holds local inference settings.
type OllamaConfig struct {
	Host string `mapstructure:"host"`
}

// PoolConfig holds worker pool capacities. Boosted is selected by the
// mission's boosted ("yolo") run configuration.
type PoolConfig struct {
	Capacity        int `mapstructure:"capacity"`
	BoostedCapacity int `mapstructure:"boosted_capacity"`
}

// MissionConfig holds the mission protocol settings.
type MissionConfig struct {
	// MaxRetries bounds the evaluate/repair loop.
	MaxRetries int `mapstructure:"max_retries"`
	// TaskTimeout is the per-task wall-clock limit.
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	// RemoteBackend selects the remote provider: "cli" or "api".
	RemoteBackend string `mapstructure:"remote_backend"`
	// EvalTruncate caps per-result characters in evaluation summaries.
	EvalTruncate int `mapstructure:"eval_truncate"`
	// SynthTruncate caps per-result characters in the synthesis summary.
	SynthTruncate int `mapstructure:"synth_truncate"`
}

// ChainEntry is one model in a configured fallback chain.
type ChainEntry struct {
	ID   string `mapstructure:"id"`
	Role string `mapstructure:"role"`
}

// ChainsConfig holds the two fallback chains: the generic chain shared
// by most agents and the dedicated strategist chain.
type ChainsConfig struct {
	Generic    []ChainEntry `mapstructure:"generic"`
	Strategist []ChainEntry `mapstructure:"strategist"`
}

// MemoryConfig holds memory store settings.
type MemoryConfig struct {
	DBPath      string `mapstructure:"db_path"`
	TokenBudget int    `mapstructure:"token_budget"`
	TopK        int    `mapstructure:"top_k"`
}

// GenericChain converts the configured generic chain to the model form.
func (c *Config) GenericChain() models.Chain {
	return toChain(c.Chains.Generic)
}

// StrategistChain converts the configured strategist chain to the model form.
func (c *Config) StrategistChain() models.Chain {
	return toChain(c.Chains.Strategist)
}

func toChain(entries []ChainEntry) models.Chain {
	chain := make(models.Chain, len(entries))
	for i, e := range entries {
		chain[i] = models.ModelRef{ID: e.ID, Role: e.Role}
	}
	return chain
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
//  1. Environment variables (CONCLAVE_*, ANTHROPIC_API_KEY)
//  2. Project config (.conclave.yaml in the working directory or a parent)
//  3. User config (~/.config/conclave/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("CONCLAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("ollama.host", "OLLAMA_HOST")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// setDefaults applies built-in defaults so a bare install runs without
// any config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("pool.capacity", 3)
	v.SetDefault("pool.boosted_capacity", 6)
	v.SetDefault("mission.max_retries", 2)
	v.SetDefault("mission.task_timeout", 5*time.Minute)
	v.SetDefault("mission.remote_backend", "cli")
	v.SetDefault("mission.eval_truncate", 300)
	v.SetDefault("mission.synth_truncate", 1200)
	v.SetDefault("memory.token_budget", 1500)
	v.SetDefault("memory.top_k", 10)
	v.SetDefault("chains.generic", []map[string]any{
		{"id": "claude-sonnet-4-20250514", "role": "primary"},
		{"id": "claude-3-5-haiku-20241022", "role": "fallback"},
	})
	v.SetDefault("chains.strategist", []map[string]any{
		{"id": "claude-opus-4-5-20251101", "role": "primary"},
		{"id": "claude-sonnet-4-20250514", "role": "fallback"},
		{"id": "claude-3-5-haiku-20241022", "role": "last-resort"},
	})
}

// UserConfigDir returns the XDG config directory for conclave.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "conclave")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "conclave")
}

// UserDataDir returns the XDG data directory for conclave. Mission
// logs, the memory database, and signal files live under it.
func UserDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "conclave")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "conclave")
}

// findProjectConfig walks up from the working directory looking for a
// .conclave.yaml override.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".conclave.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnv expands ${VAR} references, returning empty for unresolved
// references so a missing key reads as unset.
func expandEnv(s string) string {
	expanded := os.ExpandEnv(s)
	if strings.HasPrefix(expanded, "${") {
		return ""
	}
	return expanded
}
