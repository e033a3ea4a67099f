package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsWithoutConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Pool.Capacity != 3 || cfg.Pool.BoostedCapacity != 6 {
		t.Errorf("unexpected pool defaults: %+v", cfg.Pool)
	}
	if cfg.Mission.MaxRetries != 2 {
		t.Errorf("expected max_retries default 2, got %d", cfg.Mission.MaxRetries)
	}
	if cfg.Mission.TaskTimeout != 5*time.Minute {
		t.Errorf("expected task_timeout default 5m, got %s", cfg.Mission.TaskTimeout)
	}
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("unexpected ollama host default %q", cfg.Ollama.Host)
	}
	if len(cfg.GenericChain()) == 0 {
		t.Error("expected a default generic chain")
	}
	if len(cfg.StrategistChain()) <= len(cfg.GenericChain()) {
		t.Error("expected the strategist chain to be longer than the generic chain")
	}
}

func TestLoadFromPathOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
pool:
  capacity: 8
mission:
  max_retries: 4
  task_timeout: 30s
chains:
  strategist:
    - id: model-x
      role: primary
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Pool.Capacity != 8 {
		t.Errorf("expected capacity override 8, got %d", cfg.Pool.Capacity)
	}
	if cfg.Mission.MaxRetries != 4 {
		t.Errorf("expected max_retries override 4, got %d", cfg.Mission.MaxRetries)
	}
	if cfg.Mission.TaskTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Mission.TaskTimeout)
	}

	chain := cfg.StrategistChain()
	if len(chain) != 1 || chain[0].ID != "model-x" {
		t.Errorf("expected strategist chain override, got %v", chain)
	}
	// Generic chain keeps its default.
	if len(cfg.GenericChain()) == 0 {
		t.Error("expected generic chain default preserved")
	}
}

func TestMaskAPIKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"", "(not set)"},
		{"sk-ant-short", "***"},
		{"sk-ant-REDACTED", "sk-ant-...wxyz"},
	}
	for _, c := range cases {
		if got := MaskAPIKey(c.key); got != c.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}
