package provider

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLI invokes the claude CLI as a one-shot subprocess in print mode.
// The prompt goes over stdin and the response comes back on stdout;
// cancellation of the context kills the process.
type CLI struct {
	binary string
}

// NewCLI creates a CLI provider. An empty binary defaults to "claude"
// resolved from PATH.
func NewCLI(binary string) *CLI {
	if binary == "" {
		binary = "claude"
	}
	return &CLI{binary: binary}
}

// Name identifies the backend in logs.
func (c *CLI) Name() string { return "claude-cli" }

// Check verifies the CLI binary is available in PATH.
func (c *CLI) Check() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%s CLI not found in PATH: %w", c.binary, err)
	}
	return nil
}

// Invoke runs one print-mode call and returns stdout. Stderr is folded
// into the error on failure.
func (c *CLI) Invoke(ctx context.Context, model, prompt string) (string, error) {
	args := []string{"--print"}
	if model != "" {
		args = append(args, "--model", model)
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("claude CLI (%s): %s", model, msg)
	}

	return stdout.String(), nil
}
