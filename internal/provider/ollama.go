package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaHost is used when no host is configured.
const DefaultOllamaHost = "http://localhost:11434"

// Ollama invokes a local Ollama inference endpoint.
type Ollama struct {
	client *api.Client
}

// NewOllama creates a client for the given base URL. An empty host
// falls back to the local default.
func NewOllama(host string) (*Ollama, error) {
	if host == "" {
		host = DefaultOllamaHost
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: api.NewClient(parsed, hc)}, nil
}

// Name identifies the backend in logs.
func (o *Ollama) Name() string { return "ollama" }

// Invoke runs a non-streaming generate call and returns the full response.
func (o *Ollama) Invoke(ctx context.Context, model, prompt string) (string, error) {
	var sb strings.Builder
	stream := false

	err := o.client.Generate(ctx, &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return sb.String(), nil
}
