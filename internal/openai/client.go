// Package openai is a minimal client for the OpenAI chat completion and
// embedding endpoints, covering exactly what the bot needs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseSize bounds response body reads (10 MB). Protects against
// OOM from malformed or huge responses.
const maxResponseSize = 10 * 1024 * 1024

// Config holds the client configuration.
type Config struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	Timeout        string `yaml:"timeout"`

	// TokenBudget is the request cost ceiling the bot guarantees before
	// sending, enforced by shrinking the conversation.
	TokenBudget int `yaml:"token_budget"`
}

// Defaults fills zero-valued fields.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-3.5-turbo"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.TokenBudget <= 0 {
		c.TokenBudget = 4096
	}
}

func (c *Config) parsedTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Client talks to an OpenAI-compatible API over plain HTTP.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a Client from config. Defaults are applied.
func NewClient(cfg Config) *Client {
	cfg.Defaults()
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.parsedTimeout()},
	}
}

// Model returns the configured completion model identifier.
func (c *Client) Model() string {
	return c.config.Model
}

// TokenBudget returns the configured request cost ceiling.
func (c *Client) TokenBudget() int {
	return c.config.TokenBudget
}

// doPost sends an authenticated JSON POST and returns the body and status.
func (c *Client) doPost(ctx context.Context, path string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, mapConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("openai: read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}
