package config_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/furoxr/discord-ai-bot/internal/config"
)

func validConfig() *config.Config {
	cfg := &config.Config{LogLevel: "info"}
	cfg.Discord.Token = "abc"
	cfg.OpenAI.APIKey = "sk-test"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := config.Validate(validConfig()); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "missing token",
			mutate: func(c *config.Config) { c.Discord.Token = "" },
			want:   "discord.token",
		},
		{
			name:   "missing api key",
			mutate: func(c *config.Config) { c.OpenAI.APIKey = "" },
			want:   "openai.api_key",
		},
		{
			name:   "negative max users",
			mutate: func(c *config.Config) { c.Cache.MaxUsers = -1 },
			want:   "cache.max_users",
		},
		{
			name:   "negative max history",
			mutate: func(c *config.Config) { c.Cache.MaxHistory = -1 },
			want:   "cache.max_history",
		},
		{
			name:   "negative token budget",
			mutate: func(c *config.Config) { c.OpenAI.TokenBudget = -1 },
			want:   "openai.token_budget",
		},
		{
			name:   "bad log level",
			mutate: func(c *config.Config) { c.LogLevel = "verbose" },
			want:   "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := config.ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := config.ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) = nil, want error")
	}
}
