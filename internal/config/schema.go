// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for the bot.
package config

import (
	"github.com/furoxr/discord-ai-bot/internal/discord"
	"github.com/furoxr/discord-ai-bot/internal/gateway"
	"github.com/furoxr/discord-ai-bot/internal/knowledge"
	"github.com/furoxr/discord-ai-bot/internal/openai"
	"github.com/furoxr/discord-ai-bot/internal/telemetry"
)

// Config is the top-level configuration structure.
type Config struct {
	// SystemPrompt steers the assistant; it becomes the protected first
	// message of every completion request.
	SystemPrompt string `yaml:"system_prompt"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Cache     CacheConfig      `yaml:"cache"`
	Discord   discord.Config   `yaml:"discord"`
	OpenAI    openai.Config    `yaml:"openai"`
	Qdrant    knowledge.Config `yaml:"qdrant"`
	Gateway   gateway.Config   `yaml:"gateway"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// CacheConfig bounds the conversation cache. Capacities are fixed at
// construction; there is no mid-process reconfiguration.
type CacheConfig struct {
	// MaxUsers is the number of tracked users before LRU eviction.
	MaxUsers int `yaml:"max_users"`

	// MaxHistory is the number of messages kept per user.
	MaxHistory int `yaml:"max_history"`
}

// defaults fills zero-valued fields across all sections.
func (c *Config) defaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = "You are a helpful assistant."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Discord.Defaults()
	c.OpenAI.Defaults()
	c.Qdrant.Defaults()
	c.Gateway.Defaults()
}
