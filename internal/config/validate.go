package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Validate checks the structural validity of a Config.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Discord.Token == "" {
		errs = append(errs, errors.New("config: discord.token is required"))
	}
	if cfg.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("config: openai.api_key is required"))
	}
	if cfg.Cache.MaxUsers < 0 {
		errs = append(errs, fmt.Errorf("config: cache.max_users must not be negative, got %d", cfg.Cache.MaxUsers))
	}
	if cfg.Cache.MaxHistory < 0 {
		errs = append(errs, fmt.Errorf("config: cache.max_history must not be negative, got %d", cfg.Cache.MaxHistory))
	}
	if cfg.OpenAI.TokenBudget < 0 {
		errs = append(errs, fmt.Errorf("config: openai.token_budget must not be negative, got %d", cfg.OpenAI.TokenBudget))
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel converts a config log level string to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log_level %q (debug, info, warn, error)", level)
	}
}
