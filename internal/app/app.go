// Package app wires the bot together and runs it until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/furoxr/discord-ai-bot/internal/config"
	"github.com/furoxr/discord-ai-bot/internal/conversation"
	"github.com/furoxr/discord-ai-bot/internal/discord"
	"github.com/furoxr/discord-ai-bot/internal/gateway"
	"github.com/furoxr/discord-ai-bot/internal/handler"
	"github.com/furoxr/discord-ai-bot/internal/knowledge"
	"github.com/furoxr/discord-ai-bot/internal/metrics"
	"github.com/furoxr/discord-ai-bot/internal/openai"
	"github.com/furoxr/discord-ai-bot/internal/telemetry"
	"github.com/furoxr/discord-ai-bot/internal/tokens"
)

const shutdownTimeout = 30 * time.Second

var (
	_ handler.Completer  = (*openai.Client)(nil)
	_ handler.Searcher   = (*knowledge.Client)(nil)
	_ knowledge.Embedder = (*openai.Client)(nil)
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is the path to the YAML configuration file.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string
}

// Run loads configuration, starts the bot, and blocks until a shutdown
// signal arrives.
func Run(params RunParams) error {
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry, params.Version)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	// The tokenizer vocabulary is load-bearing for every request cost
	// bound: refuse to start without it.
	counter, err := tokens.NewCounter()
	if err != nil {
		return err
	}

	cache, err := conversation.NewCache(cfg.Cache.MaxUsers, cfg.Cache.MaxHistory)
	if err != nil {
		return err
	}

	m := metrics.New()
	cache.OnEvict(func(userID string) {
		m.CacheEvictions.Inc()
		logger.Debug("conversation evicted", "user_id", userID)
	})

	oai := openai.NewClient(cfg.OpenAI)

	kb, err := knowledge.NewClient(cfg.Qdrant, oai)
	if err != nil {
		return err
	}
	defer func() { _ = kb.Close() }()

	h := handler.New(handler.Config{
		SystemPrompt: cfg.SystemPrompt,
		TokenBudget:  oai.TokenBudget(),
	}, cache, counter, oai, kb, logger, m)

	respond := func(ctx context.Context, userID, question string) (string, error) {
		m.InboundMessages.Inc()
		return h.Respond(ctx, userID, question)
	}

	channel := discord.NewChannel(cfg.Discord, logger, respond, handler.FallbackText)
	gw := gateway.New(cfg.Gateway, logger, cache, m, oai.Model())

	if err := gw.Start(); err != nil {
		return fmt.Errorf("starting admin gateway: %w", err)
	}
	if err := channel.Start(); err != nil {
		return fmt.Errorf("starting discord channel: %w", err)
	}
	logger.Info("bot started", "model", oai.Model(), "version", params.Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := channel.Stop(ctx); err != nil {
		logger.Error("discord channel stop error", "error", err)
	}
	if err := gw.Stop(ctx); err != nil {
		logger.Error("admin gateway stop error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}
