// Package gateway serves the bot's admin HTTP surface: liveness, status,
// and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/furoxr/discord-ai-bot/internal/conversation"
	"github.com/furoxr/discord-ai-bot/internal/metrics"
)

// Config holds the admin server settings.
type Config struct {
	// Enabled turns the admin server on. Off by default.
	Enabled bool `yaml:"enabled"`

	// Listen is the bind address, e.g. "127.0.0.1:8085".
	Listen string `yaml:"listen"`
}

// Defaults fills zero-valued fields.
func (c *Config) Defaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8085"
	}
}

// Gateway is the admin HTTP server.
type Gateway struct {
	config  Config
	logger  *slog.Logger
	cache   *conversation.Cache
	metrics *metrics.Metrics
	model   string
	started time.Time

	server *http.Server
}

// New creates a Gateway.
func New(cfg Config, logger *slog.Logger, cache *conversation.Cache, m *metrics.Metrics, model string) *Gateway {
	cfg.Defaults()
	return &Gateway{
		config:  cfg,
		logger:  logger.With("component", "gateway"),
		cache:   cache,
		metrics: m,
		model:   model,
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", g.handleHealth())
	r.Get("/status", g.handleStatus())
	r.Handle("/metrics", promhttp.HandlerFor(g.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

// Start binds the listener and serves in the background. A disabled
// gateway starts as a no-op.
func (g *Gateway) Start() error {
	if !g.config.Enabled {
		return nil
	}

	g.started = time.Now()
	g.server = &http.Server{
		Addr:              g.config.Listen,
		Handler:           g.buildRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		g.logger.Info("admin gateway listening", "addr", g.config.Listen)
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("admin gateway failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	if err := g.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway: shutdown: %w", err)
	}
	return nil
}
