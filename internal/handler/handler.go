// Package handler runs the respond pipeline: short-term memory in, token
// budget enforced, completion out, reply remembered.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/furoxr/discord-ai-bot/internal/conversation"
	"github.com/furoxr/discord-ai-bot/internal/knowledge"
	"github.com/furoxr/discord-ai-bot/internal/metrics"
	"github.com/furoxr/discord-ai-bot/internal/tokens"
)

// Completer sends a conversation to the chat completion API.
type Completer interface {
	Complete(ctx context.Context, cc *conversation.Context) (string, error)
}

// Searcher looks up the knowledge-base fact closest to a question.
// A nil hit means nothing relevant was found.
type Searcher interface {
	Lookup(ctx context.Context, question string) (*knowledge.Hit, error)
}

// Config holds the pipeline settings.
type Config struct {
	// SystemPrompt is the steering message placed at index 0 of every
	// request context. Never removed by shrinking.
	SystemPrompt string

	// TokenBudget is the completion model's context-window ceiling.
	TokenBudget int
}

// Defaults fills zero-valued fields.
func (c *Config) Defaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = "You are a helpful assistant."
	}
	if c.TokenBudget <= 0 {
		c.TokenBudget = 4096
	}
}

// Handler wires the conversation cache, token counter, knowledge lookup,
// and completion client into the per-message pipeline.
type Handler struct {
	config    Config
	cache     *conversation.Cache
	counter   *tokens.Counter
	completer Completer
	searcher  Searcher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// New creates a Handler. searcher may be nil to disable knowledge lookup;
// m may be nil to disable metrics.
func New(cfg Config, cache *conversation.Cache, counter *tokens.Counter, completer Completer, searcher Searcher, logger *slog.Logger, m *metrics.Metrics) *Handler {
	cfg.Defaults()
	return &Handler{
		config:    cfg,
		cache:     cache,
		counter:   counter,
		completer: completer,
		searcher:  searcher,
		logger:    logger.With("component", "handler"),
		metrics:   m,
		tracer:    otel.Tracer("github.com/furoxr/discord-ai-bot/internal/handler"),
	}
}

// Respond answers one user question. It snapshots the user's history,
// builds the request context, fits it under the token budget, calls the
// completion API, and appends both turns back into the cache. No network
// call happens while the cache lock is held.
func (h *Handler) Respond(ctx context.Context, userID, question string) (string, error) {
	ctx, span := h.tracer.Start(ctx, "handler.respond",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	reply, err := h.respond(ctx, userID, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return reply, nil
}

func (h *Handler) respond(ctx context.Context, userID, question string) (string, error) {
	history, err := h.cache.Messages(userID)
	if err != nil {
		return "", err
	}

	cc := conversation.NewContext().
		AddSystem(h.config.SystemPrompt, "").
		Extend(history).
		AddUser(h.userContent(ctx, question), "")

	if err := h.fitBudget(cc); err != nil {
		return "", err
	}

	reply, err := h.completer.Complete(ctx, cc)
	if err != nil {
		h.count(func(m *metrics.Metrics) { m.CompletionErrors.Inc() })
		return "", fmt.Errorf("handler: completion failed: %w", err)
	}
	h.count(func(m *metrics.Metrics) { m.Completions.Inc() })

	// Remember the raw question, not the knowledge-augmented form.
	if err := h.cache.AddMessage(userID, conversation.RoleUser, question, ""); err != nil {
		return "", err
	}
	if err := h.cache.AddMessage(userID, conversation.RoleAssistant, reply, ""); err != nil {
		return "", err
	}
	return reply, nil
}

// userContent returns the user message content: the plain question, or the
// knowledge-augmented form when a relevant fact exists. Lookup failures
// degrade to the plain question; the knowledge base is optional context,
// not a dependency.
func (h *Handler) userContent(ctx context.Context, question string) string {
	if h.searcher == nil {
		return question
	}
	hit, err := h.searcher.Lookup(ctx, question)
	if err != nil {
		h.logger.Warn("knowledge lookup failed", "error", err)
		return question
	}
	if hit == nil {
		return question
	}
	h.logger.Debug("knowledge hit", "title", hit.Title, "score", hit.Score)
	return fmt.Sprintf("Question: %s\nKnowledge: %s", question, hit.Content)
}

// fitBudget counts the context and shrinks it when over the budget.
func (h *Handler) fitBudget(cc *conversation.Context) error {
	cost := h.counter.ContextTokens(cc)
	h.count(func(m *metrics.Metrics) { m.PromptTokens.Add(float64(cost)) })

	if cost <= h.config.TokenBudget {
		h.count(func(m *metrics.Metrics) { m.Shrinks.WithLabelValues(metrics.ShrinkNoop).Inc() })
		return nil
	}

	err := h.counter.Shrink(cc, h.config.TokenBudget)
	switch {
	case errors.Is(err, tokens.ErrTooShortToShrink):
		h.count(func(m *metrics.Metrics) { m.Shrinks.WithLabelValues(metrics.ShrinkTooShort).Inc() })
		return err
	case errors.Is(err, tokens.ErrCannotShrink):
		h.count(func(m *metrics.Metrics) { m.Shrinks.WithLabelValues(metrics.ShrinkFailed).Inc() })
		return err
	case err != nil:
		return err
	}

	h.count(func(m *metrics.Metrics) { m.Shrinks.WithLabelValues(metrics.ShrinkTrimmed).Inc() })
	h.logger.Debug("conversation shrunk",
		"cost", cost,
		"budget", h.config.TokenBudget,
		"messages", cc.Len(),
	)
	return nil
}

func (h *Handler) count(fn func(*metrics.Metrics)) {
	if h.metrics != nil {
		fn(h.metrics)
	}
}

// FallbackText maps recoverable pipeline errors to a user-facing reply.
// Returns "" for errors that should not produce a reply at all.
func FallbackText(err error) string {
	if errors.Is(err, tokens.ErrCannotShrink) || errors.Is(err, tokens.ErrTooShortToShrink) {
		return "That message is too long for me to handle. Could you ask a shorter question?"
	}
	return ""
}
