// Package metrics defines the bot's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Shrink outcome label values.
const (
	ShrinkNoop     = "noop"
	ShrinkTrimmed  = "trimmed"
	ShrinkTooShort = "too_short"
	ShrinkFailed   = "cannot_shrink"
)

// Metrics holds all collectors, registered on a private registry so the
// admin gateway can expose exactly this set.
type Metrics struct {
	registry *prometheus.Registry

	InboundMessages  prometheus.Counter
	Completions      prometheus.Counter
	CompletionErrors prometheus.Counter
	CacheEvictions   prometheus.Counter
	PromptTokens     prometheus.Counter
	Shrinks          *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		InboundMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discordai_inbound_messages_total",
			Help: "Inbound Discord messages addressed to the bot.",
		}),
		Completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discordai_completions_total",
			Help: "Successful chat completions.",
		}),
		CompletionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discordai_completion_errors_total",
			Help: "Failed chat completions.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discordai_cache_evictions_total",
			Help: "Conversation cache entries evicted under LRU pressure.",
		}),
		PromptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discordai_prompt_tokens_total",
			Help: "Counted prompt tokens sent to the completion API.",
		}),
		Shrinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordai_shrinks_total",
			Help: "Conversation shrink attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		m.InboundMessages,
		m.Completions,
		m.CompletionErrors,
		m.CacheEvictions,
		m.PromptTokens,
		m.Shrinks,
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
