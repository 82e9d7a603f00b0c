// Package observability exposes the engine's lifecycle as Prometheus
// metrics. Wire Hooks() into the engine and serve the registry from the
// host's /metrics endpoint.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evanfield/guidepost/pkg/domain"
)

// Metrics holds the engine-level Prometheus collectors.
type Metrics struct {
	NodeVisits      *prometheus.CounterVec
	BranchOverrides *prometheus.CounterVec
	SessionsEnded   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidepost_node_visits_total",
				Help: "Dialogue nodes pushed to transcripts.",
			},
			[]string{"language", "kind"},
		),
		BranchOverrides: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidepost_branch_overrides_total",
				Help: "Declared choice targets overridden by a branch rule.",
			},
			[]string{"language", "rule"},
		),
		SessionsEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidepost_sessions_ended_total",
				Help: "Sessions that reached the terminal sentinel.",
			},
			[]string{"language"},
		),
	}
	reg.MustRegister(m.NodeVisits, m.BranchOverrides, m.SessionsEnded)
	return m
}

// Hooks adapts the collectors to the engine's lifecycle callbacks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(ev.Language), nodeKind(ev)).Inc()
		},
		OnBranch: func(_ context.Context, ev *domain.BranchEvent) {
			m.BranchOverrides.WithLabelValues(string(ev.Language), ev.RuleKind).Inc()
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			m.SessionsEnded.WithLabelValues(string(ev.Language)).Inc()
		},
	}
}

func nodeKind(ev *domain.NodeEvent) string {
	switch {
	case ev.FreeText:
		return "free_text"
	case ev.Terminal:
		return "terminal"
	default:
		return "choice"
	}
}
