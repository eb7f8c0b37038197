// Package metrics provides Prometheus metrics for the attendance core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts attendance commands by kind and outcome
	// (ok, rejected, network, busy).
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtab_agent_commands_total",
		Help: "Total number of attendance commands, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// RollbacksTotal counts optimistic updates that were rolled back.
	RollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vtab_agent_rollbacks_total",
		Help: "Total number of optimistic snapshots rolled back after a failed check-in.",
	})

	// RefreshesTotal counts authoritative status refreshes by outcome.
	RefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtab_agent_refreshes_total",
		Help: "Total number of authoritative status refreshes, by outcome.",
	}, []string{"outcome"})

	// RepaintsTotal counts display repaints.
	RepaintsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vtab_agent_repaints_total",
		Help: "Total number of timer display repaints.",
	})

	// ActiveSession reports whether the last snapshot carries an open session.
	ActiveSession = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vtab_agent_active_session",
		Help: "1 when the current snapshot has an active session, else 0.",
	})

	// CommandDuration observes command round-trip time by kind.
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vtab_agent_command_duration_seconds",
		Help:    "Round-trip duration of attendance commands, by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)
