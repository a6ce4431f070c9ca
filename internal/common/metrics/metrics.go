// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_chat_requests_total",
			Help: "Total number of chat turns that reached the state machine",
		},
	)

	ChatRequestsSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_chat_requests_succeeded_total",
			Help: "Total number of chat turns that produced a finalized order",
		},
	)

	ChatRequestsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_chat_requests_failed_total",
			Help: "Total number of chat turns dropped by a pipeline failure",
		},
	)

	ChatRequestsIgnored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_chat_requests_ignored_total",
			Help: "Total number of chat turns classified as out of scope",
		},
	)

	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_provider_attempts_total",
			Help: "Model attempts by outcome (success, rate_limited, error)",
		},
		[]string{"model", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_provider_duration_seconds",
			Help: "Duration of individual model calls in seconds",
		},
		[]string{"model"},
	)

	GateSlotsAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_gate_slots_available",
			Help: "Free AI request slots in the admission gate",
		},
	)

	GateWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_gate_waiting",
			Help: "Callers currently queued for an AI request slot",
		},
	)
)
