// Package pugmetrics records pug service metrics.
package pugmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PugMetrics is the instrument set used by the pug service.
type PugMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordCommandRejected(ctx context.Context, command, reason string)
	RecordQueueSize(ctx context.Context, size int)
	RecordPhaseTransition(ctx context.Context, from, to string)
	RecordMatchCompleted(ctx context.Context, duration time.Duration)
}

type prometheusMetrics struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	rejections  *prometheus.CounterVec
	queueSize   prometheus.Gauge
	transitions *prometheus.CounterVec
	matches     prometheus.Counter
	matchLength prometheus.Histogram
}

// NewPrometheus registers the pug instruments on reg.
func NewPrometheus(reg prometheus.Registerer) PugMetrics {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pug", Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pug", Name: "operation_success_total",
			Help: "Service operations finished without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pug", Name: "operation_failures_total",
			Help: "Service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pug", Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pug", Name: "command_rejections_total",
			Help: "Player commands rejected by the game rules.",
		}, []string{"command", "reason"}),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pug", Name: "queue_size",
			Help: "Players currently in the queue.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pug", Name: "phase_transitions_total",
			Help: "Game phase changes.",
		}, []string{"from", "to"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pug", Name: "matches_completed_total",
			Help: "Drafts that ran to completion.",
		}),
		matchLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pug", Name: "match_setup_seconds",
			Help:    "Time from the first join to the last pick.",
			Buckets: prometheus.ExponentialBuckets(30, 2, 8),
		}),
	}
	reg.MustRegister(
		m.attempts, m.successes, m.failures, m.durations,
		m.rejections, m.queueSize, m.transitions, m.matches, m.matchLength,
	)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordCommandRejected(_ context.Context, command, reason string) {
	m.rejections.WithLabelValues(command, reason).Inc()
}

func (m *prometheusMetrics) RecordQueueSize(_ context.Context, size int) {
	m.queueSize.Set(float64(size))
}

func (m *prometheusMetrics) RecordPhaseTransition(_ context.Context, from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *prometheusMetrics) RecordMatchCompleted(_ context.Context, duration time.Duration) {
	m.matches.Inc()
	m.matchLength.Observe(duration.Seconds())
}

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() PugMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordCommandRejected(context.Context, string, string)                  {}
func (noop) RecordQueueSize(context.Context, int)                                   {}
func (noop) RecordPhaseTransition(context.Context, string, string)                  {}
func (noop) RecordMatchCompleted(context.Context, time.Duration)                    {}
