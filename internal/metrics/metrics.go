// Package metrics holds the Prometheus collectors of the sync pipeline.
//
// All recording methods are safe on a nil *Metrics, so components can be
// built without instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "syncdraft"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	EditsScheduled prometheus.Counter
	EditsCoalesced prometheus.Counter
	Persists       *prometheus.CounterVec
	SaveDuration   prometheus.Histogram
	StaleResponses *prometheus.CounterVec
	AIRequests     *prometheus.CounterVec
	CacheWrites    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when reg is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EditsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "edits_scheduled_total",
			Help:      "Edits handed to the autosave scheduler.",
		}),
		EditsCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "edits_coalesced_total",
			Help:      "Pending edits superseded by a newer edit before being persisted.",
		}),
		Persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "persists_total",
			Help:      "Persistence calls issued by the autosave scheduler.",
		}, []string{"outcome"}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "save_duration_seconds",
			Help:      "Latency of remote post updates.",
			Buckets:   prometheus.DefBuckets,
		}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "stale_responses_total",
			Help:      "Remote responses dropped because newer local state exists.",
		}, []string{"operation"}),
		AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "AI generate requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Local cache mirror writes by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.EditsScheduled, m.EditsCoalesced, m.Persists, m.SaveDuration,
			m.StaleResponses, m.AIRequests, m.CacheWrites)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

func (m *Metrics) EditScheduled(coalesced bool) {
	if m == nil {
		return
	}
	m.EditsScheduled.Inc()
	if coalesced {
		m.EditsCoalesced.Inc()
	}
}

func (m *Metrics) Persisted(err error) {
	if m == nil {
		return
	}
	m.Persists.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveSave(d time.Duration) {
	if m == nil {
		return
	}
	m.SaveDuration.Observe(d.Seconds())
}

func (m *Metrics) StaleResponse(operation string) {
	if m == nil {
		return
	}
	m.StaleResponses.WithLabelValues(operation).Inc()
}

func (m *Metrics) AIRequest(mode string, err error) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(mode, outcome(err)).Inc()
}

func (m *Metrics) CacheWrite(err error) {
	if m == nil {
		return
	}
	m.CacheWrites.WithLabelValues(outcome(err)).Inc()
}
