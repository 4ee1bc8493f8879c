// Package metrics exports cache events as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-tiered-cache/cache"
)

var _ cache.Metrics = (*Prometheus)(nil)

// Prometheus implements cache.Metrics with counters and a gauge.
type Prometheus struct {
	lookups       *prometheus.CounterVec
	computeErrors *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	evicted       *prometheus.CounterVec
	merged        *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	openSessions  prometheus.Gauge
}

// NewPrometheus creates the collectors under namespace and registers them
// with reg. A nil reg leaves them unregistered.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by collection and the tier that answered.",
		}, []string{"collection", "result"}),
		computeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "compute_errors_total",
			Help:      "Failed computations by collection.",
		}, []string{"collection"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Collection invalidations.",
		}, []string{"collection"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidated_entries_total",
			Help:      "Shared entries removed by invalidation.",
		}, []string{"collection"}),
		merged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "merged_entries_total",
			Help:      "Session entries offered to the shared tier, by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "sessions_ended_total",
			Help:      "Ended sessions by whether they persisted.",
		}, []string{"persisted"}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "open_sessions",
			Help:      "Sessions currently open.",
		}),
	}

	if reg == nil {
		return p, nil
	}
	for _, c := range p.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.lookups,
		p.computeErrors,
		p.invalidations,
		p.evicted,
		p.merged,
		p.sessions,
		p.openSessions,
	}
}

func (p *Prometheus) LocalHit(collection string) {
	p.lookups.WithLabelValues(collection, "local").Inc()
}

func (p *Prometheus) SharedHit(collection string) {
	p.lookups.WithLabelValues(collection, "shared").Inc()
}

func (p *Prometheus) Miss(collection string) {
	p.lookups.WithLabelValues(collection, "miss").Inc()
}

func (p *Prometheus) ComputeError(collection string) {
	p.computeErrors.WithLabelValues(collection).Inc()
}

func (p *Prometheus) Invalidated(collection string, removed int) {
	p.invalidations.WithLabelValues(collection).Inc()
	p.evicted.WithLabelValues(collection).Add(float64(removed))
}

func (p *Prometheus) Merged(stored, skipped int) {
	p.merged.WithLabelValues("stored").Add(float64(stored))
	p.merged.WithLabelValues("skipped").Add(float64(skipped))
}

func (p *Prometheus) SessionOpened() {
	p.openSessions.Inc()
}

func (p *Prometheus) SessionEnded(persisted bool) {
	p.openSessions.Dec()
	p.sessions.WithLabelValues(strconv.FormatBool(persisted)).Inc()
}
