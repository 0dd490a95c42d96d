// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mediarr"

// Metrics holds every collector. Components take a *Metrics; a nil value is
// replaced with an unregistered set so callers never need nil checks.
type Metrics struct {
	SyncRuns      *prometheus.CounterVec
	Demotions     *prometheus.CounterVec
	SyncDuration  prometheus.Histogram
	Submissions   *prometheus.CounterVec
	ScannerItems  *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SyncRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "sync_runs_total",
			Help:      "Availability sync passes by result (ok, aborted, error, skipped).",
		}, []string{"result"}),
		Demotions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "demotions_total",
			Help:      "Status demotions by kind (media, tier, season) and tier.",
		}, []string{"kind", "tier"}),
		SyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "sync_duration_seconds",
			Help:      "Duration of availability sync passes.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "submissions_total",
			Help:      "Download manager submissions by service and result.",
		}, []string{"service", "result"}),
		ScannerItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "items_total",
			Help:      "Library items processed by the scanner by result.",
		}, []string{"result"}),
		EventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because a subscriber channel was full.",
		}, []string{"event_type"}),
		gatherer: reg,
	}
}

// Nop returns collectors bound to a private registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

// OrNop returns m, or a private set when m is nil.
func OrNop(m *Metrics) *Metrics {
	if m == nil {
		return Nop()
	}
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// TierLabel renders an is4k flag as a label value.
func TierLabel(is4k bool) string {
	if is4k {
		return "4k"
	}
	return "standard"
}
