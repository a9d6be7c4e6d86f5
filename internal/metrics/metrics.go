// Package metrics exposes Prometheus metrics for matching runs.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for matching runs.
type Metrics struct {
	registry *prometheus.Registry

	// Stage durations by pipeline stage
	StageLatency *prometheus.HistogramVec

	// Raw compatibility scores of every ordered pair
	Scores prometheus.Histogram

	// Filter activity by filter name
	FilterDropped *prometheus.CounterVec

	Proposals     prometheus.Counter
	Rejections    prometheus.Counter
	Displacements prometheus.Counter

	// Participants left without a partner, by side
	Unmatched *prometheus.GaugeVec

	Pairs          prometheus.Gauge
	BlockingPairs  prometheus.Gauge
	LastRunSuccess prometheus.Gauge
}

// New creates a Metrics instance registered in its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchmaker_stage_duration_seconds",
			Help:    "Duration of matching pipeline stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}), // stage: "validate", "score", "filter", "preferences", "match", "verify"

		Scores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchmaker_compatibility_score",
			Help:    "Distribution of raw compatibility scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		FilterDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaker_filter_dropped_total",
			Help: "Matrix entries zeroed by each filter",
		}, []string{"filter"}),

		Proposals: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchmaker_proposals_total",
			Help: "Proposals issued by deferred acceptance",
		}),
		Rejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchmaker_rejections_total",
			Help: "Proposals rejected by receivers",
		}),
		Displacements: factory.NewCounter(prometheus.CounterOpts{
			Name: "matchmaker_displacements_total",
			Help: "Tentative partners displaced by a preferred proposer",
		}),

		Unmatched: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchmaker_unmatched_participants",
			Help: "Participants without a partner after the last run",
		}, []string{"side"}),

		Pairs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "matchmaker_pairs",
			Help: "Pairs formed by the last run",
		}),
		BlockingPairs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "matchmaker_blocking_pairs",
			Help: "Blocking pairs found by the stability check of the last run",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "matchmaker_last_run_success",
			Help: "1 when the last run completed, 0 when it failed",
		}),
	}
}

// Registry returns the registry holding every matchmaker metric.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveScore records a raw compatibility score.
func (m *Metrics) ObserveScore(score float64) {
	if m != nil {
		m.Scores.Observe(score)
	}
}

// AddFilterDropped records entries zeroed by a filter.
func (m *Metrics) AddFilterDropped(filter string, dropped int) {
	if m != nil && dropped > 0 {
		m.FilterDropped.WithLabelValues(filter).Add(float64(dropped))
	}
}

// RecordMatching records the counters of one deferred acceptance run.
func (m *Metrics) RecordMatching(proposals, rejections, displacements, pairs, unmatchedProposers, unmatchedReceivers int) {
	if m == nil {
		return
	}
	m.Proposals.Add(float64(proposals))
	m.Rejections.Add(float64(rejections))
	m.Displacements.Add(float64(displacements))
	m.Pairs.Set(float64(pairs))
	m.Unmatched.WithLabelValues("proposer").Set(float64(unmatchedProposers))
	m.Unmatched.WithLabelValues("receiver").Set(float64(unmatchedReceivers))
}

// RecordVerdict records the number of blocking pairs found.
func (m *Metrics) RecordVerdict(blocking int) {
	if m != nil {
		m.BlockingPairs.Set(float64(blocking))
	}
}

// RecordRunResult marks the last run as succeeded or failed.
func (m *Metrics) RecordRunResult(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.LastRunSuccess.Set(1)
		return
	}
	m.LastRunSuccess.Set(0)
}

// WriteTextfile writes every metric to path in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("metrics file path is required")
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
