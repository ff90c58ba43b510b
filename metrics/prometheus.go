// Package metrics provides Prometheus metrics for the matcher.
package metrics

import (
	"fmt"
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ranking directions.
const (
	DirectionOffers  = "offers"
	DirectionSeekers = "seekers"
)

// Manager owns the matcher's Prometheus metrics. A nil Manager, or one
// created with WithMetricsEnabled(false), records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Ranking
	rankings         *prometheus.CounterVec
	rankingDuration  *prometheus.HistogramVec
	rankedCandidates *prometheus.HistogramVec

	// Assignment
	assignmentRuns     prometheus.Counter
	assignmentSeekers  *prometheus.CounterVec
	assignmentDuration prometheus.Histogram

	// Indexing
	embeddings       *prometheus.CounterVec
	lexicalDocuments *prometheus.GaugeVec

	errors *prometheus.CounterVec
}

// NewManager creates a metrics manager. Metrics are registered on a fresh
// registry unless WithPrometheusRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ternswipe",
		subsystem:        "matcher",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rankings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rankings_total",
		Help:      "Ranking requests by direction and outcome",
	}, []string{"direction", "outcome"})

	m.rankingDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_duration_seconds",
		Help:      "Time to retrieve and score one ranking",
		Buckets:   m.histogramBuckets,
	}, []string{"direction"})

	m.rankedCandidates = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranked_candidates",
		Help:      "Candidates returned per ranking",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
	}, []string{"direction"})

	m.assignmentRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assignment_runs_total",
		Help:      "Completed assignment runs",
	})

	m.assignmentSeekers = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assignment_seekers_total",
		Help:      "Seekers processed by assignment runs, by result",
	}, []string{"result"})

	m.assignmentDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assignment_duration_seconds",
		Help:      "Duration of assignment runs",
		Buckets:   m.histogramBuckets,
	})

	m.embeddings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embeddings_total",
		Help:      "Embeddings processed by the indexer, by kind and result",
	}, []string{"kind", "result"})

	m.lexicalDocuments = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lexical_index_documents",
		Help:      "Documents in the current lexical index",
	}, []string{"kind"})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Unexpected errors by component",
	}, []string{"component"})
}

func (m *Manager) active() bool {
	return m != nil && m.enabled
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the current metrics in text exposition format.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// RecordRanking records one ranking request.
func (m *Manager) RecordRanking(direction string, outcome core.Outcome, candidates int, elapsed time.Duration) {
	if !m.active() {
		return
	}
	m.rankings.WithLabelValues(direction, outcome.String()).Inc()
	m.rankingDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
	if outcome == core.OutcomeOK {
		m.rankedCandidates.WithLabelValues(direction).Observe(float64(candidates))
	}
}

// RecordAssignment records one assignment run.
func (m *Manager) RecordAssignment(assigned, unassigned, failed int, elapsed time.Duration) {
	if !m.active() {
		return
	}
	m.assignmentRuns.Inc()
	m.assignmentSeekers.WithLabelValues("assigned").Add(float64(assigned))
	m.assignmentSeekers.WithLabelValues("unassigned").Add(float64(unassigned))
	m.assignmentSeekers.WithLabelValues("failed").Add(float64(failed))
	m.assignmentDuration.Observe(elapsed.Seconds())
}

// RecordIndexing records the outcome of an indexing pass.
func (m *Manager) RecordIndexing(kind core.EntityKind, embedded, skipped, failed int) {
	if !m.active() {
		return
	}
	m.embeddings.WithLabelValues(kind.String(), "embedded").Add(float64(embedded))
	m.embeddings.WithLabelValues(kind.String(), "skipped").Add(float64(skipped))
	m.embeddings.WithLabelValues(kind.String(), "failed").Add(float64(failed))
}

// SetLexicalDocuments records the size of a freshly built lexical index.
func (m *Manager) SetLexicalDocuments(kind core.EntityKind, n int) {
	if !m.active() {
		return
	}
	m.lexicalDocuments.WithLabelValues(kind.String()).Set(float64(n))
}

// RecordError counts an unexpected error in component.
func (m *Manager) RecordError(component string) {
	if !m.active() {
		return
	}
	m.errors.WithLabelValues(component).Inc()
}
