// Package metrics provides Prometheus instrumentation for pose analysis.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage names used for the stage latency histogram.
const (
	StageBackgroundRemoval = "background_removal"
	StageFlatten           = "flatten"
	StageLighting          = "lighting"
	StageDetection         = "detection"
	StageAnnotation        = "annotation"
	StageAnatomy           = "anatomy"
	StageDeconstruction    = "deconstruction"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeNoPose  = "no_pose"
	OutcomeError   = "error"
)

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Manager owns the analysis metrics. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	stageLatency     *prometheus.HistogramVec
	analyses         *prometheus.CounterVec
	noPose           prometheus.Counter
	degenerateRatios prometheus.Counter
	removalFailures  prometheus.Counter
	batchFiles       *prometheus.CounterVec
}

// NewManager creates a metrics manager on its own registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "poseperfect",
		histogramBuckets: defaultBuckets,
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

	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "stage_duration_seconds",
		Help:      "Latency of each preprocessing and analysis stage",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.analyses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "analyses_total",
		Help:      "Analyses run, by mode and outcome",
	}, []string{"mode", "outcome"})

	m.noPose = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "no_pose_total",
		Help:      "Images in which no pose was detected",
	})

	m.degenerateRatios = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "degenerate_ratio_total",
		Help:      "Shoulder-to-waist ratios that could not be computed",
	})

	m.removalFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "background_removal_failures_total",
		Help:      "Background removal collaborator failures",
	})

	m.batchFiles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "batch_files_total",
		Help:      "Files handled by the batch tool, by outcome",
	}, []string{"outcome"})
}

// ObserveStage records how long one stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordAnalysis counts a finished analysis.
func (m *Manager) RecordAnalysis(mode, outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(mode, outcome).Inc()
}

// RecordNoPose counts an image without a detected pose.
func (m *Manager) RecordNoPose() {
	if m == nil {
		return
	}
	m.noPose.Inc()
}

// RecordDegenerateRatio counts a ratio that fell back to the zero sentinel.
func (m *Manager) RecordDegenerateRatio() {
	if m == nil {
		return
	}
	m.degenerateRatios.Inc()
}

// RecordRemovalFailure counts a background removal failure.
func (m *Manager) RecordRemovalFailure() {
	if m == nil {
		return
	}
	m.removalFailures.Inc()
}

// RecordBatchFile counts one batch file by outcome.
func (m *Manager) RecordBatchFile(outcome string) {
	if m == nil {
		return
	}
	m.batchFiles.WithLabelValues(outcome).Inc()
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
