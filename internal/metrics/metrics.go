// Package metrics tracks per-run scraper metrics on a dedicated Prometheus registry.
//
// A run is a single short-lived process, so nothing is served over HTTP; the
// registry can instead be written once to a node_exporter textfile-collector file.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record stages counted by Records
const (
	StageListed        = "listed"
	StageExtracted     = "extracted"
	StageNoCoordinates = "dropped_no_coordinates"
	StageOutOfRadius   = "dropped_out_of_radius"
	StageExtractErrors = "extract_errors"
	StageEmitted       = "emitted"
)

// Outcome labels for Runs and LaunchAttempts
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

const namespace = "nearby_events"

// Metrics bundles Prometheus collectors for one run.
type Metrics struct {
	Registry       *prometheus.Registry
	LaunchAttempts *prometheus.CounterVec
	Runs           *prometheus.CounterVec
	Records        *prometheus.CounterVec
	StepDuration   *prometheus.HistogramVec
	PageBytes      prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	launchAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launch_attempts_total",
			Help:      "Browser launch attempts by configuration and outcome.",
		},
		[]string{"config", "outcome"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Scrape runs by outcome.",
		},
		[]string{"outcome"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Listing records seen at each pipeline stage.",
		},
		[]string{"stage"},
	)
	stepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of each scrape step.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"step"},
	)
	pageBytes := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "page_bytes",
			Help:      "Size of the last fetched page markup.",
		},
	)

	registry.MustRegister(launchAttempts, runs, records, stepDuration, pageBytes)

	return &Metrics{
		Registry:       registry,
		LaunchAttempts: launchAttempts,
		Runs:           runs,
		Records:        records,
		StepDuration:   stepDuration,
		PageBytes:      pageBytes,
	}
}

// IncLaunch records a launch attempt for a configuration.
func (m *Metrics) IncLaunch(config, outcome string) {
	if m == nil {
		return
	}
	m.LaunchAttempts.WithLabelValues(config, outcome).Inc()
}

// IncRun records the outcome of a run.
func (m *Metrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

// AddRecords adds n records to a stage counter.
func (m *Metrics) AddRecords(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Records.WithLabelValues(stage).Add(float64(n))
}

// ObserveStep records the duration of a step.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// SetPageBytes records the size of the fetched markup.
func (m *Metrics) SetPageBytes(n int) {
	if m == nil {
		return
	}
	m.PageBytes.Set(float64(n))
}

// WriteTextfile writes the registry in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
