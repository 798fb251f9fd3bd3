// Package observability holds the Prometheus metrics for the appeal service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taxappeal"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// appeal workflow.
type Metrics struct {
	// Record card extraction.
	Extractions        *prometheus.CounterVec // labels: outcome={success,unreadable,recognition_failed,unknown_area}
	ExtractionDuration prometheus.Histogram

	// Evidence and valuation.
	EvidenceDuration prometheus.Histogram
	Verdicts         *prometheus.CounterVec // labels: verdict={appeal,no_appeal}

	// Petitions rendered, by form.
	Petitions *prometheus.CounterVec // labels: form={petition,analysis}

	// Loaded dataset.
	StudyYears prometheus.Gauge
	Areas      prometheus.Gauge

	// HTTP API.
	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: method, route
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      help("Record card extractions by outcome."),
		}, []string{"outcome"}),
		ExtractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      help("Duration of rasterizing and recognizing one record card."),
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40},
		}),
		EvidenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evidence_duration_seconds",
			Help:      help("Duration of aggregating the evidence for one area."),
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      help("Valuations by verdict."),
		}, []string{"verdict"}),
		Petitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "petitions_total",
			Help:      help("Petition texts rendered by form."),
		}, []string{"form"}),
		StudyYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "study_years",
			Help:      help("Number of assessment years in the loaded dataset."),
		}),
		Areas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "areas",
			Help:      help("Number of areas in the loaded dataset catalogue."),
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      help("HTTP requests by method, route and status."),
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      help("HTTP request latency by method and route."),
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.Extractions,
		m.ExtractionDuration,
		m.EvidenceDuration,
		m.Verdicts,
		m.Petitions,
		m.StudyYears,
		m.Areas,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics without registering them. One-shot
// command runs use these since nothing scrapes them.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics(false)
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they need.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

// Verdict label values.
const (
	VerdictAppeal   = "appeal"
	VerdictNoAppeal = "no_appeal"
)

// Petition form label values.
const (
	FormPetition = "petition"
	FormAnalysis = "analysis"
)

// Extraction outcome label values.
const (
	OutcomeSuccess           = "success"
	OutcomeUnreadable        = "unreadable"
	OutcomeRecognitionFailed = "recognition_failed"
	OutcomeUnknownArea       = "unknown_area"
	OutcomeCanceled          = "canceled"
)
