// Package metrics defines the Prometheus metric collectors used across the
// cleaning platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	PagesProcessedTotal  *prometheus.CounterVec
	PageCleanDuration    prometheus.Histogram
	LinesDroppedTotal    *prometheus.CounterVec
	WordsCorrectedTotal  prometheus.Counter
	WordsUncorrectable   prometheus.Counter
	CorrectionDuration   prometheus.Histogram
	CorrectionCacheHits  prometheus.Counter
	CorrectionCacheMiss  prometheus.Counter
	PageCacheHits        prometheus.Counter
	PageCacheMisses      prometheus.Counter
	EntitiesFoundTotal   prometheus.Counter
	DocumentsTotal       prometheus.Counter
	VocabularyTerms      prometheus.Gauge
	VocabularyTrigrams   prometheus.Gauge
	CircuitBreakerState  *prometheus.GaugeVec
	ConsumerErrorsTotal  prometheus.Counter
	PagesPublishedTotal  prometheus.Counter
	SnapshotSavedTotal   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		PagesProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_processed_total",
				Help: "Pages run through the cleaning pipeline by outcome (cleaned, skipped, filtered).",
			},
			[]string{"outcome"},
		),
		PageCleanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "page_clean_duration_seconds",
				Help:    "Wall time to clean a single page.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		LinesDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lines_dropped_total",
				Help: "Lines removed by the noise filter, by stage (header_footer, script, gibberish, short_token).",
			},
			[]string{"stage"},
		),
		WordsCorrectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "words_corrected_total",
				Help: "Words replaced by the fuzzy spell corrector.",
			},
		),
		WordsUncorrectable: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "words_uncorrectable_total",
				Help: "Word-like tokens with no candidate clearing the threshold, passed through unchanged.",
			},
		),
		CorrectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "correction_duration_seconds",
				Help:    "Latency of spell-correcting one page's text.",
				Buckets: []float64{1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
			},
		),
		CorrectionCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "correction_cache_hits_total",
				Help: "Correction cache hits.",
			},
		),
		CorrectionCacheMiss: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "correction_cache_misses_total",
				Help: "Correction cache misses.",
			},
		),
		PageCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "page_cache_hits_total",
				Help: "Shared page cache hits.",
			},
		),
		PageCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "page_cache_misses_total",
				Help: "Shared page cache misses.",
			},
		),
		EntitiesFoundTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "entities_found_total",
				Help: "Canonical entities extracted from cleaned pages.",
			},
		),
		DocumentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_processed_total",
				Help: "Documents fully processed.",
			},
		),
		VocabularyTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocabulary_terms",
				Help: "Terms currently loaded in the vocabulary store.",
			},
		),
		VocabularyTrigrams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocabulary_trigrams",
				Help: "Distinct trigrams in the vocabulary index.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
		ConsumerErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "consumer_errors_total",
				Help: "Raw-page events that failed to decode or process.",
			},
		),
		PagesPublishedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pages_published_total",
				Help: "Cleaned-page events published to Kafka.",
			},
		),
		SnapshotSavedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stats_snapshots_total",
				Help: "Corpus stats snapshot writes by status.",
			},
			[]string{"status"},
		),
	}

	prometheus.MustRegister(
		m.PagesProcessedTotal,
		m.PageCleanDuration,
		m.LinesDroppedTotal,
		m.WordsCorrectedTotal,
		m.WordsUncorrectable,
		m.CorrectionDuration,
		m.CorrectionCacheHits,
		m.CorrectionCacheMiss,
		m.PageCacheHits,
		m.PageCacheMisses,
		m.EntitiesFoundTotal,
		m.DocumentsTotal,
		m.VocabularyTerms,
		m.VocabularyTrigrams,
		m.CircuitBreakerState,
		m.ConsumerErrorsTotal,
		m.PagesPublishedTotal,
		m.SnapshotSavedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
