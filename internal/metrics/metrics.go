// Package metrics exposes Prometheus collectors for the aggregation pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourceFetchesTotal   *prometheus.CounterVec
	sourcesSkippedTotal  prometheus.Counter
	fetchDurationSeconds *prometheus.HistogramVec
	uniqueEntries        prometheus.Gauge
	runsTotal            *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostmerge_source_fetches_total",
				Help: "Total number of source fetches, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		sourcesSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "hostmerge_sources_skipped_total",
				Help: "Total number of sources skipped during their cooldown.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostmerge_fetch_duration_seconds",
				Help:    "Histogram of source download latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"site"},
		)

		uniqueEntries = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hostmerge_unique_entries",
				Help: "Number of unique entries produced by the last aggregation run.",
			},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostmerge_runs_total",
				Help: "Total number of aggregation runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from a URL for use as a label.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records the outcome and latency of one source download.
func ObserveFetch(site, status string, dur time.Duration) {
	if sourceFetchesTotal == nil {
		return
	}
	sanitized := SanitizeSite(site)
	sourceFetchesTotal.WithLabelValues(sanitized, status).Inc()
	fetchDurationSeconds.WithLabelValues(sanitized).Observe(dur.Seconds())
}

// ObserveRun records the unique entry total and skip count of a run.
func ObserveRun(outcome string, unique, skipped int) {
	if runsTotal == nil {
		return
	}
	runsTotal.WithLabelValues(outcome).Inc()
	uniqueEntries.Set(float64(unique))
	sourcesSkippedTotal.Add(float64(skipped))
}
