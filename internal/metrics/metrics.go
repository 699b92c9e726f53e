// Package metrics exposes Prometheus collectors for the style guide service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsTotal                  *prometheus.CounterVec
	stageDurationSeconds       *prometheus.HistogramVec
	activeWorkers              prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	probeRetriesTotal          prometheus.Counter
	interstitialClicksTotal    prometheus.Counter
	skippedStylesheetsTotal    prometheus.Counter
	harvestedColorsTotal       *prometheus.CounterVec
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	storeFallbacksTotal        *prometheus.CounterVec
	documentsTotal             *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styleguide_jobs_total",
				Help: "Total number of analysis jobs finished, labeled by terminal status.",
			},
			[]string{"status"},
		)

		stageDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "styleguide_stage_duration_seconds",
				Help:    "Histogram of pipeline stage durations, labeled by stage.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "styleguide_active_workers",
				Help: "Number of workers currently processing a job.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		probeRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "styleguide_probe_retries_total",
				Help: "Total transient TLS or timeout retries during reachability probes.",
			},
		)

		interstitialClicksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "styleguide_interstitial_clicks_total",
				Help: "Total cookie banners, modals and gates dismissed.",
			},
		)

		skippedStylesheetsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "styleguide_skipped_stylesheets_total",
				Help: "Total stylesheets whose rules could not be read.",
			},
		)

		harvestedColorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styleguide_harvested_colors_total",
				Help: "Total raw color values harvested, labeled by site.",
			},
			[]string{"site"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "styleguide_rate_limit_delays_seconds",
				Help:    "Histogram of per-domain navigation rate limit waits.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		storeFallbacksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styleguide_store_fallbacks_total",
				Help: "Total job store operations served by the local fallback, labeled by operation.",
			},
			[]string{"op"},
		)

		documentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "styleguide_documents_total",
				Help: "Total rendered documents, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
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

// ObserveJob increments the job counter for the given terminal status.
func ObserveJob(status string) {
	Init()
	jobsTotal.WithLabelValues(status).Inc()
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, duration time.Duration) {
	Init()
	stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	activeWorkers.Dec()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveProbeRetry counts a retried probe round trip.
func ObserveProbeRetry() {
	Init()
	probeRetriesTotal.Inc()
}

// ObserveHarvest records harvest volume for a site.
func ObserveHarvest(site string, colors, skippedSheets, clicks int) {
	Init()
	if colors > 0 {
		harvestedColorsTotal.WithLabelValues(SanitizeSite(site)).Add(float64(colors))
	}
	if skippedSheets > 0 {
		skippedStylesheetsTotal.Add(float64(skippedSheets))
	}
	if clicks > 0 {
		interstitialClicksTotal.Add(float64(clicks))
	}
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveStoreFallback counts an operation served by the fallback store.
func ObserveStoreFallback(op string) {
	Init()
	storeFallbacksTotal.WithLabelValues(op).Inc()
}

// ObserveDocument counts a document render outcome.
func ObserveDocument(outcome string) {
	Init()
	documentsTotal.WithLabelValues(outcome).Inc()
}
