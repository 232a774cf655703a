package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"capsulex-blink/capsuleprogram"
)

const namespace = "capsulex_blink"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight   prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	actions        *prometheus.CounterVec
	rateLimited    prometheus.Counter
	blockhashFetch *prometheus.HistogramVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),

		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "actions",
				Name:      "total",
				Help:      "Action POSTs by action kind and outcome (ok or error classification).",
			},
			[]string{"action", "outcome"},
		),

		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter.",
			},
		),

		blockhashFetch: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "solana",
				Name:      "blockhash_fetch_seconds",
				Help:      "Latency of getLatestBlockhash calls.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"success"},
		),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.actions,
		m.rateLimited,
		m.blockhashFetch,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP metrics collection.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordAction counts one action POST. outcome is "ok" or the error kind.
func (m *Metrics) RecordAction(action, outcome string) {
	if action == "" {
		action = "unknown"
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

// RecordRateLimited counts one rejected request.
func (m *Metrics) RecordRateLimited() {
	m.rateLimited.Inc()
}

// InstrumentBlockhashSource times every blockhash fetch made through src.
func (m *Metrics) InstrumentBlockhashSource(src capsuleprogram.BlockhashSource) capsuleprogram.BlockhashSource {
	return &timedBlockhashSource{next: src, hist: m.blockhashFetch}
}

type timedBlockhashSource struct {
	next capsuleprogram.BlockhashSource
	hist *prometheus.HistogramVec
}

func (t *timedBlockhashSource) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	h, err := t.next.LatestBlockhash(ctx)
	t.hist.WithLabelValues(strconv.FormatBool(err == nil)).Observe(time.Since(start).Seconds())
	return h, err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath folds capsule ids out of the path label.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" || len(parts) < 2 {
		return "/" + parts[0]
	}

	switch parts[1] {
	case "guess", "game-details", "game-leaderboard":
		if len(parts) >= 3 {
			return "/api/" + parts[1] + "/:capsule_id"
		}
	case "leaderboard":
		if len(parts) >= 4 && parts[2] == "game" {
			return "/api/leaderboard/game/:capsule_id"
		}
		if len(parts) == 3 {
			return "/api/leaderboard/" + parts[2]
		}
	}
	return "/api/" + parts[1]
}
