// Package metrics exposes Prometheus collectors for the project API and autosave.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "easel",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "easel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	saves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easel",
			Subsystem: "autosave",
			Name:      "saves_total",
			Help:      "Total number of project save calls by outcome.",
		},
		[]string{"outcome"},
	)

	saveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "easel",
			Subsystem: "autosave",
			Name:      "save_duration_seconds",
			Help:      "Duration of project save calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	snapshotBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "easel",
			Subsystem: "store",
			Name:      "snapshot_bytes",
			Help:      "Size of stored project snapshots.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		saves,
		saveDuration,
		snapshotBytes,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Paths are labelled by their chi route pattern when one matched.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordSave records the outcome of one save call.
func RecordSave(success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	saves.WithLabelValues(outcome).Inc()
	saveDuration.Observe(duration.Seconds())
}

// RecordSnapshotSize records the size of a stored snapshot.
func RecordSnapshotSize(n int) {
	snapshotBytes.Observe(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
