// Package metrics provides Prometheus instrumentation for the ClientPulse service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientpulse",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clientpulse",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RecomputationsTotal counts simulation recomputations by trigger.
	RecomputationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientpulse",
			Name:      "recomputations_total",
			Help:      "Total simulation recomputations by trigger (create, update, reset).",
		},
		[]string{"trigger"},
	)

	// RecomputationDuration observes the full recompute pipeline latency,
	// including observer fan-out.
	RecomputationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clientpulse",
			Name:      "recomputation_duration_seconds",
			Help:      "Simulation recomputation duration in seconds.",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		},
	)

	// ObserverFailuresTotal counts observer callbacks that panicked or errored.
	ObserverFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clientpulse",
			Name:      "observer_failures_total",
			Help:      "Total simulation observer callbacks that failed.",
		},
	)

	// ActiveSessions tracks current live simulation sessions.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clientpulse",
			Name:      "active_sessions",
			Help:      "Number of currently active simulation sessions.",
		},
	)

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clientpulse",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// StreamPublishesTotal counts event-stream publish attempts by result.
	StreamPublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clientpulse",
			Name:      "stream_publishes_total",
			Help:      "Total Kafka event publishes by result.",
		},
		[]string{"result"},
	)

	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "clientpulse", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RecomputationsTotal,
		RecomputationDuration,
		ObserverFailuresTotal,
		ActiveSessions,
		ActiveWebSocketClients,
		StreamPublishesTotal,
		GoroutineCount,
	)
}

// StartRuntimeCollector periodically samples the runtime goroutine count into
// a Prometheus gauge. Call in a goroutine; exits when ctx is done.
func StartRuntimeCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
