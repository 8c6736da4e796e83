// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evea",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evea",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "evea",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// WorkflowTransitions counts vendor onboarding transitions by event and outcome
	// (applied, idempotent, rejected, conflict).
	WorkflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evea",
			Subsystem: "onboarding",
			Name:      "transitions_total",
			Help:      "Vendor onboarding transitions.",
		},
		[]string{"event", "result"},
	)

	OutboxEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evea",
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Outbox deliveries by topic and result (sent, retry, failed).",
		},
		[]string{"topic", "result"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evea",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	WebsocketConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "evea",
		Subsystem: "notifications",
		Name:      "websocket_connections",
		Help:      "Open notification WebSocket connections.",
	})
)

var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		WorkflowTransitions,
		OutboxEvents,
		CacheLookups,
		WebsocketConnections,
	)
}

// Middleware records request metrics labelled by the matched route template
// so path parameters do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		RequestInFlight.Inc()
		defer RequestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
