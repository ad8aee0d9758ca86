package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application-level instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	fanoutOutcomes *prometheus.CounterVec
	queueDepth     prometheus.Gauge
	queueDropped   prometheus.Counter
}

// New builds the metrics registry and instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payrelay_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payrelay_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		fanoutOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payrelay_fanout_outcomes_total",
			Help: "Fan-out delivery outcomes by collaborator.",
		}, []string{"collaborator", "outcome"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "payrelay_webhook_queue_depth",
			Help: "Jobs waiting in the webhook fan-out queue.",
		}),
		queueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payrelay_webhook_queue_dropped_total",
			Help: "Fan-out jobs dropped because the queue was full.",
		}),
	}

	registry.MustRegister(m.httpRequests, m.httpDuration, m.fanoutOutcomes, m.queueDepth, m.queueDropped)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncFanoutOutcome records one collaborator delivery outcome.
func (m *Metrics) IncFanoutOutcome(collaborator, outcome string) {
	if m == nil {
		return
	}
	m.fanoutOutcomes.WithLabelValues(collaborator, outcome).Inc()
}

// QueueDepthAdd tracks jobs entering or leaving the webhook queue.
func (m *Metrics) QueueDepthAdd(delta float64) {
	if m == nil {
		return
	}
	m.queueDepth.Add(delta)
}

// IncQueueDropped records a fan-out job rejected by a full queue.
func (m *Metrics) IncQueueDropped() {
	if m == nil {
		return
	}
	m.queueDropped.Inc()
}

// GinMiddleware records per-request counters and latency.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
