// Package metricx holds the Prometheus collectors for tool calls and the
// HTTP host. Every Metrics value owns a private registry so tests and
// multiple hosts in one process do not collide.
package metricx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "watools"

// Metrics stores Prometheus collectors used by tool handlers and hosts.
type Metrics struct {
	registry *prometheus.Registry

	toolCallsTotal      *prometheus.CounterVec
	toolCallDuration    *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		toolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls by tool, outcome and error code.",
			},
			[]string{"tool", "outcome", "error_code"},
		),
		toolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Tool call duration in seconds, including the provider request.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"tool"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.toolCallsTotal,
		m.toolCallDuration,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveToolCall records one finished tool call. A nil Metrics is a no-op.
func (m *Metrics) ObserveToolCall(tool string, success bool, errorCode string, duration time.Duration) {
	if m == nil {
		return
	}

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	code := strings.TrimSpace(errorCode)
	if code == "" && !success {
		code = "unknown"
	}

	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.toolCallsTotal.WithLabelValues(normalizeTool(tool), outcome, code).Inc()
	m.toolCallDuration.WithLabelValues(normalizeTool(tool)).Observe(seconds)
}

// ToolCalls exposes the tool call counter for assertions and dashboards
func (m *Metrics) ToolCalls() *prometheus.CounterVec {
	return m.toolCallsTotal
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}
	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}
	if c == nil {
		return fiber.StatusOK
	}
	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeTool(tool string) string {
	normalized := strings.ToLower(strings.TrimSpace(tool))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
