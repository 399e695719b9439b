// Package monitoring exposes Prometheus metrics for the builder.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances can coexist in tests.
// All Observe methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CanvasMutations  *prometheus.CounterVec
	CanvasComponents prometheus.Gauge
	Autosaves        *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec
	Backups          *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitebuilder_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitebuilder_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CanvasMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitebuilder_canvas_mutations_total",
			Help: "Canvas operations that changed the model",
		}, []string{"op"}),
		CanvasComponents: f.NewGauge(prometheus.GaugeOpts{
			Name: "sitebuilder_canvas_components",
			Help: "Component instances on the working canvas",
		}),
		Autosaves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitebuilder_autosaves_total",
			Help: "Debounced project writes by result",
		}, []string{"result"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitebuilder_login_attempts_total",
			Help: "Forwarded login submissions by result",
		}, []string{"result"}),
		Backups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitebuilder_backups_total",
			Help: "Scheduled project backups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveMutation(op string, components int) {
	if m == nil {
		return
	}
	m.CanvasMutations.WithLabelValues(op).Inc()
	m.CanvasComponents.Set(float64(components))
}

func (m *Metrics) ObserveAutosave(err error) {
	if m == nil {
		return
	}
	m.Autosaves.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveLogin(err error) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveBackup(err error) {
	if m == nil {
		return
	}
	m.Backups.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
