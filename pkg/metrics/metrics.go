// Package metrics collects and exposes Prometheus metrics for the asset
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tryon_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tryon_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tryon_uploads_total",
			Help: "Upload flow steps by asset kind and stage.",
		}, []string{"kind", "stage"}),
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.uploadsTotal)

	return m
}

// RecordUpload counts one upload flow step (stage is "ticket" or "confirm")
// for an asset kind ("mannequin" or "wardrobe").
func (m *Metrics) RecordUpload(kind, stage string) {
	m.uploadsTotal.WithLabelValues(kind, stage).Inc()
}

// Middleware tracks request counts and latency per route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			m.requestsTotal.WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
