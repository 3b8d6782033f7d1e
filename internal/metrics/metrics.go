// Package metrics exposes Prometheus instrumentation for the daemon: HTTP
// request counters and latencies, conversion pipeline outcomes, and catalog
// size gauges.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can instantiate independent sets
// without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	conversions     *prometheus.CounterVec
	conversionTime  prometheus.Histogram
	catalogAudios   prometheus.Gauge
	catalogPlaylist prometheus.Gauge
}

// New builds a metrics set with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tunecast_http_requests_total",
			Help: "HTTP requests handled, by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tunecast_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tunecast_conversions_total",
			Help: "Conversion pipeline runs, by outcome.",
		}, []string{"outcome"}),
		conversionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tunecast_conversion_duration_seconds",
			Help:    "Wall time of successful conversion pipeline runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		catalogAudios: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tunecast_catalog_audios",
			Help: "Audio assets currently in the catalog.",
		}),
		catalogPlaylist: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tunecast_catalog_playlists",
			Help: "Playlists currently in the catalog.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.conversions,
		m.conversionTime,
		m.catalogAudios,
		m.catalogPlaylist,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveConversion records one pipeline run. Duration is only tracked for
// successes so failure modes don't skew the latency histogram.
func (m *Metrics) ObserveConversion(success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.conversions.WithLabelValues(outcome).Inc()
	if success {
		m.conversionTime.Observe(elapsed.Seconds())
	}
}

// SetCatalogCounts refreshes the catalog size gauges.
func (m *Metrics) SetCatalogCounts(audios, playlists int) {
	m.catalogAudios.Set(float64(audios))
	m.catalogPlaylist.Set(float64(playlists))
}
