package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry            *prometheus.Registry
	ReportsCreatedTotal *prometheus.CounterVec
	ImageUploadsTotal   *prometheus.CounterVec
	APIErrorsTotal      *prometheus.CounterVec
	APILatency          *prometheus.HistogramVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	reportsCreatedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of reports created, by report type.",
	}, []string{"type"})
	imageUploadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of image uploads, by result.",
	}, []string{"result"})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of API error responses by route and status.",
	}, []string{"route", "status"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(
		reportsCreatedTotal,
		imageUploadsTotal,
		apiErrorsTotal,
		apiLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:            registry,
		ReportsCreatedTotal: reportsCreatedTotal,
		ImageUploadsTotal:   imageUploadsTotal,
		APIErrorsTotal:      apiErrorsTotal,
		APILatency:          apiLatency,
	}
}

func (m *MetricsManager) ReportCreated(reportType string) {
	m.ReportsCreatedTotal.WithLabelValues(reportType).Inc()
}

// ImageUploaded counts one upload attempt; result is "ok" or "error".
func (m *MetricsManager) ImageUploaded(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.ImageUploadsTotal.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
