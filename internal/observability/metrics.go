package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "warming"

// Metrics holds the Prometheus counters and histograms for the dashboard service.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec   // labels: page, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: page

	ScenarioDuration prometheus.Histogram
	ScenarioErrors   *prometheus.CounterVec // labels: reason

	ForecastDuration *prometheus.HistogramVec // labels: model

	Uploads        prometheus.Counter
	UploadsEvicted *prometheus.CounterVec // labels: cause={ttl,capacity}
	UploadEntries  prometheus.Gauge

	Exports *prometheus.CounterVec // labels: format

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid "already registered"
// panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	reg := prometheus.NewRegistry()
	return newMetrics(reg, reg)
}

func newMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by page and status code.",
		}, []string{"page", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by page.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"page"}),
		ScenarioDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Duration of a scenario regression.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ScenarioErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_errors_total",
			Help:      "Scenario failures by reason.",
		}, []string{"reason"}),
		ForecastDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Duration of a forecast fit and prediction by model.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"model"}),
		Uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total accepted csv uploads.",
		}),
		UploadsEvicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_evicted_total",
			Help:      "Uploads removed from the store by cause.",
		}, []string{"cause"}),
		UploadEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upload_entries",
			Help:      "Uploads currently held in memory.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Dataset exports by format.",
		}, []string{"format"}),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.ScenarioDuration,
		m.ScenarioErrors,
		m.ForecastDuration,
		m.Uploads,
		m.UploadsEvicted,
		m.UploadEntries,
		m.Exports,
	)
	return m
}

// Handler serves the registry the metrics were registered with
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
