package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidDateRange = "invalid_date_range"
	OutcomeNoData           = "no_data"
	OutcomeError            = "error"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	loadDuration     prometheus.Histogram
	datasetRecords   prometheus.Gauge
	droppedRows      prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		pipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_pipeline_runs_total",
				Help: "Dashboard recomputations by outcome.",
			},
			[]string{"outcome"},
		),
		pipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_pipeline_duration_seconds",
			Help:    "Duration of one filter/aggregate/present pass.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_dataset_cache_hits_total",
			Help: "Dataset lookups served from the path cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_dataset_cache_misses_total",
			Help: "Dataset lookups that required parsing the source file.",
		}),
		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_dataset_load_duration_seconds",
			Help:    "Time spent reading and parsing the source file.",
			Buckets: prometheus.DefBuckets,
		}),
		datasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_records",
			Help: "Records retained by the most recent load.",
		}),
		droppedRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_dropped_rows",
			Help: "Rows dropped for an unparseable date by the most recent load.",
		}),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "HTTP requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "HTTP request latency by method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) RecordRun(outcome string, d time.Duration) {
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(d.Seconds())
}

func (m *Metrics) IncrCacheHit() {
	m.cacheHits.Inc()
}

func (m *Metrics) IncrCacheMiss() {
	m.cacheMisses.Inc()
}

func (m *Metrics) RecordLoad(records, dropped int, d time.Duration) {
	m.loadDuration.Observe(d.Seconds())
	m.datasetRecords.Set(float64(records))
	m.droppedRows.Set(float64(dropped))
}

func (m *Metrics) RecordRequest(method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) RequestCounter(method string, status int) prometheus.Counter {
	return m.httpRequests.WithLabelValues(method, strconv.Itoa(status))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// RunCounter exposes the run counter for one outcome. Tests read it with testutil.
func (m *Metrics) RunCounter(outcome string) prometheus.Counter {
	return m.pipelineRuns.WithLabelValues(outcome)
}

func (m *Metrics) CacheHitCounter() prometheus.Counter {
	return m.cacheHits
}

func (m *Metrics) CacheMissCounter() prometheus.Counter {
	return m.cacheMisses
}
