package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the engine emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Intelligence layer
	AnalysisRequestsTotal    CounterVec
	AnalysisDuration         HistogramVec
	AnalysisResultCount      HistogramVec
	RiskAssessmentsTotal     CounterVec
	RiskAlertsPublishedTotal CounterVec

	// Geospatial layer
	HeatmapDuration  HistogramVec
	HeatmapCellCount HistogramVec
	ClusterRunsTotal CounterVec
	ClustersFound    HistogramVec

	// Infrastructure
	DBQueryDuration      HistogramVec
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	KafkaPublishDuration HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultResultCountBuckets      = []float64{0, 1, 5, 10, 25, 50, 100, 250}
)

// NewAppMetrics registers all engine metrics with the given collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.AnalysisRequestsTotal = collector.RegisterCounter("analysis_requests_total", "Analysis operations by kind and outcome", "kind", "status")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Analysis operation duration", DefaultAnalysisDurationBuckets, "kind")
	m.AnalysisResultCount = collector.RegisterHistogram("analysis_result_count", "Results returned per analysis", DefaultResultCountBuckets, "kind")
	m.RiskAssessmentsTotal = collector.RegisterCounter("risk_assessments_total", "Risk assessments by resulting band", "band")
	m.RiskAlertsPublishedTotal = collector.RegisterCounter("risk_alerts_published_total", "High-risk alerts published to the broker", "status")

	m.HeatmapDuration = collector.RegisterHistogram("heatmap_duration_seconds", "Heatmap build duration", DefaultAnalysisDurationBuckets)
	m.HeatmapCellCount = collector.RegisterHistogram("heatmap_cell_count", "Cells per generated heatmap", []float64{1, 4, 9, 25, 49, 100})
	m.ClusterRunsTotal = collector.RegisterCounter("cluster_runs_total", "Cluster detection runs", "status")
	m.ClustersFound = collector.RegisterHistogram("clusters_found", "Clusters found per detection run", DefaultResultCountBuckets)

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.KafkaPublishDuration = collector.RegisterHistogram("kafka_publish_duration_seconds", "Kafka publish duration", DefaultHTTPDurationBuckets, "topic")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Component health (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// RecordHTTPRequest records one completed HTTP request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAnalysis records one analysis operation and its result size.
func (m *AppMetrics) RecordAnalysis(kind string, err error, duration time.Duration, results int) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.AnalysisRequestsTotal.WithLabelValues(kind, status).Inc()
	m.AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		m.AnalysisResultCount.WithLabelValues(kind).Observe(float64(results))
	}
}

// RecordCacheAccess records a cache hit or miss.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordError records an error against a component and error code.
func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
