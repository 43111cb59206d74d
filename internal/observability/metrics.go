package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamwatch_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scamwatch_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// upstream data loads labelled by outcome
	LoadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamwatch_loads_total",
			Help: "Total upstream data loads",
		},
		[]string{"outcome"},
	)

	// latency of upstream data loads
	LoadLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scamwatch_load_duration_seconds",
			Help:    "Duration of upstream data loads",
			Buckets: prometheus.DefBuckets,
		},
	)

	// number of records in the master collection after the last load
	RecordsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scamwatch_records_loaded",
			Help: "Records in the master collection",
		},
	)

	// payload cache lookups labelled by tier and result
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamwatch_cache_lookups_total",
			Help: "Payload cache lookups",
		},
		[]string{"tier", "result"},
	)

	// report submissions labelled by outcome
	ReportCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamwatch_reports_total",
			Help: "Total report submissions to the external sink",
		},
		[]string{"outcome"},
	)

	// latency of report submissions
	ReportLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scamwatch_report_duration_seconds",
			Help:    "Duration of report submissions",
			Buckets: prometheus.DefBuckets,
		},
	)

	// pipeline recomputations
	PipelineRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scamwatch_pipeline_runs_total",
			Help: "Total filter/sort/paginate pipeline recomputations",
		},
	)

	// rate limit hits per record
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamwatch_ratelimit_hits_total",
			Help: "Total rate limit hits per record",
		},
		[]string{"record_id"},
	)

	// rate limit requests per record
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scamwatch_ratelimit_requests_total",
			Help: "Total rate limit requests per record",
		},
		[]string{"record_id"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		LoadCount,
		LoadLatency,
		RecordsLoaded,
		CacheLookups,
		ReportCount,
		ReportLatency,
		PipelineRuns,
		RateLimitHits,
		RateLimitRequests,
	)
}
