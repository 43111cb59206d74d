package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics.
// Components receive a registry instead of touching global Prometheus state,
// so tests can observe or discard metrics as needed.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Upstream load metrics
	IncrementLoads(outcome string)
	RecordLoadLatency(duration time.Duration)
	SetRecordsLoaded(count int)

	// Payload cache metrics
	IncrementCacheLookups(tier, result string)

	// Report submission metrics
	IncrementReports(outcome string)
	RecordReportLatency(duration time.Duration)

	// Pipeline metrics
	IncrementPipelineRuns()

	// Rate limiting metrics
	IncrementRateLimitRequests(recordID string)
	IncrementRateLimitHits(recordID string)
}

// PrometheusRegistry implements MetricsRegistry on the package's global
// Prometheus metrics.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementLoads(outcome string) {
	LoadCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordLoadLatency(duration time.Duration) {
	LoadLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) SetRecordsLoaded(count int) {
	RecordsLoaded.Set(float64(count))
}

func (r *PrometheusRegistry) IncrementCacheLookups(tier, result string) {
	CacheLookups.WithLabelValues(tier, result).Inc()
}

func (r *PrometheusRegistry) IncrementReports(outcome string) {
	ReportCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordReportLatency(duration time.Duration) {
	ReportLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementPipelineRuns() {
	PipelineRuns.Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitRequests(recordID string) {
	RateLimitRequests.WithLabelValues(recordID).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(recordID string) {
	RateLimitHits.WithLabelValues(recordID).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for tests and
// tools that don't report metrics.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementLoads(outcome string)                                        {}
func (r *NoOpRegistry) RecordLoadLatency(duration time.Duration)                             {}
func (r *NoOpRegistry) SetRecordsLoaded(count int)                                           {}
func (r *NoOpRegistry) IncrementCacheLookups(tier, result string)                            {}
func (r *NoOpRegistry) IncrementReports(outcome string)                                      {}
func (r *NoOpRegistry) RecordReportLatency(duration time.Duration)                           {}
func (r *NoOpRegistry) IncrementPipelineRuns()                                               {}
func (r *NoOpRegistry) IncrementRateLimitRequests(recordID string)                           {}
func (r *NoOpRegistry) IncrementRateLimitHits(recordID string)                               {}
