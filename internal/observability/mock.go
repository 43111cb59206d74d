package observability

import (
	"sync"
	"time"
)

// MockMetricsRegistry is a mock implementation of MetricsRegistry for testing.
// It counts calls so tests can assert that components report what they should.
type MockMetricsRegistry struct {
	mu sync.Mutex

	Requests          map[string]int
	Loads             map[string]int
	RecordsLoaded     int
	CacheLookupCounts map[string]int
	Reports           map[string]int
	PipelineRunCount  int
	RateLimitRequestC int
	RateLimitHitC     int
}

// NewMockMetricsRegistry creates a new MockMetricsRegistry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{
		Requests:          make(map[string]int),
		Loads:             make(map[string]int),
		CacheLookupCounts: make(map[string]int),
		Reports:           make(map[string]int),
	}
}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint+" "+method+" "+status]++
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementLoads(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads[outcome]++
}

func (m *MockMetricsRegistry) RecordLoadLatency(duration time.Duration) {}

func (m *MockMetricsRegistry) SetRecordsLoaded(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsLoaded = count
}

func (m *MockMetricsRegistry) IncrementCacheLookups(tier, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheLookupCounts[tier+" "+result]++
}

func (m *MockMetricsRegistry) IncrementReports(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports[outcome]++
}

func (m *MockMetricsRegistry) RecordReportLatency(duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementPipelineRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PipelineRunCount++
}

func (m *MockMetricsRegistry) IncrementRateLimitRequests(recordID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitRequestC++
}

func (m *MockMetricsRegistry) IncrementRateLimitHits(recordID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitHitC++
}
