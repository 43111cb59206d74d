package ratelimit

import (
	"fmt"
	"sync"

	"github.com/scamwatch/scamwatch/internal/observability"
)

// SubmissionLimiter rate-limits report submissions per record id.
//
// Each record gets its own token bucket, created lazily on first access, so
// repeated submissions against one record cannot starve submissions for
// others. Activity is tracked through the injected metrics registry.
type SubmissionLimiter struct {
	buckets map[string]*TokenBucket       // record id -> token bucket
	mu      sync.RWMutex                  // protects the buckets map
	config  Config                        // rate limiting configuration
	metrics observability.MetricsRegistry // registry for limiter activity
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // token bucket capacity (burst allowance)
	RefillRate int  // tokens added per second (sustained rate)
	Enabled    bool // whether rate limiting is active
}

// NewSubmissionLimiter creates a limiter with the given configuration.
func NewSubmissionLimiter(config Config, metrics observability.MetricsRegistry) *SubmissionLimiter {
	return &SubmissionLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
	}
}

// Allow reports whether a submission for the given record should proceed.
// When rate limiting is disabled it always returns true.
func (sl *SubmissionLimiter) Allow(recordID string) bool {
	if !sl.config.Enabled {
		return true
	}

	sl.metrics.IncrementRateLimitRequests(recordID)

	sl.mu.RLock()
	bucket, exists := sl.buckets[recordID]
	sl.mu.RUnlock()

	if !exists {
		// Double-checked locking to avoid races on bucket creation.
		sl.mu.Lock()
		bucket, exists = sl.buckets[recordID]
		if !exists {
			bucket = NewTokenBucket(sl.config.Capacity, sl.config.RefillRate)
			sl.buckets[recordID] = bucket
		}
		sl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		sl.metrics.IncrementRateLimitHits(recordID)
	}

	return allowed
}

// Stats contains rate limiting statistics for a single record.
type Stats struct {
	RecordID string  `json:"record_id"`
	Hits     int64   `json:"hits"`
	Total    int64   `json:"total"`
	HitRate  float64 `json:"hit_rate"` // fraction of requests rejected (0.0-1.0)
}

// String returns a human-readable representation of the statistics.
func (s Stats) String() string {
	return fmt.Sprintf("record %s: %d/%d hits (%.2f%%)", s.RecordID, s.Hits, s.Total, s.HitRate*100)
}

// GetStats returns a snapshot of limiter statistics for all records seen.
func (sl *SubmissionLimiter) GetStats() map[string]Stats {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	stats := make(map[string]Stats)
	for recordID, bucket := range sl.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[recordID] = Stats{RecordID: recordID, Hits: hits, Total: total, HitRate: hitRate}
	}

	return stats
}
