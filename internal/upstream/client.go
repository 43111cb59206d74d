package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/scamwatch/scamwatch/internal/db"
	"github.com/scamwatch/scamwatch/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client fetches advertisement records from the backend data source.
// Responses are cached in memory, and optionally in a shared Redis store so
// restarted instances start warm.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration

	cacheMu sync.RWMutex
	cached  *CachedRecords

	redis   *db.RedisStore
	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// CachedRecords wraps a fetched payload with caching metadata.
type CachedRecords struct {
	Records   []map[string]any
	FetchedAt time.Time
	TTL       time.Duration
}

// IsExpired checks if the cached payload has expired.
func (c *CachedRecords) IsExpired() bool {
	return time.Since(c.FetchedAt) > c.TTL
}

// NewClient creates a new data source client. redis may be nil to disable the
// shared cache tier.
func NewClient(baseURL string, timeout, cacheTTL time.Duration, redis *db.RedisStore, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cacheTTL: cacheTTL,
		redis:    redis,
		logger:   logger,
		metrics:  metrics,
	}
}

// Fetch returns the record payload, serving from cache when fresh.
// On a cold or expired cache it calls the backend; timeouts, connection
// failures, non-success statuses and undecodable bodies map to the package's
// error taxonomy.
func (c *Client) Fetch(ctx context.Context) ([]map[string]any, error) {
	c.cacheMu.RLock()
	cached := c.cached
	c.cacheMu.RUnlock()

	if cached != nil && !cached.IsExpired() {
		c.metrics.IncrementCacheLookups("memory", "hit")
		return cached.Records, nil
	}
	c.metrics.IncrementCacheLookups("memory", "miss")

	if records, ok := c.loadFromRedis(); ok {
		return records, nil
	}

	body, err := c.callDataSource(ctx)
	if err != nil {
		return nil, err
	}

	records, err := decodePayload(body)
	if err != nil {
		c.metrics.IncrementLoads("malformed")
		return nil, err
	}
	c.metrics.IncrementLoads("success")

	fetchedAt := time.Now()
	c.storeCache(records, fetchedAt)
	if c.redis != nil {
		if err := c.redis.StorePayload(body, fetchedAt, c.cacheTTL); err != nil {
			c.logger.Warn("failed to store payload in redis", zap.Error(err))
		}
	}
	return records, nil
}

// Invalidate drops all cache tiers so the next Fetch hits the backend.
func (c *Client) Invalidate() {
	c.cacheMu.Lock()
	c.cached = nil
	c.cacheMu.Unlock()

	if c.redis != nil {
		if err := c.redis.InvalidatePayload(); err != nil {
			c.logger.Warn("failed to invalidate redis payload", zap.Error(err))
		}
	}
}

// FetchedAt returns the time of the cached payload, or zero when cold.
func (c *Client) FetchedAt() time.Time {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	if c.cached == nil {
		return time.Time{}
	}
	return c.cached.FetchedAt
}

func (c *Client) storeCache(records []map[string]any, fetchedAt time.Time) {
	c.cacheMu.Lock()
	c.cached = &CachedRecords{Records: records, FetchedAt: fetchedAt, TTL: c.cacheTTL}
	c.cacheMu.Unlock()
}

func (c *Client) loadFromRedis() ([]map[string]any, bool) {
	if c.redis == nil {
		return nil, false
	}
	entry, ok, err := c.redis.LoadPayload()
	if err != nil {
		c.metrics.IncrementCacheLookups("redis", "error")
		c.logger.Warn("redis payload lookup failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		c.metrics.IncrementCacheLookups("redis", "miss")
		return nil, false
	}
	records, err := decodePayload(entry.Body)
	if err != nil {
		c.metrics.IncrementCacheLookups("redis", "error")
		c.logger.Warn("cached redis payload is undecodable, dropping it", zap.Error(err))
		if delErr := c.redis.InvalidatePayload(); delErr != nil {
			c.logger.Warn("failed to drop bad redis payload", zap.Error(delErr))
		}
		return nil, false
	}
	c.metrics.IncrementCacheLookups("redis", "hit")
	c.storeCache(records, entry.FetchedAt)
	return records, true
}

// callDataSource makes the actual HTTP call to the backend.
func (c *Client) callDataSource(ctx context.Context) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordLoadLatency(time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		c.metrics.IncrementLoads("failure")
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransportError(err)
		if errors.Is(classified, ErrTimeout) {
			c.metrics.IncrementLoads("timeout")
		} else {
			c.metrics.IncrementLoads("failure")
		}
		return nil, classified
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncrementLoads("server_error")
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncrementLoads("failure")
		return nil, fmt.Errorf("read response: %w", classifyTransportError(err))
	}
	return body, nil
}

// decodePayload parses the backend body. Only the {"data": [...]} envelope is
// a valid shape; an absent or null data field means the backend changed shape
// and the whole load fails rather than silently emptying the collection.
// Numbers stay as json.Number so large identifiers survive intact.
func decodePayload(body []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, ok := envelope["data"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, fmt.Errorf("%w: missing data field", ErrMalformed)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: data is not a record list: %v", ErrMalformed, err)
	}
	return records, nil
}

// classifyTransportError maps a transport failure onto the error taxonomy.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
