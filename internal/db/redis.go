package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const payloadKey = "scamwatch:records:payload"

// CachedPayload is the raw upstream response stored in Redis alongside the
// time it was fetched, so restarted instances can serve a warm snapshot.
type CachedPayload struct {
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RedisStore wraps a redis client used as a shared payload cache and
// report counter store.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// StorePayload caches the raw upstream response body with the given TTL.
func (r *RedisStore) StorePayload(body []byte, fetchedAt time.Time, ttl time.Duration) error {
	entry, err := json.Marshal(CachedPayload{Body: body, FetchedAt: fetchedAt.UTC()})
	if err != nil {
		return err
	}
	return r.Client.Set(r.Ctx, payloadKey, entry, ttl).Err()
}

// LoadPayload returns the cached upstream response, or ok=false on a miss.
func (r *RedisStore) LoadPayload() (CachedPayload, bool, error) {
	raw, err := r.Client.Get(r.Ctx, payloadKey).Bytes()
	if err == redis.Nil {
		return CachedPayload{}, false, nil
	}
	if err != nil {
		return CachedPayload{}, false, err
	}
	var entry CachedPayload
	if err := json.Unmarshal(raw, &entry); err != nil {
		return CachedPayload{}, false, err
	}
	return entry, true, nil
}

// InvalidatePayload drops the cached payload so the next load hits upstream.
func (r *RedisStore) InvalidatePayload() error {
	return r.Client.Del(r.Ctx, payloadKey).Err()
}

// IncrementReportCount increments the daily counter of submitted reports.
// A 48h TTL is applied on first set. Returns the current count.
func (r *RedisStore) IncrementReportCount() (int64, error) {
	key := fmt.Sprintf("reports:submitted:%s", time.Now().UTC().Format("2006-01-02"))
	val, err := r.Client.Incr(r.Ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		r.Client.Expire(r.Ctx, key, 48*time.Hour)
	}
	return val, nil
}

// GetReportCount returns today's submitted report count. An unset counter
// reads as zero; any other redis failure is returned to the caller.
func (r *RedisStore) GetReportCount() (int64, error) {
	key := fmt.Sprintf("reports:submitted:%s", time.Now().UTC().Format("2006-01-02"))
	count, err := r.Client.Get(r.Ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
