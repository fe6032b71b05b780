package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrops-br/products-crud-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStatsStore aggregates decisions in Redis hashes:
//
//	{prefix}:total                 allowed|denied
//	{prefix}:minute:{yyyymmddhhmm} allowed|denied (expires after ttl)
//	{prefix}:endpoint              {endpoint}:allowed|{endpoint}:denied
//
// Only aggregates live in Redis; the limiter state itself stays in process.
type RedisStatsStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if endpoint := strings.TrimSpace(ev.Endpoint); endpoint != "" {
		pipe.HIncrBy(ctx, s.prefix+":endpoint", endpoint+":"+field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record rate limit stats: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (s *RedisStatsStore) Close() error {
	return s.rdb.Close()
}
