package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"composite-gateway/composite/domain"
)

// RedisStatsStore grava os CallEvent em hashes do Redis:
//
//	<prefix>:total                      downstream:result -> contador
//	<prefix>:downstream:<name>          result -> contador, "attempts" -> soma
//	<prefix>:minute:<yyyymmddhhmm>      downstream:result -> contador (com TTL)
//	<prefix>:circuit                    downstream -> último estado visto
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas nas chaves de série temporal.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "composite:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.CallEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	downstream := strings.TrimSpace(ev.Downstream)
	if downstream == "" {
		downstream = "unknown"
	}
	field := downstream + ":" + ev.Result

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	dsKey := s.prefix + ":downstream:" + downstream
	pipe.HIncrBy(ctx, dsKey, ev.Result, 1)
	pipe.HIncrBy(ctx, dsKey, "attempts", int64(ev.Attempts))

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	pipe.HSet(ctx, s.prefix+":circuit", downstream, ev.State.String())

	_, err := pipe.Exec(ctx)
	return err
}
