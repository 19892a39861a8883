package counter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

const defaultCounterKey = "dfd:run_counter"

// RedisStore keeps the counter in a Redis string and increments it with INCR,
// so concurrent runs never share a sequence number.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

var (
	_ contractx.CounterStore       = (*RedisStore)(nil)
	_ contractx.CounterIncrementer = (*RedisStore)(nil)
)

func NewRedisStore(rdb redis.Cmdable, key string) *RedisStore {
	if strings.TrimSpace(key) == "" {
		key = defaultCounterKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (int, bool, error) {
	value, err := s.rdb.Get(ctx, s.key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		logx.Error().Err(err).Str("key", s.key).Msg("failed to read counter from redis")
		return 0, false, wrapRedis(err)
	}
	return value, true, nil
}

func (s *RedisStore) Save(ctx context.Context, value int) error {
	if err := s.rdb.Set(ctx, s.key, value, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", s.key).Msg("failed to write counter to redis")
		return wrapRedis(err)
	}
	return nil
}

func (s *RedisStore) Increment(ctx context.Context) (int, error) {
	value, err := s.rdb.Incr(ctx, s.key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", s.key).Msg("failed to increment counter in redis")
		return 0, wrapRedis(err)
	}
	return int(value), nil
}

func wrapRedis(err error) error {
	return fmt.Errorf("%w: redis: %v", contractx.ErrStorage, err)
}
