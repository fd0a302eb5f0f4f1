package search

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/zenese/server/internal/core/error"
)

// quotaKeyTTL keeps stale month keys from accumulating; the month embedded in
// the key is what actually resets the count.
const quotaKeyTTL = 62 * 24 * time.Hour

// RedisQuotaCounter keeps provider usage counters in Redis.
type RedisQuotaCounter struct {
	rdb redis.Cmdable
}

func NewRedisQuotaCounter(rdb redis.Cmdable) *RedisQuotaCounter {
	return &RedisQuotaCounter{rdb: rdb}
}

func (c *RedisQuotaCounter) Used(ctx context.Context, key string) (int, error) {
	n, err := c.rdb.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errx.WrapRedis(err)
	}
	return n, nil
}

func (c *RedisQuotaCounter) Record(ctx context.Context, key string) error {
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	// best effort; the monthly key suffix is the real reset mechanism
	if err := c.rdb.Expire(ctx, key, quotaKeyTTL).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

var _ QuotaCounter = (*RedisQuotaCounter)(nil)
