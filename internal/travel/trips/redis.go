package trips

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	errx "github.com/zenese/server/internal/core/error"
	logx "github.com/zenese/server/pkg/logger"
)

// RedisBlobStore implements BlobStore over a single Redis value per key.
type RedisBlobStore struct {
	rdb redis.Cmdable
}

func NewRedisBlobStore(rdb redis.Cmdable) *RedisBlobStore {
	return &RedisBlobStore{rdb: rdb}
}

func (r *RedisBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read blob from redis")
		return nil, errx.WrapRedis(err)
	}
	return data, nil
}

func (r *RedisBlobStore) Write(ctx context.Context, key string, data []byte) error {
	if err := r.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write blob to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ BlobStore = (*RedisBlobStore)(nil)
