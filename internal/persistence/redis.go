package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/virtual-card-service/internal/config"
)

// RedisBlobStore persists the ledger snapshot as a single Redis string
// under a fixed key.
type RedisBlobStore struct {
	client *redis.Client
	key    string
}

// NewRedisBlobStore connects to Redis using the provided configuration.
func NewRedisBlobStore(cfg config.RedisConfig, key string, logger *zap.Logger) *RedisBlobStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("snapshot_key", key))
	}

	return &RedisBlobStore{client: client, key: key}
}

// Load fetches the snapshot blob, returning (nil, nil) when absent.
func (r *RedisBlobStore) Load(ctx context.Context) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Save overwrites the snapshot blob.
func (r *RedisBlobStore) Save(ctx context.Context, blob []byte) error {
	return r.client.Set(ctx, r.key, blob, 0).Err()
}

// Reset deletes the snapshot blob.
func (r *RedisBlobStore) Reset(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Ping verifies Redis connectivity.
func (r *RedisBlobStore) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisBlobStore) Close() {
	if r != nil && r.client != nil {
		_ = r.client.Close()
	}
}
