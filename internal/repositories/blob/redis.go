package blob

import (
	"context"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	redisclient "github.com/KirkDiggler/initiative-tracker/internal/redis"
)

// DefaultRedisKeyPrefix namespaces tracker keys in a shared redis
const DefaultRedisKeyPrefix = "tracker:"

type redisRepository struct {
	client    redisclient.Client
	keyPrefix string
}

// RedisConfig contains configuration for the Redis blob repository.
type RedisConfig struct {
	Client    redisclient.Client
	KeyPrefix string
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed blob repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}

	return &redisRepository{
		client:    cfg.Client,
		keyPrefix: prefix,
	}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	key := r.keyPrefix + input.Key
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("blob %s not found", input.Key).WithMeta("key", input.Key)
		}
		slog.ErrorContext(ctx, "failed to read blob from redis",
			"key", key,
			"error", err.Error())
		return nil, errors.Wrapf(err, "failed to get blob %s", input.Key)
	}

	return &GetOutput{Value: value}, nil
}

func (r *redisRepository) Set(ctx context.Context, input SetInput) (*SetOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	key := r.keyPrefix + input.Key
	// No TTL: rosters live until overwritten
	if err := r.client.Set(ctx, key, input.Value, 0).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to write blob to redis",
			"key", key,
			"bytes", len(input.Value),
			"error", err.Error())
		return nil, errors.Wrapf(err, "failed to set blob %s", input.Key)
	}

	return &SetOutput{}, nil
}
