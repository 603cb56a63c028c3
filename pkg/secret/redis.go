package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisGetter is the subset of redis.UniversalClient used by Redis.
type RedisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Redis provides a secret stored under a Redis key.
type Redis struct {
	client RedisGetter
	key    string
	opts   options
	snap   snapshot
}

// NewRedis loads the key once. A missing key fails with ErrSecretUnavailable.
func NewRedis(ctx context.Context, client RedisGetter, key string, opts ...Option) (*Redis, error) {
	if client == nil {
		return nil, ErrInvalidConfig
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	r := &Redis{
		client: client,
		key:    key,
		opts:   applyOptions(opts),
	}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Redis) ProvideSecret() string {
	return r.snap.load()
}

// Refresh fetches the key again. On failure the previous secret is kept.
func (r *Redis) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return errors.Join(ErrSecretUnavailable, fmt.Errorf("redis key %q not found", r.key))
	}
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}
	if len(value) > maxSecretSize {
		return errors.Join(ErrSecretUnavailable, ErrSecretTooLarge)
	}

	value, err = r.opts.normalize(value)
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}

	r.snap.store(value)
	return nil
}
