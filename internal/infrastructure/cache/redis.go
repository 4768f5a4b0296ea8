package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omnihive/backend/internal/domain/ports"
)

// RedisConfig is the redis worker metadata
type RedisConfig struct {
	Address   string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	UseTLS    bool
}

// RedisWorker caches values in redis
type RedisWorker struct {
	client *redis.Client
	prefix string
}

// NewRedisWorker creates a redis cache worker. The connection is checked in Init.
func NewRedisWorker(cfg RedisConfig) *RedisWorker {
	options := &redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &RedisWorker{client: redis.NewClient(options), prefix: cfg.KeyPrefix}
}

// Init pings the server with a timeout
func (w *RedisWorker) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := w.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error connecting to redis: %w", err)
	}
	return nil
}

func (w *RedisWorker) key(k string) string {
	return w.prefix + k
}

func (w *RedisWorker) Exists(ctx context.Context, key string) (bool, error) {
	n, err := w.client.Exists(ctx, w.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (w *RedisWorker) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := w.client.Get(ctx, w.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value; ttl <= 0 keeps it until removed
func (w *RedisWorker) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return w.client.Set(ctx, w.key(key), value, ttl).Err()
}

func (w *RedisWorker) Remove(ctx context.Context, key string) error {
	return w.client.Del(ctx, w.key(key)).Err()
}

func (w *RedisWorker) Close() error {
	return w.client.Close()
}

var _ ports.CacheWorker = (*RedisWorker)(nil)
