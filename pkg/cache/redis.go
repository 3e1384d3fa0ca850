package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrMiss возвращается, если ключа нет в кэше
	ErrMiss = errors.New("cache: miss")

	// ErrBackend возвращается при ошибке обращения к Redis
	ErrBackend = errors.New("cache: backend error")
)

// RedisCache простой key-value кэш поверх Redis с общим префиксом ключей
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache создает кэш
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Connect создает клиента Redis и проверяет соединение
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrBackend, addr, err)
	}
	return client, nil
}

func (c *RedisCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get возвращает значение по ключу или ErrMiss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrBackend, key, err)
	}
	return val, nil
}

// Set сохраняет значение с TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrBackend, key, err)
	}
	return nil
}

// Incr атомарно увеличивает счетчик на единицу и возвращает новое значение
func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Incr(ctx, c.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: incr %s: %v", ErrBackend, key, err)
	}
	return val, nil
}

// NopCache всегда промахивается; используется, когда Redis выключен
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopCache) Incr(context.Context, string) (int64, error) { return 0, nil }
