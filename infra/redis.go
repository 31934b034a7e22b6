package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tranqh/photokeep/config"
)

const signedURLKeyPrefix = "signedurl:"

// URLCache caches presigned GET URLs keyed by object path. Lookups and
// writes are best-effort; a cache failure never fails the request.
type URLCache interface {
	GetSignedURL(ctx context.Context, key string) (string, error)
	SetSignedURL(ctx context.Context, key, url string, ttl time.Duration) error
	InvalidateSignedURLs(ctx context.Context, keys ...string) error
}

type RedisClient struct {
	Client *redis.Client
}

func InitRedisClient(cfg *config.EnvConfig) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return &RedisClient{Client: client}
}

func (r *RedisClient) GetSignedURL(ctx context.Context, key string) (string, error) {
	url, err := r.Client.Get(ctx, signedURLKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached signed URL: %w", err)
	}
	return url, nil
}

func (r *RedisClient) SetSignedURL(ctx context.Context, key, url string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, signedURLKeyPrefix+key, url, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache signed URL: %w", err)
	}
	return nil
}

func (r *RedisClient) InvalidateSignedURLs(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, signedURLKeyPrefix+key)
	}
	if err := r.Client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached signed URLs: %w", err)
	}
	return nil
}
