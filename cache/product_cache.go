// Package cache holds the optional read-through cache for products.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/models"

	"github.com/redis/go-redis/v9"
)

const productKeyPrefix = "storefront:product:"

// ProductCache caches products by their hex id.
type ProductCache interface {
	Get(ctx context.Context, id string) (models.Product, bool, error)
	Set(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
}

// RedisProductCache stores JSON encoded products in Redis with a fixed TTL.
type RedisProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisProductCache(client redis.Cmdable, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func (c *RedisProductCache) Get(ctx context.Context, id string) (models.Product, bool, error) {
	raw, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Product{}, false, nil
		}
		return models.Product{}, false, err
	}

	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Product{}, false, err
	}
	return p, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, p models.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKeyPrefix+p.ID.Hex(), raw, c.ttl).Err()
}

func (c *RedisProductCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKeyPrefix+id).Err()
}

// Nop is a ProductCache that never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (models.Product, bool, error) {
	return models.Product{}, false, nil
}

func (Nop) Set(context.Context, models.Product) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }
