// Package cache provides a Redis read-through cache for the category listing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/trivia"
)

// CategoriesKey is the Redis key holding the cached category listing.
const CategoriesKey = "trivia:categories"

const defaultTTL = 10 * time.Minute

// CategoryCache is a trivia.CategoryStore that serves categories from Redis and falls back to the wrapped
// store on a miss. Redis failures are logged and never fail a request.
type CategoryCache struct {
	client *redis.Client
	next   trivia.CategoryStore
	ttl    time.Duration
	logger *slog.Logger
}

var _ trivia.CategoryStore = (*CategoryCache)(nil)

// NewCategoryCache returns a CategoryCache in front of next. A non-positive ttl uses the default.
func NewCategoryCache(client *redis.Client, next trivia.CategoryStore, ttl time.Duration, logger *slog.Logger) *CategoryCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &CategoryCache{client: client, next: next, ttl: ttl, logger: logger}
}

// ListCategories returns the cached categories or reads them from the wrapped store.
func (c *CategoryCache) ListCategories(ctx context.Context) ([]*trivia.Category, error) {
	categories, err := c.get(ctx)
	if err == nil {
		return categories, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "category cache read failed", logging.ErrAttr(err))
	}

	categories, err = c.next.ListCategories(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // the wrapped store already wraps its errors
	}

	if err = c.set(ctx, categories); err != nil {
		c.logger.WarnContext(ctx, "category cache write failed", logging.ErrAttr(err))
	}

	return categories, nil
}

// Ping checks the connection to Redis.
func (c *CategoryCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Invalidate drops the cached listing.
func (c *CategoryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, CategoriesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate category cache: %w", err)
	}

	return nil
}

func (c *CategoryCache) get(ctx context.Context) ([]*trivia.Category, error) {
	data, err := c.client.Get(ctx, CategoriesKey).Bytes()
	if err != nil {
		return nil, err //nolint:wrapcheck // redis.Nil is compared by the caller
	}

	var categories []*trivia.Category
	if err = json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode cached categories: %w", err)
	}

	return categories, nil
}

func (c *CategoryCache) set(ctx context.Context, categories []*trivia.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	if err = c.client.Set(ctx, CategoriesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}

	return nil
}
