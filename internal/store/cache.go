package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"kudos/internal/metrics"
	"kudos/internal/models"
)

const recentTTL = 30 * time.Second

// recentKey returns the cache key for the recent-kudos list of a given size.
func recentKey(limit int) string {
	return fmt.Sprintf("kudos:recent:%d", limit)
}

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Cached puts a Redis cache in front of RecentKudos. Every other call goes
// straight to the wrapped store. Redis failures are logged and bypassed.
type Cached struct {
	Store
	client *redis.Client
	logger zerolog.Logger
}

// NewCached wraps next.
func NewCached(next Store, client *redis.Client, logger zerolog.Logger) *Cached {
	return &Cached{Store: next, client: client, logger: logger}
}

// Ping checks both the store and Redis.
func (c *Cached) Ping(ctx context.Context) error {
	if err := c.Store.Ping(ctx); err != nil {
		return err
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cached) RecentKudos(ctx context.Context, limit int) ([]models.Kudo, error) {
	key := recentKey(limit)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var kudos []models.Kudo
		if err := json.Unmarshal(raw, &kudos); err == nil {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return kudos, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		metrics.CacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	kudos, err := c.Store.RecentKudos(ctx, limit)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(kudos); err == nil {
		if err := c.client.Set(ctx, key, b, recentTTL).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return kudos, nil
}

func (c *Cached) CreateKudo(ctx context.Context, in models.NewKudo) (*models.Kudo, error) {
	k, err := c.Store.CreateKudo(ctx, in)
	if err != nil {
		return nil, err
	}
	c.invalidateRecent(ctx)
	return k, nil
}

// SetProfilePicture also drops cached lists, which embed author pictures.
func (c *Cached) SetProfilePicture(ctx context.Context, id uuid.UUID, locator string) error {
	if err := c.Store.SetProfilePicture(ctx, id, locator); err != nil {
		return err
	}
	c.invalidateRecent(ctx)
	return nil
}

// invalidateRecent drops the RecentLimit list; other sizes expire with the TTL.
func (c *Cached) invalidateRecent(ctx context.Context) {
	if err := c.client.Del(ctx, recentKey(RecentLimit)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}
