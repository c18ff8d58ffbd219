package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/logger"
)

const keyPrefixPublished = "portfolio:published:"

func publishedKey(coll content.Collection) string {
	return keyPrefixPublished + string(coll)
}

// generationKey is bumped on every invalidation. A load that sees it change
// does not write its result back.
func generationKey(coll content.Collection) string {
	return publishedKey(coll) + ":gen"
}

// RedisOptions configures the shared published-items cache.
type RedisOptions struct {
	Addr           string
	Password       string
	DB             int
	ConnectTimeout time.Duration // total time allowed for connection attempts
	RetryInterval  time.Duration // first wait between attempts, doubled each time
}

// RedisCache stores published items as JSON in Redis so several app
// instances share one view. Redis errors fall back to the store.
type RedisCache struct {
	client *redis.Client
	store  Store
	ttl    time.Duration
	log    logger.Logger
}

// NewRedisCache wraps an already connected client.
func NewRedisCache(client *redis.Client, s Store, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, store: s, ttl: ttl, log: log}
}

// ConnectRedis pings until Redis answers or ConnectTimeout runs out,
// backing off exponentially between attempts.
func ConnectRedis(ctx context.Context, opts RedisOptions, log logger.Logger) (*redis.Client, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	log.Info("connecting to redis", logger.String("addr", opts.Addr))
	wait := opts.RetryInterval
	for attempt := 1; ; attempt++ {
		err := client.Ping(ctx).Err()
		if err == nil {
			log.Info("connected to redis", logger.String("addr", opts.Addr), logger.Int("attempts", attempt))
			return client, nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			client.Close()
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-timer.C:
			log.Warn("redis connection failed, retrying",
				logger.String("addr", opts.Addr),
				logger.Int("attempt", attempt),
				logger.Error(err))
			wait *= 2
		}
	}
}

// Published returns the cached items or loads and caches them.
func (c *RedisCache) Published(ctx context.Context, coll content.Collection) ([]content.Item, error) {
	raw, err := c.client.Get(ctx, publishedKey(coll)).Bytes()
	switch {
	case err == nil:
		var items []content.Item
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		c.log.Warn("discarding undecodable cache entry", logger.String("collection", string(coll)))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("redis read failed", logger.String("collection", string(coll)), logger.Error(err))
	}

	var (
		items    []content.Item
		loaded   bool
		storeErr error
	)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		items, storeErr = c.store.List(ctx, coll, ListOptions{})
		if storeErr != nil {
			return storeErr
		}
		loaded = true
		data, err := json.Marshal(items)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, publishedKey(coll), data, c.ttl)
			return nil
		})
		return err
	}, generationKey(coll))

	switch {
	case storeErr != nil:
		return nil, storeErr
	case !loaded:
		c.log.Warn("redis watch failed", logger.String("collection", string(coll)), logger.Error(err))
		return c.store.List(ctx, coll, ListOptions{})
	case errors.Is(err, redis.TxFailedErr):
		c.log.Debug("collection changed while loading, not caching", logger.String("collection", string(coll)))
	case err != nil:
		c.log.Warn("redis write failed", logger.String("collection", string(coll)), logger.Error(err))
	}
	return items, nil
}

// Invalidate removes the collection's entry and bumps its generation so
// loads already in flight do not restore it.
func (c *RedisCache) Invalidate(ctx context.Context, coll content.Collection) {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationKey(coll))
		p.Del(ctx, publishedKey(coll))
		return nil
	})
	if err != nil {
		c.log.Error("redis invalidate failed", logger.String("collection", string(coll)), logger.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
