package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "reports:merchants:version"
	bumpChannel     = "merchants.bump"
)

// Cache wraps Redis based caching with versioning controls.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader. A loader
// returning nil is passed through without being stored.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil && string(raw) != "null" {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the cache by incrementing the version and publishing it.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other instances.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
					continue
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
			}
		}
	}()
	return nil
}

// CachedRepository caches merchant records in front of another Repository.
// Orders and couriers always go to the source; settlements are never cached.
type CachedRepository struct {
	Repository
	cache *Cache
}

// NewCachedRepository wraps repo with the merchant cache.
func NewCachedRepository(repo Repository, cache *Cache) *CachedRepository {
	return &CachedRepository{Repository: repo, cache: cache}
}

// FetchMerchant serves one merchant from cache when possible.
func (r *CachedRepository) FetchMerchant(ctx context.Context, id string) (*Merchant, error) {
	key, err := r.cache.BuildKey(ctx, "reports", "merchant", id)
	if err != nil {
		return nil, err
	}
	var merchant *Merchant
	err = r.cache.FetchJSON(ctx, key, &merchant, func(ctx context.Context) (interface{}, error) {
		return r.Repository.FetchMerchant(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return merchant, nil
}

// FetchMerchants caches the full directory and resolves id lists per merchant.
func (r *CachedRepository) FetchMerchants(ctx context.Context, ids []string) (map[string]Merchant, error) {
	if len(ids) == 0 {
		key, err := r.cache.BuildKey(ctx, "reports", "merchants", "all")
		if err != nil {
			return nil, err
		}
		var all map[string]Merchant
		err = r.cache.FetchJSON(ctx, key, &all, func(ctx context.Context) (interface{}, error) {
			return r.Repository.FetchMerchants(ctx, nil)
		})
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = map[string]Merchant{}
		}
		return all, nil
	}

	out := make(map[string]Merchant, len(ids))
	for _, id := range ids {
		m, err := r.FetchMerchant(ctx, id)
		if err != nil {
			return nil, err
		}
		if m != nil {
			out[id] = *m
		}
	}
	return out, nil
}

// Invalidate drops every cached merchant, e.g. after a subscription change.
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	return r.cache.Bump(ctx)
}
