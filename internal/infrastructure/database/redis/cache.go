package redis

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/pkg/errors"
)

// PartCache caches CML text keyed by custom XML part GUID.
type PartCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logging.Logger
	group  singleflight.Group
	jitter func(time.Duration) time.Duration
}

// NewPartCache wraps an existing client.
func NewPartCache(rdb redis.Cmdable, cfg Config, log logging.Logger) *PartCache {
	applyDefaults(&cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PartCache{
		rdb:    rdb,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		logger: log,
		jitter: jitterTTL,
	}
}

// jitterTTL spreads expirations by up to ten percent either way.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	j := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(j)
}

func (c *PartCache) key(guid string) (string, error) {
	guid = strings.TrimSpace(guid)
	if guid == "" {
		return "", errors.InvalidParam("invalid part GUID")
	}
	return c.prefix + guid, nil
}

// Get returns the cached CML text. A miss is reported as CACHE_001.
func (c *PartCache) Get(ctx context.Context, guid string) (string, error) {
	key, err := c.key(guid)
	if err != nil {
		return "", err
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errors.New(errors.CodeCacheMiss, "part not cached").WithDetail(guid)
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CodeCache, "failed to read part from cache").WithDetail(guid)
	}
	return val, nil
}

// Set caches the CML text of a part.
func (c *PartCache) Set(ctx context.Context, guid, cml string) error {
	key, err := c.key(guid)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, cml, c.jitter(c.ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCache, "failed to write part to cache").WithDetail(guid)
	}
	return nil
}

// Delete evicts a part. Evicting an absent key is not an error.
func (c *PartCache) Delete(ctx context.Context, guid string) error {
	key, err := c.key(guid)
	if err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCache, "failed to evict part from cache").WithDetail(guid)
	}
	return nil
}

// Ping checks the connection.
func (c *PartCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCache, "redis ping failed")
	}
	return nil
}

// GetOrLoad returns the cached text, or calls load to fetch the
// authoritative text and caches its result.
// Concurrent misses for the same GUID share one load. The second result
// reports whether the value came from the cache. A cache that cannot be
// read is treated as a miss.
func (c *PartCache) GetOrLoad(ctx context.Context, guid string, load func(ctx context.Context) (string, error)) (string, bool, error) {
	val, err := c.Get(ctx, guid)
	if err == nil {
		return val, true, nil
	}
	if !errors.IsCode(err, errors.CodeCacheMiss) {
		if errors.IsCode(err, errors.CodeInvalidParam) {
			return "", false, err
		}
		c.logger.Warn("cache read failed, loading from origin", logging.PartGUID(guid), logging.Err(err))
	}

	v, err, _ := c.group.Do(guid, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return "", err
		}
		if err := c.Set(ctx, guid, loaded); err != nil {
			c.logger.Warn("cache fill failed", logging.PartGUID(guid), logging.Err(err))
		}
		return loaded, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}
