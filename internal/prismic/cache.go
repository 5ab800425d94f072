package prismic

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte         = 1024 * 1024
	redisKeyPrefix   = "prismic::"
	DefaultCacheSize = 50 // megabytes
)

// Cache keeps raw API responses: in process (freecache) and, if a redis
// client is given, shared between instances.
type Cache struct {
	local       *freecache.Cache
	redisClient *redis.Client
}

func NewCache(sizeMB int, redisClient *redis.Client) *Cache {
	if sizeMB <= 0 {
		sizeMB = DefaultCacheSize
	}
	return &Cache{
		local:       freecache.NewCache(sizeMB * megabyte),
		redisClient: redisClient,
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	if val, err := c.local.Get([]byte(key)); err == nil {
		log.Tracef("prismic cache: [%s] found locally", key)
		return val, true
	}

	if c.redisClient == nil {
		return nil, false
	}

	val, err := c.redisClient.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Errorf("prismic cache: get [%s] from redis: %s", key, err)
		}
		return nil, false
	}

	log.Tracef("prismic cache: [%s] found in redis", key)

	// keep the local copy for a short while only, redis owns the expiry
	if err := c.local.Set([]byte(key), val, localCopyExpireSeconds); err != nil {
		log.Debugf("prismic cache: local copy of [%s]: %s", key, err)
	}

	return val, true
}

const localCopyExpireSeconds = 60

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if c == nil {
		return
	}

	if err := c.local.Set([]byte(key), val, int(ttl.Seconds())); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			// freecache caps an entry at 1/1024 of its size, large listings stay in redis only
			log.Debugf("prismic cache: [%s] too large to keep locally (%d bytes)", key, len(val))
		} else {
			log.Warnf("prismic cache: set [%s] locally: %s", key, err)
		}
	}

	if c.redisClient == nil {
		return
	}

	if err := c.redisClient.Set(ctx, redisKeyPrefix+key, val, ttl).Err(); err != nil {
		log.Errorf("prismic cache: set [%s] in redis: %s", key, err)
	}
}

func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.local.Clear()
}
