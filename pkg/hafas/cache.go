package hafas

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/splitfare/splitfare/pkg/redis_client"
)

const responseCacheExpiration = 90 * time.Second

// ResponseCache holds provider responses for a short period so that repeated
// identical queries within one analysis don't hit the provider's rate limit
type ResponseCache struct {
	cache *cache.Cache[string]
}

// NewResponseCache returns nil when Redis is not connected - the gateway then
// queries the provider directly every time
func NewResponseCache() *ResponseCache {
	if redis_client.Client == nil {
		return nil
	}

	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(responseCacheExpiration))

	return &ResponseCache{
		cache: cache.New[string](redisStore),
	}
}

func (c *ResponseCache) Get(ctx context.Context, key string) (string, error) {
	return c.cache.Get(ctx, key)
}

func (c *ResponseCache) Set(ctx context.Context, key string, value string) error {
	return c.cache.Set(ctx, key, value)
}
