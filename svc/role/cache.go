package role

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/schoolkit/pkg/guard"
	rolepkg "github.com/dmitrymomot/schoolkit/pkg/role"
)

// ResolverCache caches resolved roles for the guard's request-time lookup.
// Misses are silent; cache failures never fail an authorization check.
type ResolverCache interface {
	Get(ctx context.Context, key string) (rolepkg.Role, bool)
	Set(ctx context.Context, key string, r rolepkg.Role, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// ResolverCacheKey builds the cache key for a role lookup. Global lookups
// use uuid.Nil as the tenant id. Role names are case-insensitive, so the
// key folds them.
func ResolverCacheKey(tenantID uuid.UUID, roleName string) string {
	return tenantID.String() + ":" + strings.ToLower(roleName)
}

// CachedResolver decorates a guard.RoleResolver with a ResolverCache.
// Only successful resolutions are cached; not-found and infrastructure
// errors always hit the underlying resolver.
func CachedResolver(next guard.RoleResolver, cache ResolverCache, ttl time.Duration) guard.RoleResolver {
	return guard.RoleResolverFunc(func(ctx context.Context, p guard.Principal) (rolepkg.Role, error) {
		tenantID := uuid.Nil
		if p.TenantID != nil {
			tenantID = *p.TenantID
		}
		key := ResolverCacheKey(tenantID, p.RoleName)

		if r, ok := cache.Get(ctx, key); ok {
			return r, nil
		}

		r, err := next.Resolve(ctx, p)
		if err != nil {
			return rolepkg.Role{}, err
		}

		cache.Set(ctx, key, r, ttl)
		return r, nil
	})
}

// redisCache is a ResolverCache backed by Redis, for deployments where
// several instances share one role cache and invalidation must reach all
// of them.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache builds a ResolverCache over the given client. The prefix
// namespaces keys within a shared Redis database; empty defaults to
// "rbac:role:".
func NewRedisCache(client *redis.Client, prefix string) ResolverCache {
	if prefix == "" {
		prefix = "rbac:role:"
	}
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) Get(ctx context.Context, key string) (rolepkg.Role, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return rolepkg.Role{}, false
	}

	var r rolepkg.Role
	if err := json.Unmarshal(raw, &r); err != nil {
		// Corrupt entry: drop it and fall through to the store.
		c.client.Del(ctx, c.prefix+key)
		return rolepkg.Role{}, false
	}
	return r, true
}

func (c *redisCache) Set(ctx context.Context, key string, r rolepkg.Role, ttl time.Duration) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, raw, ttl)
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	c.client.Del(ctx, c.prefix+key)
}
