package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

const tenantCacheTTL = 5 * time.Minute

// TenantCache is a short-lived Redis cache in front of the tenant
// directory. Every guarded marketplace request resolves a slug or
// subdomain, so hot tenants are looked up far more often than the
// directory changes. Key format: tenant:<kind>:<value>
type TenantCache struct {
	client *redis.Client
}

// NewTenantCache creates a TenantCache wrapping the given Redis client.
func NewTenantCache(client *redis.Client) *TenantCache {
	return &TenantCache{client: client}
}

// Get returns the cached tenant for a lookup key, or nil on a miss.
// Cache errors are reported as misses by the caller; the directory stays
// authoritative.
func (c *TenantCache) Get(ctx context.Context, kind, value string) (*domain.Tenant, error) {
	raw, err := c.client.Get(ctx, c.key(kind, value)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tenant cache get: %w", err)
	}

	var t domain.Tenant
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("tenant cache decode: %w", err)
	}
	return &t, nil
}

// Put stores a tenant under a lookup key (expires after tenantCacheTTL).
func (c *TenantCache) Put(ctx context.Context, kind, value string, t *domain.Tenant) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("tenant cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(kind, value), raw, tenantCacheTTL).Err()
}

func (c *TenantCache) key(kind, value string) string {
	return fmt.Sprintf("tenant:%s:%s", kind, value)
}
