package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
)

// TenantCache is the read-through cache in front of the directory.
// A (nil, nil) Get is a miss.
type TenantCache interface {
	Get(ctx context.Context, kind, value string) (*domain.Tenant, error)
	Put(ctx context.Context, kind, value string, t *domain.Tenant) error
}

// CachedTenantDirectory wraps a TenantDirectory with a read-through cache.
// Cache failures degrade to direct lookups; the directory is authoritative
// and negative results are not cached, so a newly onboarded tenant becomes
// visible immediately.
type CachedTenantDirectory struct {
	dir   ports.TenantDirectory
	cache TenantCache
	log   zerolog.Logger
}

func NewCachedTenantDirectory(dir ports.TenantDirectory, cache TenantCache, log zerolog.Logger) *CachedTenantDirectory {
	return &CachedTenantDirectory{dir: dir, cache: cache, log: log}
}

func (d *CachedTenantDirectory) BySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return d.lookup(ctx, "slug", slug, d.dir.BySlug)
}

func (d *CachedTenantDirectory) BySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return d.lookup(ctx, "subdomain", subdomain, d.dir.BySubdomain)
}

func (d *CachedTenantDirectory) ByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return d.lookup(ctx, "id", id, d.dir.ByID)
}

// List is served straight from the directory; the selection page is rare
// compared to per-request slug lookups and should always be current.
func (d *CachedTenantDirectory) List(ctx context.Context) ([]domain.Tenant, error) {
	return d.dir.List(ctx)
}

func (d *CachedTenantDirectory) lookup(
	ctx context.Context,
	kind, value string,
	fetch func(context.Context, string) (*domain.Tenant, error),
) (*domain.Tenant, error) {
	if cached, err := d.cache.Get(ctx, kind, value); err != nil {
		d.log.Warn().Err(err).Str("kind", kind).Msg("tenant cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	t, err := fetch(ctx, value)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Put(ctx, kind, value, t); err != nil {
		d.log.Warn().Err(err).Str("kind", kind).Msg("tenant cache write failed")
	}
	return t, nil
}
