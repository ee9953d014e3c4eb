package ports

import (
	"context"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

// TenantDirectory is the gateway's read model of the platform's tenant
// registry. Lookups return domain.ErrTenantNotFound for unknown or
// inactive tenants.
type TenantDirectory interface {
	BySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	BySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	ByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
}
