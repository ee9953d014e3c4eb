package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
	"github.com/marketfront/portal-gateway/internal/core/service"
)

// SelectTenantPath is where navigation lands when a tenant-requiring area
// is reached with no tenant signal at all.
const SelectTenantPath = "/select-tenant"

// TenantContext resolves the active tenant for every request and injects
// it into the request context. Slug and subdomain hits are upgraded to a
// directory record; an unknown or inactive slug degrades to unresolved
// rather than failing the request, so the tenant-selection redirect can
// handle it.
func TenantContext(resolver *service.TenantResolver, directory ports.TenantDirectory, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			tc := resolver.Resolve(req.URL.Path, c.QueryParams(), req.Host)

			switch tc.Source {
			case domain.SourcePathSlug:
				tc = upgrade(req.Context(), tc, directory.BySlug, tc.Slug, log)
			case domain.SourceSubdomain:
				tc = upgrade(req.Context(), tc, directory.BySubdomain, tc.Slug, log)
			case domain.SourceClientParam:
				tc = upgrade(req.Context(), tc, directory.ByID, tc.ID, log)
			}

			c.SetRequest(req.WithContext(domain.WithTenantContext(req.Context(), tc)))
			return next(c)
		}
	}
}

// upgrade fills in the directory record behind a URL-derived tenant
// signal. Unknown tenants degrade to unresolved; a directory outage keeps
// the URL-derived context so navigation is not taken down with it.
func upgrade(
	ctx context.Context,
	tc domain.TenantContext,
	lookup func(context.Context, string) (*domain.Tenant, error),
	value string,
	log zerolog.Logger,
) domain.TenantContext {
	t, err := lookup(ctx, value)
	if errors.Is(err, domain.ErrTenantNotFound) {
		return domain.TenantContext{Source: domain.SourceUnresolved}
	}
	if err != nil {
		log.Warn().Err(err).Str("source", string(tc.Source)).Msg("tenant directory lookup failed")
		return tc
	}
	tc.ID = t.ID
	if tc.Slug == "" {
		tc.Slug = t.Slug
	}
	return tc
}

// RequireTenant guards areas that are meaningless without a tenant. An
// unresolved context with no invite parameters redirects to the selection
// page; when invite parameters are present, resolution is the backend's
// job at registration time and navigation proceeds untouched.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tc, ok := domain.TenantFromContext(c.Request().Context())
			if ok && tc.Source != domain.SourceUnresolved {
				return next(c)
			}
			if invite := domain.ParseInviteContext(c.QueryParams()); !invite.Empty() {
				return next(c)
			}
			return c.Redirect(http.StatusFound, SelectTenantPath)
		}
	}
}
