package service

import (
	"net/url"
	"strings"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/pkg/metrics"
)

// TenantResolver derives the active tenant from a single navigation event.
// Resolution is pure string work over path, query, and host; upgrading a
// slug to a directory record is the caller's job.
type TenantResolver struct {
	baseDomain string
	reserved   map[string]struct{}
}

// reservedSegments are first path segments that can never be tenant slugs:
// the four portal areas plus the gateway's own surface.
var reservedSegments = []string{
	"marketplace", "vendor", "vendor-portal", "client", "admin",
	"auth", "select-tenant", "health", "metrics", "swagger", "static",
}

// NewTenantResolver builds a resolver. baseDomain (e.g. "example.com") is
// used to recognize tenant subdomains; when empty, subdomain resolution is
// disabled.
func NewTenantResolver(baseDomain string) *TenantResolver {
	reserved := make(map[string]struct{}, len(reservedSegments))
	for _, s := range reservedSegments {
		reserved[s] = struct{}{}
	}
	return &TenantResolver{
		baseDomain: strings.ToLower(strings.TrimPrefix(baseDomain, ".")),
		reserved:   reserved,
	}
}

// Resolve computes the TenantContext for one request. Precedence, first
// match wins:
//
//  1. tenant slug embedded in the path (/{slug}/marketplace/...)
//  2. explicit `client` query parameter
//  3. invite/referral parameters (ref, invite, code) — tenant named only
//     indirectly, resolution deferred to the registration call
//  4. subdomain of the configured base domain
//  5. unresolved
func (r *TenantResolver) Resolve(path string, query url.Values, host string) domain.TenantContext {
	tc := r.resolve(path, query, host)
	metrics.TenantResolutionsTotal.WithLabelValues(string(tc.Source)).Inc()
	return tc
}

func (r *TenantResolver) resolve(path string, query url.Values, host string) domain.TenantContext {
	if slug := r.pathSlug(path); slug != "" {
		return domain.TenantContext{Slug: slug, Source: domain.SourcePathSlug}
	}
	if id := query.Get("client"); id != "" {
		return domain.TenantContext{ID: id, Source: domain.SourceClientParam}
	}
	if invite := domain.ParseInviteContext(query); !invite.Empty() {
		return domain.TenantContext{Source: domain.SourceInviteCode}
	}
	if sub := r.subdomain(host); sub != "" {
		return domain.TenantContext{Slug: sub, Source: domain.SourceSubdomain}
	}
	return domain.TenantContext{Source: domain.SourceUnresolved}
}

// pathSlug extracts a tenant slug of the form /{slug}/marketplace/... .
// The slug must not be a reserved segment and must be followed by the
// marketplace area, so ordinary portal paths never masquerade as slugs.
func (r *TenantResolver) pathSlug(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	first := strings.ToLower(segments[0])
	if _, ok := r.reserved[first]; ok {
		return ""
	}
	if segments[1] != "marketplace" {
		return ""
	}
	return first
}

// subdomain extracts the tenant subdomain from the host when the host is a
// strict subdomain of the configured base domain. "www" is never a tenant.
func (r *TenantResolver) subdomain(host string) string {
	if r.baseDomain == "" || host == "" {
		return ""
	}
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	suffix := "." + r.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	sub := strings.TrimSuffix(host, suffix)
	if sub == "" || sub == "www" || strings.Contains(sub, ".") {
		return ""
	}
	return sub
}
