package domain

import (
	"errors"
	"net/url"
	"time"
)

// TenantSource records which navigation signal produced a TenantContext.
// The resolver tries sources in the declared precedence order; the first
// match wins.
type TenantSource string

const (
	SourcePathSlug    TenantSource = "path-slug"
	SourceClientParam TenantSource = "query-client-param"
	SourceInviteCode  TenantSource = "invite-code"
	SourceSubdomain   TenantSource = "host-subdomain"
	SourceUnresolved  TenantSource = "unresolved"
)

// TenantContext is the tenant identity derived from a single navigation
// event. It is recomputed per request and never persisted; only the URL
// itself carries it across requests.
type TenantContext struct {
	ID     string       // directory tenant id, when known
	Slug   string       // slug or subdomain as it appeared in the URL
	Source TenantSource
}

// Resolved reports whether the context names a tenant directly. An
// invite-sourced context is deliberately not "resolved": the backend
// resolves the tenant from the invite code at registration time.
func (tc TenantContext) Resolved() bool {
	return tc.Source == SourcePathSlug ||
		tc.Source == SourceClientParam ||
		tc.Source == SourceSubdomain
}

// InviteContext carries invitation and referral query parameters from an
// inbound link through to the registration call. It lives only in the URL
// and the one registration request body; it is never written to storage.
type InviteContext struct {
	Ref      string `json:"ref,omitempty"`
	VendorID string `json:"vendor,omitempty"`
	ClientID string `json:"client,omitempty"`
	Invite   string `json:"invite,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Empty reports whether no invitation signal is present.
func (ic InviteContext) Empty() bool {
	return ic.Ref == "" && ic.VendorID == "" && ic.Invite == ""
}

// ParseInviteContext reads the invitation parameters from a query string.
// The `code` parameter is an alias for `invite`; `invite` wins when both
// are present.
func ParseInviteContext(q url.Values) InviteContext {
	ic := InviteContext{
		Ref:      q.Get("ref"),
		VendorID: q.Get("vendor"),
		ClientID: q.Get("client"),
		Invite:   q.Get("invite"),
		Type:     q.Get("type"),
	}
	if ic.Invite == "" {
		ic.Invite = q.Get("code")
	}
	return ic
}

// Tenant is a directory record for one marketplace-owning organization.
type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Subdomain string    `json:"subdomain,omitempty"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrTenantUnresolved = errors.New("tenant unresolved")

	// ErrImpersonationDenied is returned when the backend refuses to
	// exchange an admin token for a tenant-scoped one.
	ErrImpersonationDenied = errors.New("impersonation denied")
)
