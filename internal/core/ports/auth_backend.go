package ports

import (
	"context"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

// LoginInput carries role-scoped login credentials to the backend.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput carries a registration request. Invite holds the invitation
// and referral parameters lifted verbatim from the inbound URL; the backend
// resolves the tenant from the invite code when no tenant is named directly.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Invite      domain.InviteContext
}

// AuthBackend is the marketplace backend's auth surface, one logical
// instance per role. The gateway never issues or validates credentials
// itself; every operation here is a remote call authorized and scoped by
// the dispatcher it is built on.
type AuthBackend interface {
	Login(ctx context.Context, in LoginInput) (domain.Session, error)
	Register(ctx context.Context, in RegisterInput) (domain.Session, error)
	// Profile confirms the stored token is still accepted. It returns
	// domain.ErrSessionRejected on a definitive backend refusal and a
	// transport error otherwise; callers treat both as verification
	// failure.
	Profile(ctx context.Context, token string) (domain.Session, error)
	ResetPassword(ctx context.Context, email string) error

	// LoginAsClient exchanges an admin token for a tenant-scoped client
	// session. Admin only.
	LoginAsClient(ctx context.Context, adminToken, tenantID string) (domain.Session, error)
	// ReturnFromImpersonation tells the backend a borrowed session is
	// being discarded. Best effort; the local clear is authoritative.
	ReturnFromImpersonation(ctx context.Context, adminToken string) error
}
