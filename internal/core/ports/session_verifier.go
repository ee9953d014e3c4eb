package ports

import (
	"context"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

// Verdict is the terminal outcome of one verification. While a verification
// is in flight the caller is in a third, implicit "loading" state: it holds
// no verdict and must not act on one.
type Verdict int

const (
	VerdictUnauthenticated Verdict = iota
	VerdictAuthenticated
)

func (v Verdict) String() string {
	if v == VerdictAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// SessionVerifier confirms that a browser's stored session for one role is
// still honored by the backend. A present token is necessary but not
// sufficient; only the profile round-trip settles it. Verification failure
// always clears the stored session so the next load starts clean.
type SessionVerifier interface {
	Verify(ctx context.Context, browserID string) (Verdict, domain.Session, error)
}
