package ports

import (
	"context"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

// SessionStore persists at most one session per browser inside one role's
// namespace. Implementations perform no network validation; they are pure
// storage. Save must write every key of the session together (token,
// refresh token, user metadata) and Clear must remove them all — a partial
// clear that leaves stale metadata behind is a correctness bug.
type SessionStore interface {
	Save(ctx context.Context, browserID string, s domain.Session) error
	// Load returns domain.ErrNoSession when the namespace is empty for
	// this browser.
	Load(ctx context.Context, browserID string) (domain.Session, error)
	Clear(ctx context.Context, browserID string) error
}
