package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
	"github.com/marketfront/portal-gateway/internal/pkg/metrics"
)

// maxSupersedeRetries bounds re-verification when a concurrent login
// replaces the session while a profile call is in flight.
const maxSupersedeRetries = 3

// Verifier implements ports.SessionVerifier for one role. A stored token is
// necessary but never sufficient: only the backend profile endpoint settles
// authentication. Any verification failure clears the stored session, so a
// rejected token can never cause a failed-retry loop on the next request.
type Verifier struct {
	role    domain.Role
	store   ports.SessionStore
	backend ports.AuthBackend
	log     zerolog.Logger
	now     func() time.Time
}

func NewVerifier(role domain.Role, store ports.SessionStore, backend ports.AuthBackend, log zerolog.Logger) *Verifier {
	return &Verifier{
		role:    role,
		store:   store,
		backend: backend,
		log:     log.With().Str("role", string(role)).Logger(),
		now:     time.Now,
	}
}

// Verify checks the browser's stored session for this role.
//
//  1. No stored session → unauthenticated, no network call.
//  2. Token locally expired (advisory expiry or JWT exp claim) → clear,
//     unauthenticated, no network call.
//  3. Otherwise the profile endpoint decides. Backend rejection and
//     transport failure are both fail-closed: clear, unauthenticated.
//
// If a newer login or logout replaces the stored session while the profile
// call is in flight, the in-flight result is stale and is discarded; the
// fresh session is verified instead. A clear is only ever applied to the
// exact token that failed, never to a successor.
func (v *Verifier) Verify(ctx context.Context, browserID string) (ports.Verdict, domain.Session, error) {
	verdict, sess, err := v.verify(ctx, browserID)
	metrics.SessionVerificationsTotal.WithLabelValues(string(v.role), verdict.String()).Inc()
	return verdict, sess, err
}

func (v *Verifier) verify(ctx context.Context, browserID string) (ports.Verdict, domain.Session, error) {
	for attempt := 0; attempt < maxSupersedeRetries; attempt++ {
		stored, err := v.store.Load(ctx, browserID)
		if errors.Is(err, domain.ErrNoSession) {
			return ports.VerdictUnauthenticated, domain.Session{}, nil
		}
		if err != nil {
			return ports.VerdictUnauthenticated, domain.Session{}, err
		}

		if v.locallyExpired(stored) {
			if err := v.clear(ctx, browserID, "expired"); err != nil {
				return ports.VerdictUnauthenticated, domain.Session{}, err
			}
			return ports.VerdictUnauthenticated, domain.Session{}, nil
		}

		profile, profileErr := v.backend.Profile(ctx, stored.Token)

		// Stale-response guard: only act on the result if the store
		// still holds the token the call was made with.
		current, loadErr := v.store.Load(ctx, browserID)
		if errors.Is(loadErr, domain.ErrNoSession) {
			// Logged out mid-flight; nothing left to clear.
			return ports.VerdictUnauthenticated, domain.Session{}, nil
		}
		if loadErr != nil {
			return ports.VerdictUnauthenticated, domain.Session{}, loadErr
		}
		if current.Token != stored.Token {
			v.log.Debug().Msg("verification superseded by newer session")
			continue
		}

		if profileErr != nil {
			reason := "network_error"
			if errors.Is(profileErr, domain.ErrSessionRejected) {
				reason = "rejected"
			} else {
				v.log.Warn().Err(profileErr).Msg("profile call failed, failing closed")
			}
			if err := v.clear(ctx, browserID, reason); err != nil {
				return ports.VerdictUnauthenticated, domain.Session{}, err
			}
			return ports.VerdictUnauthenticated, domain.Session{}, nil
		}

		profile.Token = stored.Token
		profile.RefreshToken = stored.RefreshToken
		profile.Role = v.role
		profile.Borrowed = stored.Borrowed
		return ports.VerdictAuthenticated, profile, nil
	}

	// Sessions kept replacing each other faster than we could verify.
	return ports.VerdictUnauthenticated, domain.Session{}, nil
}

func (v *Verifier) clear(ctx context.Context, browserID, reason string) error {
	if err := v.store.Clear(ctx, browserID); err != nil {
		v.log.Error().Err(err).Msg("failed to clear rejected session")
		return err
	}
	metrics.SessionClearsTotal.WithLabelValues(string(v.role), reason).Inc()
	return nil
}

// locallyExpired reports whether the session can be rejected without a
// network call: either the stored advisory expiry has passed, or the token
// is a JWT whose exp claim has. Opaque tokens always go to the backend.
func (v *Verifier) locallyExpired(s domain.Session) bool {
	now := v.now()
	if s.Expired(now) {
		return true
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time)
}
