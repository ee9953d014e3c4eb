package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
	"github.com/marketfront/portal-gateway/internal/infrastructure/db/memory"
)

type stubBackend struct {
	profileFn       func(ctx context.Context, token string) (domain.Session, error)
	loginAsClientFn func(ctx context.Context, adminToken, tenantID string) (domain.Session, error)
	returnFn        func(ctx context.Context, adminToken string) error
}

func (s *stubBackend) Login(context.Context, ports.LoginInput) (domain.Session, error) {
	return domain.Session{}, errors.New("not implemented")
}

func (s *stubBackend) Register(context.Context, ports.RegisterInput) (domain.Session, error) {
	return domain.Session{}, errors.New("not implemented")
}

func (s *stubBackend) Profile(ctx context.Context, token string) (domain.Session, error) {
	return s.profileFn(ctx, token)
}

func (s *stubBackend) ResetPassword(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *stubBackend) LoginAsClient(ctx context.Context, adminToken, tenantID string) (domain.Session, error) {
	return s.loginAsClientFn(ctx, adminToken, tenantID)
}

func (s *stubBackend) ReturnFromImpersonation(ctx context.Context, adminToken string) error {
	if s.returnFn == nil {
		return nil
	}
	return s.returnFn(ctx, adminToken)
}

func TestVerifier_AbsentSession_NoNetworkCall(t *testing.T) {
	store := memory.NewSessionStore("vendor")
	backend := &stubBackend{
		profileFn: func(context.Context, string) (domain.Session, error) {
			t.Fatalf("profile must not be called without a stored session")
			return domain.Session{}, nil
		},
	}

	v := NewVerifier(domain.RoleVendor, store, backend, zerolog.Nop())
	verdict, _, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", verdict)
	}
}

func TestVerifier_ValidToken(t *testing.T) {
	store := memory.NewSessionStore("vendor")
	_ = store.Save(context.Background(), "b1", domain.Session{Token: "tok-1", RefreshToken: "ref-1"})

	backend := &stubBackend{
		profileFn: func(_ context.Context, token string) (domain.Session, error) {
			if token != "tok-1" {
				t.Fatalf("profile called with wrong token %q", token)
			}
			return domain.Session{UserID: "u1", DisplayName: "Vera Vendor"}, nil
		},
	}

	v := NewVerifier(domain.RoleVendor, store, backend, zerolog.Nop())
	verdict, sess, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictAuthenticated {
		t.Fatalf("expected authenticated, got %s", verdict)
	}
	if sess.UserID != "u1" || sess.Token != "tok-1" || sess.RefreshToken != "ref-1" || sess.Role != domain.RoleVendor {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestVerifier_RejectedToken_ClearsStore(t *testing.T) {
	store := memory.NewSessionStore("customer")
	_ = store.Save(context.Background(), "b1", domain.Session{Token: "stale"})

	backend := &stubBackend{
		profileFn: func(context.Context, string) (domain.Session, error) {
			return domain.Session{}, domain.ErrSessionRejected
		},
	}

	v := NewVerifier(domain.RoleCustomer, store, backend, zerolog.Nop())
	verdict, _, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", verdict)
	}
	if _, err := store.Load(context.Background(), "b1"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("rejected token must be cleared, got %v", err)
	}
}

func TestVerifier_NetworkError_FailsClosed(t *testing.T) {
	store := memory.NewSessionStore("customer")
	_ = store.Save(context.Background(), "b1", domain.Session{Token: "tok"})

	backend := &stubBackend{
		profileFn: func(context.Context, string) (domain.Session, error) {
			return domain.Session{}, errors.New("connection refused")
		},
	}

	v := NewVerifier(domain.RoleCustomer, store, backend, zerolog.Nop())
	verdict, _, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", verdict)
	}
	if _, err := store.Load(context.Background(), "b1"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("token must be cleared on transport failure, got %v", err)
	}
}

func TestVerifier_ExpiredJWT_NoNetworkCall(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := memory.NewSessionStore("admin")
	_ = store.Save(context.Background(), "b1", domain.Session{Token: signed})

	backend := &stubBackend{
		profileFn: func(context.Context, string) (domain.Session, error) {
			t.Fatalf("profile must not be called for a locally expired token")
			return domain.Session{}, nil
		},
	}

	v := NewVerifier(domain.RoleAdmin, store, backend, zerolog.Nop())
	verdict, _, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", verdict)
	}
	if _, err := store.Load(context.Background(), "b1"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expired token must be cleared, got %v", err)
	}
}

func TestVerifier_SupersededResultDiscarded(t *testing.T) {
	store := memory.NewSessionStore("vendor")
	_ = store.Save(context.Background(), "b1", domain.Session{Token: "old"})

	calls := 0
	backend := &stubBackend{}
	backend.profileFn = func(_ context.Context, token string) (domain.Session, error) {
		calls++
		if token == "old" {
			// A newer login lands while the first profile call is in
			// flight; its failure must not clear the new session.
			_ = store.Save(context.Background(), "b1", domain.Session{Token: "new"})
			return domain.Session{}, domain.ErrSessionRejected
		}
		return domain.Session{UserID: "u2"}, nil
	}

	v := NewVerifier(domain.RoleVendor, store, backend, zerolog.Nop())
	verdict, sess, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictAuthenticated {
		t.Fatalf("expected the fresh session to win, got %s", verdict)
	}
	if sess.Token != "new" || sess.UserID != "u2" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if calls != 2 {
		t.Fatalf("expected 2 profile calls, got %d", calls)
	}

	current, err := store.Load(context.Background(), "b1")
	if err != nil || current.Token != "new" {
		t.Fatalf("stale failure must not clear the superseding session: %+v %v", current, err)
	}
}

func TestVerifier_LogoutMidFlight(t *testing.T) {
	store := memory.NewSessionStore("vendor")
	_ = store.Save(context.Background(), "b1", domain.Session{Token: "tok"})

	backend := &stubBackend{
		profileFn: func(context.Context, string) (domain.Session, error) {
			_ = store.Clear(context.Background(), "b1")
			return domain.Session{UserID: "u1"}, nil
		},
	}

	v := NewVerifier(domain.RoleVendor, store, backend, zerolog.Nop())
	verdict, _, err := v.Verify(context.Background(), "b1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if verdict != ports.VerdictUnauthenticated {
		t.Fatalf("a session cleared mid-flight must not authenticate, got %s", verdict)
	}
}
