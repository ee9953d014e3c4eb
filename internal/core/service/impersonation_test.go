package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/infrastructure/db/memory"
)

func TestImpersonationBroker_Success(t *testing.T) {
	adminStore := memory.NewSessionStore("admin")
	clientStore := memory.NewSessionStore("client")
	adminSess := domain.Session{Token: "admin-tok", UserID: "a1", Role: domain.RoleAdmin}
	_ = adminStore.Save(context.Background(), "b1", adminSess)

	backend := &stubBackend{
		loginAsClientFn: func(_ context.Context, adminToken, tenantID string) (domain.Session, error) {
			if adminToken != "admin-tok" {
				t.Fatalf("exchange must be authorized by the admin token, got %q", adminToken)
			}
			if tenantID != "tenant-9" {
				t.Fatalf("unexpected tenant id %q", tenantID)
			}
			return domain.Session{Token: "borrowed-tok", UserID: "c9"}, nil
		},
	}

	broker := NewImpersonationBroker(adminStore, clientStore, backend, zerolog.Nop())
	borrowed, err := broker.Impersonate(context.Background(), "b1", "tenant-9")
	if err != nil {
		t.Fatalf("impersonate: %v", err)
	}
	if borrowed.Token != "borrowed-tok" || borrowed.Role != domain.RoleClient {
		t.Fatalf("unexpected borrowed session: %+v", borrowed)
	}

	// The admin session must be byte-for-byte untouched.
	admin, err := adminStore.Load(context.Background(), "b1")
	if err != nil || admin != adminSess {
		t.Fatalf("admin session changed: %+v %v", admin, err)
	}

	client, err := clientStore.Load(context.Background(), "b1")
	if err != nil || client.Token != "borrowed-tok" || client.Role != domain.RoleClient {
		t.Fatalf("borrowed session not installed: %+v %v", client, err)
	}
}

func TestImpersonationBroker_RejectedExchange_NoPartialWrite(t *testing.T) {
	adminStore := memory.NewSessionStore("admin")
	clientStore := memory.NewSessionStore("client")
	adminSess := domain.Session{Token: "admin-tok", UserID: "a1"}
	priorClient := domain.Session{Token: "own-client-tok", UserID: "c1"}
	_ = adminStore.Save(context.Background(), "b1", adminSess)
	_ = clientStore.Save(context.Background(), "b1", priorClient)

	backend := &stubBackend{
		loginAsClientFn: func(context.Context, string, string) (domain.Session, error) {
			return domain.Session{}, domain.ErrImpersonationDenied
		},
	}

	broker := NewImpersonationBroker(adminStore, clientStore, backend, zerolog.Nop())
	if _, err := broker.Impersonate(context.Background(), "b1", "tenant-9"); !errors.Is(err, domain.ErrImpersonationDenied) {
		t.Fatalf("expected ErrImpersonationDenied, got %v", err)
	}

	admin, _ := adminStore.Load(context.Background(), "b1")
	if admin != adminSess {
		t.Fatalf("admin session changed on rejected exchange: %+v", admin)
	}
	client, _ := clientStore.Load(context.Background(), "b1")
	if client != priorClient {
		t.Fatalf("client session changed on rejected exchange: %+v", client)
	}
}

func TestImpersonationBroker_WithoutAdminSession(t *testing.T) {
	broker := NewImpersonationBroker(
		memory.NewSessionStore("admin"),
		memory.NewSessionStore("client"),
		&stubBackend{
			loginAsClientFn: func(context.Context, string, string) (domain.Session, error) {
				t.Fatalf("exchange must not run without an admin session")
				return domain.Session{}, nil
			},
		},
		zerolog.Nop(),
	)

	if _, err := broker.Impersonate(context.Background(), "b1", "tenant-9"); !errors.Is(err, domain.ErrImpersonationDenied) {
		t.Fatalf("expected ErrImpersonationDenied, got %v", err)
	}
}

func TestImpersonationBroker_Return(t *testing.T) {
	adminStore := memory.NewSessionStore("admin")
	clientStore := memory.NewSessionStore("client")
	adminSess := domain.Session{Token: "admin-tok", UserID: "a1"}
	_ = adminStore.Save(context.Background(), "b1", adminSess)
	_ = clientStore.Save(context.Background(), "b1", domain.Session{Token: "borrowed-tok", Borrowed: true})

	var notified string
	backend := &stubBackend{
		returnFn: func(_ context.Context, adminToken string) error {
			notified = adminToken
			return nil
		},
	}

	broker := NewImpersonationBroker(adminStore, clientStore, backend, zerolog.Nop())
	if err := broker.Return(context.Background(), "b1"); err != nil {
		t.Fatalf("return: %v", err)
	}

	if notified != "admin-tok" {
		t.Fatalf("backend not notified with the admin token, got %q", notified)
	}
	if _, err := clientStore.Load(context.Background(), "b1"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("borrowed session must be cleared, got %v", err)
	}
	admin, err := adminStore.Load(context.Background(), "b1")
	if err != nil || admin != adminSess {
		t.Fatalf("admin session must survive the return: %+v %v", admin, err)
	}
}

func TestImpersonationBroker_ReturnWithoutExcursion_LeavesClientLoginIntact(t *testing.T) {
	adminStore := memory.NewSessionStore("admin")
	clientStore := memory.NewSessionStore("client")
	_ = adminStore.Save(context.Background(), "b1", domain.Session{Token: "admin-tok", UserID: "a1"})

	// A session the client established itself, not one the broker installed.
	ownLogin := domain.Session{Token: "own-client-tok", UserID: "c1", Role: domain.RoleClient}
	_ = clientStore.Save(context.Background(), "b1", ownLogin)

	backend := &stubBackend{
		returnFn: func(context.Context, string) error {
			t.Fatalf("backend must not be notified without an active excursion")
			return nil
		},
	}

	broker := NewImpersonationBroker(adminStore, clientStore, backend, zerolog.Nop())
	if err := broker.Return(context.Background(), "b1"); err != nil {
		t.Fatalf("return: %v", err)
	}

	client, err := clientStore.Load(context.Background(), "b1")
	if err != nil || client != ownLogin {
		t.Fatalf("client's own login must survive the return: %+v %v", client, err)
	}
}

func TestImpersonationBroker_ReturnWithNoClientSession_IsNoOp(t *testing.T) {
	broker := NewImpersonationBroker(
		memory.NewSessionStore("admin"),
		memory.NewSessionStore("client"),
		&stubBackend{
			returnFn: func(context.Context, string) error {
				t.Fatalf("backend must not be notified without an active excursion")
				return nil
			},
		},
		zerolog.Nop(),
	)

	if err := broker.Return(context.Background(), "b1"); err != nil {
		t.Fatalf("return with no client session: %v", err)
	}
}

func TestImpersonationBroker_BorrowedSessionMarked(t *testing.T) {
	adminStore := memory.NewSessionStore("admin")
	clientStore := memory.NewSessionStore("client")
	_ = adminStore.Save(context.Background(), "b1", domain.Session{Token: "admin-tok"})

	backend := &stubBackend{
		loginAsClientFn: func(context.Context, string, string) (domain.Session, error) {
			return domain.Session{Token: "borrowed-tok", UserID: "c9"}, nil
		},
	}

	broker := NewImpersonationBroker(adminStore, clientStore, backend, zerolog.Nop())
	if _, err := broker.Impersonate(context.Background(), "b1", "tenant-9"); err != nil {
		t.Fatalf("impersonate: %v", err)
	}

	client, err := clientStore.Load(context.Background(), "b1")
	if err != nil || !client.Borrowed {
		t.Fatalf("installed session must be marked borrowed: %+v %v", client, err)
	}
}
