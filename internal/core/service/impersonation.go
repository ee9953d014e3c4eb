package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
	"github.com/marketfront/portal-gateway/internal/pkg/metrics"
)

// ImpersonationBroker lets an authenticated admin borrow a tenant-scoped
// client session without giving up its own. Impersonation is additive,
// never destructive: the admin session lives in the admin namespace for
// the whole excursion and returning to it requires no re-login.
type ImpersonationBroker struct {
	adminStore  ports.SessionStore
	clientStore ports.SessionStore
	backend     ports.AuthBackend
	log         zerolog.Logger
}

func NewImpersonationBroker(adminStore, clientStore ports.SessionStore, backend ports.AuthBackend, log zerolog.Logger) *ImpersonationBroker {
	return &ImpersonationBroker{
		adminStore:  adminStore,
		clientStore: clientStore,
		backend:     backend,
		log:         log,
	}
}

// Impersonate exchanges the admin's token for a client session scoped to
// tenantID and installs it in the client namespace. The admin session is
// read but never written. A rejected exchange leaves both namespaces
// exactly as they were: the client session is written only after the
// backend has accepted the exchange, in one atomic store write.
func (b *ImpersonationBroker) Impersonate(ctx context.Context, browserID, tenantID string) (domain.Session, error) {
	admin, err := b.adminStore.Load(ctx, browserID)
	if errors.Is(err, domain.ErrNoSession) {
		metrics.ImpersonationsTotal.WithLabelValues("denied").Inc()
		return domain.Session{}, domain.ErrImpersonationDenied
	}
	if err != nil {
		metrics.ImpersonationsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, err
	}

	borrowed, err := b.backend.LoginAsClient(ctx, admin.Token, tenantID)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrImpersonationDenied) || errors.Is(err, domain.ErrSessionRejected) {
			result = "denied"
			err = domain.ErrImpersonationDenied
		}
		metrics.ImpersonationsTotal.WithLabelValues(result).Inc()
		b.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("impersonation exchange failed")
		return domain.Session{}, err
	}

	borrowed.Role = domain.RoleClient
	borrowed.Borrowed = true
	if err := b.clientStore.Save(ctx, browserID, borrowed); err != nil {
		metrics.ImpersonationsTotal.WithLabelValues("error").Inc()
		return domain.Session{}, err
	}

	metrics.ImpersonationsTotal.WithLabelValues("success").Inc()
	b.log.Info().
		Str("tenant_id", tenantID).
		Str("admin_user", admin.UserID).
		Msg("admin impersonating tenant")
	return borrowed, nil
}

// Return discards the borrowed client session and leaves the admin session
// untouched. Only a session the broker installed is torn down: without an
// active excursion, Return is a no-op, so it can never wipe a session the
// client established by logging in itself. The backend notification is
// best effort; the local clear is what ends the excursion.
func (b *ImpersonationBroker) Return(ctx context.Context, browserID string) error {
	client, err := b.clientStore.Load(ctx, browserID)
	if errors.Is(err, domain.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if !client.Borrowed {
		b.log.Debug().Msg("return without active impersonation, client session untouched")
		return nil
	}

	if admin, err := b.adminStore.Load(ctx, browserID); err == nil {
		if err := b.backend.ReturnFromImpersonation(ctx, admin.Token); err != nil {
			b.log.Warn().Err(err).Msg("backend return-from-impersonation failed")
		}
	}

	if err := b.clientStore.Clear(ctx, browserID); err != nil {
		return err
	}
	metrics.SessionClearsTotal.WithLabelValues(string(domain.RoleClient), "impersonation_return").Inc()
	return nil
}
