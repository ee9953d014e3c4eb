package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
)

// Dispatcher scopes backend requests to one role: it authorizes them with
// that role's stored token and stamps them with the tenant context carried
// by the request's context. It implements ports.AuthBackend and the raw
// passthrough used by the portal API routes. Role tokens never cross
// dispatchers; attaching a different role's credential is impossible by
// construction.
type Dispatcher struct {
	role   domain.Role
	client *Client
	store  ports.SessionStore
	prefix string // role-specific backend route prefix
}

// NewDispatcher builds the dispatcher for one role over a shared Client.
func NewDispatcher(role domain.Role, client *Client, store ports.SessionStore) *Dispatcher {
	return &Dispatcher{
		role:   role,
		client: client,
		store:  store,
		prefix: "/" + string(role),
	}
}

// tenant pulls the active tenant context from ctx. Requests dispatched
// outside a resolved navigation (e.g. verification during login) carry no
// tenant identity at all.
func tenant(ctx context.Context) domain.TenantContext {
	tc, ok := domain.TenantFromContext(ctx)
	if !ok {
		return domain.TenantContext{Source: domain.SourceUnresolved}
	}
	return tc
}

// wireSession is the backend's auth payload shape.
type wireSession struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	User         struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name,omitempty"`
	} `json:"user"`
}

func (d *Dispatcher) toSession(ws wireSession) domain.Session {
	s := domain.Session{
		Token:        ws.Token,
		RefreshToken: ws.RefreshToken,
		UserID:       ws.User.ID,
		Role:         d.role,
		DisplayName:  ws.User.DisplayName,
	}
	if ws.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(ws.ExpiresAt, 0).UTC()
	}
	return s
}

func (d *Dispatcher) Login(ctx context.Context, in ports.LoginInput) (domain.Session, error) {
	var ws wireSession
	status, err := d.client.do(ctx, d.role, http.MethodPost, d.prefix+"/auth/login", "", tenant(ctx), map[string]string{
		"email":    in.Email,
		"password": in.Password,
	}, &ws)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusNotFound {
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, err
	}
	return d.toSession(ws), nil
}

// Register forwards the invitation context verbatim: the invite fields are
// flattened into the request body exactly as the URL carried them, consumed
// by this one call and nowhere else.
func (d *Dispatcher) Register(ctx context.Context, in ports.RegisterInput) (domain.Session, error) {
	payload := struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name,omitempty"`
		domain.InviteContext
	}{
		Email:         in.Email,
		Password:      in.Password,
		DisplayName:   in.DisplayName,
		InviteContext: in.Invite,
	}

	var ws wireSession
	status, err := d.client.do(ctx, d.role, http.MethodPost, d.prefix+"/auth/register", "", tenant(ctx), payload, &ws)
	if err != nil {
		switch status {
		case http.StatusConflict:
			return domain.Session{}, domain.ErrUserExists
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, err
	}
	return d.toSession(ws), nil
}

func (d *Dispatcher) Profile(ctx context.Context, token string) (domain.Session, error) {
	var ws wireSession
	status, err := d.client.do(ctx, d.role, http.MethodGet, d.prefix+"/auth/profile", token, tenant(ctx), nil, &ws)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return domain.Session{}, domain.ErrSessionRejected
		}
		return domain.Session{}, err
	}
	return d.toSession(ws), nil
}

func (d *Dispatcher) ResetPassword(ctx context.Context, email string) error {
	_, err := d.client.do(ctx, d.role, http.MethodPost, d.prefix+"/auth/reset-password", "", tenant(ctx), map[string]string{
		"email": email,
	}, nil)
	return err
}

func (d *Dispatcher) LoginAsClient(ctx context.Context, adminToken, tenantID string) (domain.Session, error) {
	var ws wireSession
	status, err := d.client.do(ctx, d.role, http.MethodPost, d.prefix+"/auth/login-as-client", adminToken, tenant(ctx), map[string]string{
		"tenant_id": tenantID,
	}, &ws)
	if err != nil {
		if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			return domain.Session{}, domain.ErrImpersonationDenied
		}
		return domain.Session{}, err
	}
	return d.toSession(ws), nil
}

func (d *Dispatcher) ReturnFromImpersonation(ctx context.Context, adminToken string) error {
	_, err := d.client.do(ctx, d.role, http.MethodPost, d.prefix+"/auth/return-from-impersonation", adminToken, tenant(ctx), nil, nil)
	return err
}

// Dispatch relays an arbitrary portal API call to the backend with this
// role's stored token and the active tenant context attached. It returns
// the backend's status and decoded body for the handler to re-emit.
func (d *Dispatcher) Dispatch(ctx context.Context, browserID, method, path string, in, out any) (int, error) {
	sess, err := d.store.Load(ctx, browserID)
	if errors.Is(err, domain.ErrNoSession) {
		return http.StatusUnauthorized, domain.ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	return d.client.do(ctx, d.role, method, d.prefix+path, sess.Token, tenant(ctx), in, out)
}
