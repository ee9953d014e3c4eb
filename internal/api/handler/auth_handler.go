package handler

import (
	"errors"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
	"github.com/marketfront/portal-gateway/internal/pkg/metrics"
)

// AuthHandler serves one role's login, logout, registration, and password
// reset. One instance exists per role descriptor; the four portals differ
// only in the descriptor and the backing store/dispatcher pair, never in
// handler code.
type AuthHandler struct {
	desc    domain.Descriptor
	backend ports.AuthBackend
	store   ports.SessionStore
	log     zerolog.Logger
}

func NewAuthHandler(desc domain.Descriptor, backend ports.AuthBackend, store ports.SessionStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		desc:    desc,
		backend: backend,
		store:   store,
		log:     log.With().Str("role", string(desc.Role)).Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name,omitempty"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sessionResponse struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
	RedirectTo  string `json:"redirect_to"`
}

type authPageResponse struct {
	Role         string `json:"role"`
	LoginPath    string `json:"login_path"`
	RegisterPath string `json:"register_path"`
	Next         string `json:"next"`
}

// LoginPage serves the unauthenticated login shell for this role. Every
// guard redirect lands here, so this route must never sit behind a guard
// itself. The `next` parameter is sanitized and echoed back for the
// post-login return.
//
// @Summary      Login page shell
// @Tags         auth
// @Produce      json
// @Param        next  query     string  false  "post-login return path"
// @Success      200   {object}  authPageResponse
// @Router       /{role}/login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.pageResponse(c))
}

// RegisterPage serves the registration shell. Invitation links land here
// without a session, with their query parameters intact for the register
// call to forward.
//
// @Summary      Registration page shell
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authPageResponse
// @Router       /{role}/register [get]
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.pageResponse(c))
}

func (h *AuthHandler) pageResponse(c echo.Context) authPageResponse {
	return authPageResponse{
		Role:         string(h.desc.Role),
		LoginPath:    h.desc.LoginPath,
		RegisterPath: path.Join(path.Dir(h.desc.LoginPath), "register"),
		Next:         safeNext(c.QueryParam("next"), h.desc.DashboardPath),
	}
}

// Login authenticates against the backend and installs the session in this
// role's namespace.
//
// @Summary      Log in to a role portal
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        next  query     string        false  "post-login return path"
// @Param        body  body      loginRequest  true   "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /{role}/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	browserID, err := ctxBrowserID(c)
	if err != nil {
		return err
	}

	sess, err := h.backend.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	sess.Role = h.desc.Role
	if err := h.store.Save(c.Request().Context(), browserID, sess); err != nil {
		return err
	}

	h.log.Info().Str("user_id", sess.UserID).Msg("login succeeded")
	return c.JSON(http.StatusOK, sessionResponse{
		UserID:      sess.UserID,
		Role:        string(h.desc.Role),
		DisplayName: sess.DisplayName,
		RedirectTo:  safeNext(c.QueryParam("next"), h.desc.DashboardPath),
	})
}

// Register creates an account through the backend. Invitation and referral
// query parameters from the inbound link are forwarded verbatim in the
// registration call — their only consumer — and are never persisted by the
// gateway.
//
// @Summary      Register through a role portal
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        ref     query     string           false  "referral code"
// @Param        vendor  query     string           false  "referring vendor id"
// @Param        invite  query     string           false  "invitation code"
// @Param        code    query     string           false  "invitation code (alias)"
// @Param        body    body      registerRequest  true   "Registration details"
// @Success      201     {object}  sessionResponse
// @Failure      400     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /{role}/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	browserID, err := ctxBrowserID(c)
	if err != nil {
		return err
	}

	sess, err := h.backend.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Invite:      domain.ParseInviteContext(c.QueryParams()),
	})
	if err != nil {
		return err
	}

	sess.Role = h.desc.Role
	if err := h.store.Save(c.Request().Context(), browserID, sess); err != nil {
		return err
	}

	h.log.Info().Str("user_id", sess.UserID).Msg("registration succeeded")
	return c.JSON(http.StatusCreated, sessionResponse{
		UserID:      sess.UserID,
		Role:        string(h.desc.Role),
		DisplayName: sess.DisplayName,
		RedirectTo:  safeNext(c.QueryParam("next"), h.desc.DashboardPath),
	})
}

// Logout clears this role's session and sends the browser back to the
// login page. Other roles' sessions are untouched.
//
// @Summary      Log out of a role portal
// @Tags         auth
// @Success      302
// @Router       /{role}/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	browserID, err := ctxBrowserID(c)
	if err != nil {
		return err
	}

	if err := h.store.Clear(c.Request().Context(), browserID); err != nil {
		return err
	}
	metrics.SessionClearsTotal.WithLabelValues(string(h.desc.Role), "logout").Inc()
	return c.Redirect(http.StatusFound, h.desc.LoginPath)
}

// ResetPassword relays a reset request to the backend. The response is the
// same whether or not the account exists.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Success      202
// @Failure      400  {object}  map[string]string
// @Router       /{role}/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.backend.ResetPassword(c.Request().Context(), req.Email); err != nil {
		// Do not leak whether the account exists; log and accept.
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			h.log.Warn().Err(err).Msg("password reset relay failed")
		}
	}
	return c.NoContent(http.StatusAccepted)
}
