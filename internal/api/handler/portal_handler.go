package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketfront/portal-gateway/internal/api/middleware"
	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/infrastructure/backend"
)

// PortalHandler serves a guarded role portal: the dashboard summary and
// the API passthrough that relays data-table calls to the backend with the
// role's token and the active tenant attached.
type PortalHandler struct {
	desc       domain.Descriptor
	dispatcher *backend.Dispatcher
}

func NewPortalHandler(desc domain.Descriptor, dispatcher *backend.Dispatcher) *PortalHandler {
	return &PortalHandler{desc: desc, dispatcher: dispatcher}
}

type dashboardResponse struct {
	Role        string `json:"role"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	TenantID    string `json:"tenant_id,omitempty"`
	TenantSlug  string `json:"tenant_slug,omitempty"`
}

// Dashboard returns the signed-in identity for the portal shell. The guard
// has already verified the session; this only reflects it back.
//
// @Summary      Portal dashboard summary
// @Tags         portal
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Router       /{role}/dashboard [get]
func (h *PortalHandler) Dashboard(c echo.Context) error {
	sess, ok := middleware.SessionFromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing verified session")
	}

	resp := dashboardResponse{
		Role:        string(h.desc.Role),
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
	}
	if tc, ok := domain.TenantFromContext(c.Request().Context()); ok {
		resp.TenantID = tc.ID
		resp.TenantSlug = tc.Slug
	}
	return c.JSON(http.StatusOK, resp)
}

// Passthrough relays a portal API call to the backend. The dispatcher
// attaches this role's token and the tenant context; the handler only
// shuttles bytes and status.
func (h *PortalHandler) Passthrough(c echo.Context) error {
	browserID, err := ctxBrowserID(c)
	if err != nil {
		return err
	}

	var in any
	if c.Request().Body != nil {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
		}
		if len(raw) > 0 {
			in = json.RawMessage(raw)
		}
	}

	var out json.RawMessage
	status, err := h.dispatcher.Dispatch(
		c.Request().Context(),
		browserID,
		c.Request().Method,
		"/"+c.Param("*"),
		in,
		&out,
	)
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, out)
}
