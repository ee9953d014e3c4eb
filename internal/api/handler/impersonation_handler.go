package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/service"
)

// ImpersonationHandler exposes the admin "login as client" excursion. Both
// routes sit inside the admin guard, so a valid admin session is already
// established when they run.
type ImpersonationHandler struct {
	broker *service.ImpersonationBroker
}

func NewImpersonationHandler(broker *service.ImpersonationBroker) *ImpersonationHandler {
	return &ImpersonationHandler{broker: broker}
}

type impersonateRequest struct {
	TenantID string `json:"tenant_id" validate:"required"`
}

type impersonateResponse struct {
	TenantID    string `json:"tenant_id"`
	DisplayName string `json:"display_name,omitempty"`
	RedirectTo  string `json:"redirect_to"`
}

// Impersonate borrows a client session for the named tenant. The admin's
// own session is left untouched in its namespace; a rejected exchange
// changes nothing and is reported to the admin UI as a discrete error.
//
// @Summary      Impersonate a tenant
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      impersonateRequest  true  "Target tenant"
// @Success      200   {object}  impersonateResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /admin/impersonate [post]
func (h *ImpersonationHandler) Impersonate(c echo.Context) error {
	var req impersonateRequest
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

	borrowed, err := h.broker.Impersonate(c.Request().Context(), browserID, req.TenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, impersonateResponse{
		TenantID:    req.TenantID,
		DisplayName: borrowed.DisplayName,
		RedirectTo:  domain.DescriptorFor(domain.RoleClient).DashboardPath,
	})
}

// Return discards the borrowed client session and sends the admin back to
// its own dashboard, which its untouched session still serves.
//
// @Summary      Return from impersonation
// @Tags         admin
// @Success      302
// @Router       /admin/impersonate/return [post]
func (h *ImpersonationHandler) Return(c echo.Context) error {
	browserID, err := ctxBrowserID(c)
	if err != nil {
		return err
	}

	if err := h.broker.Return(c.Request().Context(), browserID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, domain.DescriptorFor(domain.RoleAdmin).DashboardPath)
}
