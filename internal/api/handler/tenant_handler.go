package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
)

// TenantHandler serves tenant selection and the resolved-context probe.
type TenantHandler struct {
	directory ports.TenantDirectory
}

func NewTenantHandler(directory ports.TenantDirectory) *TenantHandler {
	return &TenantHandler{directory: directory}
}

type tenantSummary struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Select lists the active tenants so an unresolved visitor can pick a
// marketplace to enter.
//
// @Summary      List tenants for selection
// @Tags         tenant
// @Produce      json
// @Success      200  {array}  tenantSummary
// @Router       /select-tenant [get]
func (h *TenantHandler) Select(c echo.Context) error {
	tenants, err := h.directory.List(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]tenantSummary, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, tenantSummary{ID: t.ID, Slug: t.Slug, Name: t.Name})
	}
	return c.JSON(http.StatusOK, out)
}

type tenantContextResponse struct {
	ID     string `json:"id,omitempty"`
	Slug   string `json:"slug,omitempty"`
	Source string `json:"source"`
}

// Context reports the tenant context the gateway resolved for this
// request, mostly for the front end and for debugging resolution.
//
// @Summary      Show the resolved tenant context
// @Tags         tenant
// @Produce      json
// @Success      200  {object}  tenantContextResponse
// @Router       /tenant/context [get]
func (h *TenantHandler) Context(c echo.Context) error {
	tc, ok := domain.TenantFromContext(c.Request().Context())
	if !ok {
		tc = domain.TenantContext{Source: domain.SourceUnresolved}
	}
	return c.JSON(http.StatusOK, tenantContextResponse{
		ID:     tc.ID,
		Slug:   tc.Slug,
		Source: string(tc.Source),
	})
}
