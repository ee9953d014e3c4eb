package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

// ctxBrowserID extracts the browser identity injected by the
// BrowserIdentity middleware and fast-fails before any service call:
// without it no session namespace can be addressed, so the request cannot
// belong to anyone.
func ctxBrowserID(c echo.Context) (string, error) {
	id, ok := domain.BrowserIDFromContext(c.Request().Context())
	if !ok || id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing browser identity")
	}
	return id, nil
}

// safeNext sanitizes a post-login return target. Only same-site absolute
// paths survive; anything else falls back to the role's dashboard so the
// login flow can never redirect off-site.
func safeNext(next, fallback string) string {
	if next == "" || next[0] != '/' {
		return fallback
	}
	if len(next) > 1 && next[1] == '/' {
		return fallback
	}
	return next
}
