package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

// BrowserCookieName identifies one browser across all four role
// namespaces. It carries no authentication by itself; it only scopes
// server-side session storage to a browser.
const BrowserCookieName = "mfg_bid"

const browserCookieTTL = 365 * 24 * time.Hour

// BrowserIdentity ensures every request carries a browser id, minting a
// random one on first contact. The id is placed in the request context for
// stores, verifiers, and dispatchers downstream.
func BrowserIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(BrowserCookieName); err == nil && cookie.Value != "" {
				id = cookie.Value
			} else {
				id = newBrowserID()
				c.SetCookie(&http.Cookie{
					Name:     BrowserCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(browserCookieTTL),
				})
			}

			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithBrowserID(req.Context(), id)))
			return next(c)
		}
	}
}

func newBrowserID() string {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		panic("browser id entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(raw)
}
