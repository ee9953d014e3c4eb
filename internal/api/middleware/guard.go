package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/ports"
)

// sessionContextKey is where the guard stores the verified session for
// handlers downstream.
const sessionContextKey = "session"

// Guard protects one role's portal area. Each request triggers exactly one
// verification; the response is withheld until it resolves. Authenticated
// requests proceed with the verified session in context; everything else —
// absent session, rejected token, store failure — redirects once to the
// role's login route with the original target preserved in `next`, so the
// login flow can return the user there. Failures never escape as errors:
// an expired session looks exactly like a never-authenticated one.
func Guard(desc domain.Descriptor, verifier ports.SessionVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	log = log.With().Str("role", string(desc.Role)).Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			browserID, ok := domain.BrowserIDFromContext(c.Request().Context())
			if !ok {
				// No browser identity means no session can exist.
				return redirectToLogin(c, desc)
			}

			verdict, sess, err := verifier.Verify(c.Request().Context(), browserID)
			if err != nil {
				log.Error().Err(err).Msg("session verification errored, failing closed")
				return redirectToLogin(c, desc)
			}
			if verdict != ports.VerdictAuthenticated {
				return redirectToLogin(c, desc)
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

func redirectToLogin(c echo.Context, desc domain.Descriptor) error {
	target := c.Request().URL.RequestURI()
	return c.Redirect(http.StatusFound, desc.LoginPath+"?next="+url.QueryEscape(target))
}

// SessionFromEcho returns the session the guard verified for this request.
func SessionFromEcho(c echo.Context) (domain.Session, bool) {
	sess, ok := c.Get(sessionContextKey).(domain.Session)
	return sess, ok
}
