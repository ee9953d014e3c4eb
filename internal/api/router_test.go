package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/infrastructure/config"
)

var (
	routerOnce sync.Once
	testRouter *echo.Echo
	routerErr  error
)

// newTestRouter wires the real router against unreachable stores, so every
// guarded route fails closed exactly as it would for an absent session.
// Built once: the prometheus middleware registers collectors globally.
func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	routerOnce.Do(func() {
		client, err := mongo.Connect(context.Background(),
			options.Client().ApplyURI("mongodb://127.0.0.1:27017"))
		if err != nil {
			routerErr = err
			return
		}
		cfg := &config.Config{
			Port:       "8080",
			Env:        "test",
			LogLevel:   "error",
			BackendURL: "http://127.0.0.1:9",
			SessionTTL: time.Hour,
		}
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		testRouter, routerErr = NewRouter(cfg, client.Database("portal_gateway_test"), rdb, zerolog.Nop())
	})
	if routerErr != nil {
		t.Fatalf("build router: %v", routerErr)
	}
	return testRouter
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

// The login page is the guard's redirect target for its role, so it must be
// reachable without a session even where it sits inside the guarded portal
// area. A redirect here would loop forever.
func TestRouter_LoginPageReachableUnauthenticated(t *testing.T) {
	e := newTestRouter(t)
	for _, role := range domain.Roles {
		desc := domain.DescriptorFor(role)
		t.Run(string(role), func(t *testing.T) {
			rec := serve(e, http.MethodGet, desc.LoginPath)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s = %d (location %q), want 200",
					desc.LoginPath, rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestRouter_RegisterPageReachableWithInviteLink(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/marketplace/register?ref=R1&invite=XYZ123")
	if rec.Code != http.StatusOK {
		t.Fatalf("invite link landing = %d (location %q), want 200",
			rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

// Unauthenticated navigation into a guarded area must redirect to the
// role's login page once, and that target must resolve rather than
// redirect again.
func TestRouter_GuardRedirectTerminatesAtLoginPage(t *testing.T) {
	e := newTestRouter(t)

	cases := map[string]struct {
		target string
		login  string
	}{
		"vendor portal":  {"/vendor-portal/orders", "/vendor/login"},
		"client portal":  {"/client/settings", "/client/login"},
		"admin portal":   {"/admin/users", "/admin/login"},
		"admin own root": {"/admin/dashboard", "/admin/login"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tc.target)
			if rec.Code != http.StatusFound {
				t.Fatalf("GET %s = %d, want 302", tc.target, rec.Code)
			}
			loc := rec.Header().Get(echo.HeaderLocation)
			if !strings.HasPrefix(loc, tc.login+"?next=") {
				t.Fatalf("redirected to %q, want %s with next", loc, tc.login)
			}

			followed := serve(e, http.MethodGet, loc)
			if followed.Code != http.StatusOK {
				t.Fatalf("redirect target %q = %d (location %q), want 200",
					loc, followed.Code, followed.Header().Get(echo.HeaderLocation))
			}
		})
	}
}
