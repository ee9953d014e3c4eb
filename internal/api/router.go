package api

import (
	"path"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/marketfront/portal-gateway/docs"
	"github.com/marketfront/portal-gateway/internal/api/handler"
	"github.com/marketfront/portal-gateway/internal/api/middleware"
	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/core/service"
	"github.com/marketfront/portal-gateway/internal/infrastructure/backend"
	"github.com/marketfront/portal-gateway/internal/infrastructure/config"
	mongodb "github.com/marketfront/portal-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/marketfront/portal-gateway/internal/infrastructure/db/redis"
	"github.com/marketfront/portal-gateway/internal/infrastructure/http/handlers"
)

// NewRouter builds the Echo instance with all four role portals wired.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal_gateway"))
	e.Use(middleware.BrowserIdentity())

	// --- Tenant resolution ---
	resolver := service.NewTenantResolver(cfg.BaseDomain)
	directory := service.NewCachedTenantDirectory(
		mongodb.NewTenantRepository(db),
		redisdb.NewTenantCache(rdb),
		log,
	)
	e.Use(middleware.TenantContext(resolver, directory, log))

	// --- Backend client, shared by all role dispatchers ---
	client, err := backend.NewClient(cfg.BackendURL, nil, log)
	if err != nil {
		return nil, err
	}

	// --- Role portals ---
	// Per role: an isolated session store, a role-scoped dispatcher, a
	// verifier, and one guard over the portal area. The stacks differ
	// only by descriptor.
	portals := make(map[domain.Role]*portal, len(domain.Roles))
	for _, role := range domain.Roles {
		desc := domain.DescriptorFor(role)
		store := redisdb.NewSessionStore(rdb, desc.Namespace, cfg.SessionTTL)
		dispatcher := backend.NewDispatcher(role, client, store)
		p := &portal{
			desc:       desc,
			store:      store,
			dispatcher: dispatcher,
			verifier:   service.NewVerifier(role, store, dispatcher, log),
		}
		portals[role] = p
		registerPortal(e, p, log)
	}

	// --- Customer area under a tenant path slug (/{slug}/marketplace) ---
	customer := portals[domain.RoleCustomer]
	slugGroup := e.Group("/:tenantSlug/marketplace",
		middleware.RequireTenant(),
		middleware.Guard(customer.desc, customer.verifier, log),
	)
	registerPortalRoutes(slugGroup, handler.NewPortalHandler(customer.desc, customer.dispatcher))

	// --- Admin impersonation (inside the admin guard) ---
	admin := portals[domain.RoleAdmin]
	clientPortal := portals[domain.RoleClient]
	broker := service.NewImpersonationBroker(admin.store, clientPortal.store, admin.dispatcher, log)
	impersonation := handler.NewImpersonationHandler(broker)
	adminGuarded := e.Group(admin.desc.BasePath+"/impersonate",
		middleware.Guard(admin.desc, admin.verifier, log),
	)
	adminGuarded.POST("", impersonation.Impersonate)
	adminGuarded.POST("/return", impersonation.Return)

	// --- Tenant selection ---
	tenantHandler := handler.NewTenantHandler(directory)
	e.GET(middleware.SelectTenantPath, tenantHandler.Select)
	e.GET("/tenant/context", tenantHandler.Context)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}

// portal bundles the per-role stack the router wires.
type portal struct {
	desc       domain.Descriptor
	store      *redisdb.SessionStore
	dispatcher *backend.Dispatcher
	verifier   *service.Verifier
}

// registerPortal mounts one role's public auth routes and guarded area.
func registerPortal(e *echo.Echo, p *portal, log zerolog.Logger) {
	authHandler := handler.NewAuthHandler(p.desc, p.dispatcher, p.store, log)

	// Public auth surface, siblings of the login path. The GET shells must
	// stay reachable without a session: the login page is the guard's
	// redirect target and invitation links land on the register page.
	// Static routes outrank the guarded wildcard below even when the auth
	// paths sit inside the portal area (e.g. /admin/login under /admin).
	authBase := path.Dir(p.desc.LoginPath)
	e.GET(p.desc.LoginPath, authHandler.LoginPage)
	e.GET(path.Join(authBase, "register"), authHandler.RegisterPage)
	e.POST(path.Join(authBase, "login"), authHandler.Login)
	e.POST(path.Join(authBase, "register"), authHandler.Register)
	e.POST(path.Join(authBase, "logout"), authHandler.Logout)
	e.POST(path.Join(authBase, "reset-password"), authHandler.ResetPassword)

	// Guarded portal area. The customer marketplace additionally needs a
	// resolved tenant (or invite parameters) before the guard runs.
	mws := []echo.MiddlewareFunc{}
	if p.desc.RequireTenant {
		mws = append(mws, middleware.RequireTenant())
	}
	mws = append(mws, middleware.Guard(p.desc, p.verifier, log))

	grp := e.Group(p.desc.BasePath, mws...)
	registerPortalRoutes(grp, handler.NewPortalHandler(p.desc, p.dispatcher))
}

func registerPortalRoutes(grp *echo.Group, portalHandler *handler.PortalHandler) {
	grp.GET("/dashboard", portalHandler.Dashboard)
	grp.GET("/home", portalHandler.Dashboard)
	grp.Any("/api/*", portalHandler.Passthrough)
	// Any other portal path serves the shell: the front end routes
	// client-side, the guard has already decided authentication.
	grp.Any("/*", portalHandler.Dashboard)
}
