package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"catalog-api/internal/cache"
	"catalog-api/internal/config"
	"catalog-api/internal/handler"
	"catalog-api/internal/metrics"
	"catalog-api/internal/middleware"
	"catalog-api/internal/model"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Health  *handler.HealthHandler
}

type Dependencies struct {
	Auth     *middleware.AuthMiddleware
	Cache    *middleware.ResponseCache
	Metrics  *metrics.Metrics
	Handlers Handlers
}

type cacheMode int

const (
	cacheNone cacheMode = iota
	cacheReadThrough
	cacheInvalidate
)

// route declares one endpoint and the pipeline stages in front of it.
// Stages always run in the order authenticate, authorize, cache.
type route struct {
	method      string
	pattern     string
	auth        bool
	roles       []string
	cache       cacheMode
	invalidates []string
	handler     http.HandlerFunc
}

func New(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.RedactSensitive)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeRouteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeRouteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	for _, rt := range routes(deps.Handlers) {
		r.With(rt.stages(deps)...).Method(rt.method, rt.pattern, rt.handler)
	}

	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return r
}

func routes(h Handlers) []route {
	products := cache.FamilyPattern(http.MethodGet, "/products")

	return []route{
		{method: http.MethodGet, pattern: "/health", handler: h.Health.Health},

		{method: http.MethodPost, pattern: "/auth/register", handler: h.Auth.Register},
		{method: http.MethodPost, pattern: "/auth/login", handler: h.Auth.Login},
		{method: http.MethodGet, pattern: "/auth/profile", auth: true, handler: h.Auth.Profile},

		{method: http.MethodGet, pattern: "/products", cache: cacheReadThrough, handler: h.Product.List},
		{method: http.MethodGet, pattern: "/products/{id}", cache: cacheReadThrough, handler: h.Product.Get},
		{method: http.MethodPost, pattern: "/products", auth: true, roles: []string{model.RoleAdmin}, cache: cacheInvalidate, invalidates: []string{products}, handler: h.Product.Create},
		{method: http.MethodPut, pattern: "/products/{id}", auth: true, roles: []string{model.RoleAdmin}, cache: cacheInvalidate, invalidates: []string{products}, handler: h.Product.Update},
		{method: http.MethodDelete, pattern: "/products/{id}", auth: true, roles: []string{model.RoleAdmin}, cache: cacheInvalidate, invalidates: []string{products}, handler: h.Product.Delete},
	}
}

func (rt route) stages(deps Dependencies) []func(http.Handler) http.Handler {
	var stages []func(http.Handler) http.Handler

	if rt.auth || len(rt.roles) > 0 {
		stages = append(stages, deps.Auth.RequireAuth)
	}
	if len(rt.roles) > 0 {
		stages = append(stages, deps.Auth.RequireRoles(rt.roles...))
	}

	switch rt.cache {
	case cacheReadThrough:
		stages = append(stages, deps.Cache.ReadThrough)
	case cacheInvalidate:
		stages = append(stages, deps.Cache.Invalidate(rt.invalidates...))
	}

	return stages
}
