package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/lmskit/handler"
	"github.com/dmitrymomot/lmskit/pkg/environment"
	"github.com/dmitrymomot/lmskit/pkg/httpserver"
	"github.com/dmitrymomot/lmskit/pkg/jwt"
	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/requestid"
	"github.com/dmitrymomot/lmskit/pkg/tenant"
	"github.com/dmitrymomot/lmskit/pkg/tenantdb"
	"github.com/dmitrymomot/lmskit/svc/lms"
)

const readinessTimeout = 5 * time.Second

type routerDeps struct {
	log       *slog.Logger
	env       environment.Environment
	metrics   *prometheus.Registry
	registry  *tenantdb.Registry
	registrar *tenantdb.Registrar
	auth      *jwt.Service // nil disables token claims and admin routes
	tenantCfg tenantdb.Config
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(environment.Middleware(d.env))

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(d.log, readinessTimeout, d.registry.Healthcheck()))
	r.Handle("/metrics", promhttp.HandlerFor(d.metrics, promhttp.HandlerOpts{Registry: d.metrics}))

	if d.auth != nil {
		r.Route("/admin/tenants", func(r chi.Router) {
			r.Use(jwt.Middleware(d.auth), jwt.RequireRole("admin"))
			wrap := handler.WithErrorHandler(handler.NewErrorHandler(d.log))
			r.Get("/", handler.Wrap(listTenants(d.registry), wrap))
			r.Delete("/{tenantID}", handler.Wrap(evictTenant(d.registry, d.log), wrap))
		})
	}

	r.Group(func(r chi.Router) {
		var claim tenant.ClaimFunc
		opts := []tenantdb.MiddlewareOption{
			tenantdb.WithLogger(d.log),
			tenantdb.WithErrorHandler(tenantdb.JSONErrorHandler),
		}
		if d.auth != nil {
			r.Use(jwt.Middleware(d.auth, jwt.WithOptional()))
			claim = jwt.TenantClaim
			if d.tenantCfg.MatchClaim {
				opts = append(opts, tenantdb.WithClaimMatch(claim))
			}
		}
		resolver := tenant.NewDefaultResolver(d.tenantCfg.SubdomainSuffix, d.tenantCfg.Header, claim)
		r.Use(tenantdb.Middleware(resolver, d.registry, d.registrar, opts...))
		r.Mount("/api/v1", lms.NewHandler(d.log).Routes())
	})

	return r
}

type tenantInfo struct {
	TenantID  string    `json:"tenant_id"`
	Database  string    `json:"database"`
	State     string    `json:"state"`
	Entities  int       `json:"entities"`
	CreatedAt time.Time `json:"created_at"`
}

func listTenants(registry *tenantdb.Registry) handler.HandlerFunc {
	return func(*http.Request) handler.Response {
		ids := registry.Tenants()
		out := make([]tenantInfo, 0, len(ids))
		for _, id := range ids {
			rec, ok := registry.Lookup(id)
			if !ok {
				continue
			}
			out = append(out, tenantInfo{
				TenantID:  id,
				Database:  rec.Conn.DatabaseName(),
				State:     rec.Conn.State().String(),
				Entities:  len(rec.Conn.RegisteredNames()),
				CreatedAt: rec.CreatedAt,
			})
		}
		return handler.JSON(out, handler.WithJSONMeta(map[string]any{"total": len(out)}))
	}
}

func evictTenant(registry *tenantdb.Registry, log *slog.Logger) handler.HandlerFunc {
	return func(r *http.Request) handler.Response {
		id := chi.URLParam(r, "tenantID")
		if !tenant.ValidID(id) {
			return handler.JSONError(handler.ErrBadRequest)
		}
		if _, ok := registry.Lookup(id); !ok {
			return handler.JSONError(handler.ErrNotFound)
		}
		if err := registry.Evict(r.Context(), id); err != nil {
			log.WarnContext(r.Context(), "evicted tenant connection did not close cleanly",
				logger.TenantID(id), logger.Error(err))
		}
		return handler.Empty()
	}
}
