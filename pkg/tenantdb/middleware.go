package tenantdb

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/lmskit/handler"
	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/tenant"
)

// ReasonHeader tells clients which connection failure made a request fail.
const ReasonHeader = "X-Tenant-Connection-Error"

// ErrorHandler writes the rejection for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
	claim        tenant.ClaimFunc
	logger       *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler replaces the default error responses.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths lists path prefixes served without tenant resolution.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithClaimMatch rejects requests whose resolved tenant differs from the
// verified tenant claim. Requests without a claim are not affected.
func WithClaimMatch(claim tenant.ClaimFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.claim = claim
	}
}

// WithLogger sets the middleware logger.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware routes each request to its tenant's connection:
// resolve the tenant, get the connection, ensure schemas, then attach the
// tenant id and handle to the request context.
//
// An unresolved or malformed tenant is rejected as a client error before any
// I/O. Connection failures are rejected as retryable service unavailability.
// Schema attach failures are logged and do not fail the request. registrar
// may be nil when schemas are attached elsewhere.
func Middleware(resolver tenant.Resolver, registry *Registry, registrar *Registrar, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: DefaultErrorHandler,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()

			id, err := tenant.Resolve(r, resolver)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if cfg.claim != nil {
				if claimed, ok := cfg.claim(ctx); ok && claimed != "" && claimed != id {
					cfg.logger.WarnContext(ctx, "resolved tenant does not match token claim",
						logger.TenantID(id), slog.String("claim", claimed))
					cfg.errorHandler(w, r, tenant.ErrTenantMismatch)
					return
				}
			}

			// Mounted twice on one route: the outer pass already did the work.
			if conn, ok := ConnFromContext(ctx); ok && conn.TenantID() == id {
				next.ServeHTTP(w, r)
				return
			}

			ctx = tenant.WithID(ctx, id)

			conn, err := registry.Get(ctx, id)
			if err != nil {
				if IsConnectionError(err) {
					cfg.logger.WarnContext(ctx, "tenant connection unavailable", logger.Error(err))
				}
				cfg.errorHandler(w, r.WithContext(ctx), err)
				return
			}

			if registrar != nil {
				// Failures are already logged per schema; only those entities are unavailable.
				_ = registrar.Ensure(ctx, conn)
			}

			ctx = WithConn(ctx, conn)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireConn rejects requests that reach a handler without a tenant connection.
func RequireConn(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ConnFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrMissingTenant)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultErrorHandler answers client errors descriptively and connection
// errors with an opaque 503. The ReasonHeader carries the failure class.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrMissingTenant):
		http.Error(w, "Tenant is required", http.StatusBadRequest)
	case errors.Is(err, tenant.ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	case errors.Is(err, tenant.ErrTenantMismatch):
		http.Error(w, "Tenant not allowed for this token", http.StatusForbidden)
	case errors.Is(err, ErrUnknownTenant):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case IsConnectionError(err):
		w.Header().Set(ReasonHeader, ErrorReason(err))
		http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Client-facing error codes used by JSONErrorHandler.
var (
	errTenantRequired    = handler.HTTPError{Code: http.StatusBadRequest, Key: "tenant_required"}
	errTenantInvalid     = handler.HTTPError{Code: http.StatusBadRequest, Key: "tenant_invalid"}
	errTenantMismatch    = handler.HTTPError{Code: http.StatusForbidden, Key: "tenant_mismatch"}
	errTenantNotFound    = handler.HTTPError{Code: http.StatusNotFound, Key: "tenant_not_found"}
	errTenantUnavailable = handler.HTTPError{Code: http.StatusServiceUnavailable, Key: "tenant_unavailable"}
)

// JSONErrorHandler answers with the same status codes as DefaultErrorHandler
// using the JSON error envelope of package handler.
func JSONErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var resp handler.Response
	switch {
	case errors.Is(err, tenant.ErrMissingTenant):
		resp = handler.JSONError(errTenantRequired)
	case errors.Is(err, tenant.ErrInvalidIdentifier):
		resp = handler.JSONError(errTenantInvalid)
	case errors.Is(err, tenant.ErrTenantMismatch):
		resp = handler.JSONError(errTenantMismatch)
	case errors.Is(err, ErrUnknownTenant):
		resp = handler.JSONError(errTenantNotFound)
	case IsConnectionError(err):
		resp = handler.JSONError(errTenantUnavailable, handler.WithJSONHeader(ReasonHeader, ErrorReason(err)))
	default:
		resp = handler.JSONError(handler.ErrInternal)
	}
	_ = resp.Render(w, r)
}
