// Package tenant derives the tenant identifier of an HTTP request and carries
// it through the request context.
//
// A Resolver is a pure function of the request: it never performs I/O and
// returns the same id for identical inputs. The platform resolves tenants in a
// fixed priority order:
//
//  1. the subdomain label of the host ("ngo" in ngo.lms.example.com)
//  2. an explicit tenant header (X-Tenant-ID by default)
//  3. the tenant claim of an identity token verified upstream
//
// NewDefaultResolver builds exactly that chain; NewCompositeResolver lets
// applications build their own. Resolve converts the unresolved result into
// ErrMissingTenant so a returned id is never empty.
//
// # Usage
//
//	import (
//		"github.com/dmitrymomot/lmskit/pkg/jwt"
//		"github.com/dmitrymomot/lmskit/pkg/tenant"
//	)
//
//	resolver := tenant.NewDefaultResolver(".lms.example.com", "X-Tenant-ID", jwt.TenantClaim)
//
//	id, err := tenant.Resolve(r, resolver)
//	if errors.Is(err, tenant.ErrMissingTenant) {
//		http.Error(w, "Tenant is required", http.StatusBadRequest)
//		return
//	}
//
// # Context
//
// WithID and IDFromContext store and read the resolved id; LoggerExtractor
// adds it to every log record written with a request context:
//
//	log := logger.New(logger.WithContextExtractors(tenant.LoggerExtractor()))
//
// # Validation
//
// Header and claim identifiers are opaque: up to 63 printable characters
// that are usable inside a database name (see ValidID). Subdomain labels must
// also be DNS-safe (see ValidLabel); IP hosts never carry a tenant. Malformed
// values yield ErrInvalidIdentifier, which callers should treat as a client error.
package tenant
