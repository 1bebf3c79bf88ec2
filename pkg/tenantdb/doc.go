// Package tenantdb routes requests of a multi-tenant deployment to the
// database that belongs to each tenant and manages those connections over
// the process lifetime.
//
// All tenants share one database endpoint. The Factory maps a tenant id to a
// logical database name (a static table with a "<tenant>Db" fallback, or
// ErrUnknownTenant in strict mode) and performs the handshake: it is raced
// against a hard deadline and the handle is only returned once the driver
// reported it connected. A handshake that loses the race is discarded in the
// background when it eventually completes.
//
// The Registry caches one handle per tenant. Lookups of a connected handle
// do no I/O; concurrent first requests for the same tenant share a single
// handshake. Failed handshakes leave nothing in the cache, and a cached
// handle that stopped being connected is replaced on the next lookup.
//
// The Registrar attaches the application's schema set to a handle once,
// best effort per entity: an entity that failed to attach is unavailable on
// that handle while the others keep working, and the next call retries it.
//
// Middleware ties it together for HTTP:
//
//	registry := tenantdb.NewRegistry(factory)
//	registrar := tenantdb.NewRegistrar(lms.Schemas())
//
//	r := chi.NewRouter()
//	r.Use(tenantdb.Middleware(tenant.NewDefaultResolver(".lms.example.com", "", jwt.TenantClaim), registry, registrar))
//	r.Get("/courses", func(w http.ResponseWriter, r *http.Request) {
//	    conn := tenantdb.MustConnFromContext(r.Context())
//	    courses, err := conn.Collection(lms.EntityCourse)
//	    ...
//	})
//
// Missing or malformed tenants are answered with 400, connection failures
// with 503 and an X-Tenant-Connection-Error header naming the failure class.
// Call Registry.CloseAll on shutdown.
package tenantdb
