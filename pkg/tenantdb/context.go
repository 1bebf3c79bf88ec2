package tenantdb

import "context"

type connContextKey struct{}

// WithConn stores the tenant connection handle in ctx.
func WithConn(ctx context.Context, conn *Conn) context.Context {
	return context.WithValue(ctx, connContextKey{}, conn)
}

// ConnFromContext returns the handle attached by the middleware.
func ConnFromContext(ctx context.Context) (*Conn, bool) {
	conn, ok := ctx.Value(connContextKey{}).(*Conn)
	return conn, ok && conn != nil
}

// MustConnFromContext panics if no handle is in ctx.
func MustConnFromContext(ctx context.Context) *Conn {
	conn, ok := ConnFromContext(ctx)
	if !ok {
		panic("tenantdb: no connection in context")
	}
	return conn
}
