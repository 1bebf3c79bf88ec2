package tenantdb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/schema"
)

// Registrar attaches the application's schema set to connection handles.
type Registrar struct {
	set     schema.Set
	logger  *slog.Logger
	metrics *Metrics
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithRegistrarLogger sets the logger attach failures are reported to.
func WithRegistrarLogger(l *slog.Logger) RegistrarOption {
	return func(r *Registrar) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistrarMetrics counts attach failures per entity.
func WithRegistrarMetrics(m *Metrics) RegistrarOption {
	return func(r *Registrar) { r.metrics = m }
}

// NewRegistrar returns a Registrar for set.
func NewRegistrar(set schema.Set, opts ...RegistrarOption) *Registrar {
	r := &Registrar{set: set, logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("tenantdb.registrar"))
	return r
}

// Ensure attaches every schema not yet registered on conn.
//
// Attachment is best effort per schema: a failure is logged, reported in the
// returned error as a *SchemaAttachError and does not stop the remaining
// schemas. Registered schemas are never attached again, so repeated calls
// only retry the ones that failed before.
func (r *Registrar) Ensure(ctx context.Context, conn *Conn) error {
	if conn == nil || conn.session == nil {
		return ErrConnectionNotReady
	}
	if conn.registeredCount() == r.set.Len() {
		return nil
	}

	conn.attachMu.Lock()
	defer conn.attachMu.Unlock()

	var errs []error
	for _, sc := range r.set.All() {
		if conn.Registered(sc.Name) {
			continue
		}

		if err := conn.session.Attach(ctx, sc); err != nil {
			attachErr := &SchemaAttachError{Entity: sc.Name, TenantID: conn.TenantID(), Err: err}
			r.logger.WarnContext(ctx, "failed to attach schema",
				logger.TenantID(conn.TenantID()),
				logger.Entity(sc.Name),
				logger.Error(err))
			r.metrics.attachFailed(sc.Name)
			errs = append(errs, attachErr)
			continue
		}

		conn.register(sc)
		r.logger.DebugContext(ctx, "schema attached",
			logger.TenantID(conn.TenantID()),
			logger.Entity(sc.Name))
	}

	return errors.Join(errs...)
}

// Schemas returns the set the registrar attaches.
func (r *Registrar) Schemas() schema.Set { return r.set }
