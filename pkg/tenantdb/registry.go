package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/lmskit/pkg/logger"
)

// DefaultStaleGrace is how long a replaced handle that may still recover stays
// open for requests already holding it.
const DefaultStaleGrace = 30 * time.Second

// Opener creates connection handles. *Factory implements it.
type Opener interface {
	Open(ctx context.Context, tenantID string) (*Conn, error)
}

// Record is a cache entry of the Registry.
type Record struct {
	TenantID  string
	Conn      *Conn
	CreatedAt time.Time
}

// Registry is the single source of truth for tenant id to connection handle.
// Creation is shared per tenant id: concurrent first requests for one tenant
// wait on the same handshake instead of racing their own.
type Registry struct {
	opener     Opener
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time
	staleGrace time.Duration

	mu       sync.RWMutex
	records  map[string]Record
	retiring map[*Conn]*time.Timer
	closed   bool

	flights singleflight.Group
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryMetrics records cache lookups and open connections.
func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithStaleGrace sets how long a replaced handle in the error state is kept
// open before it is closed. Disconnected handles are always closed at once.
// Negative values are ignored.
func WithStaleGrace(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d >= 0 {
			r.staleGrace = d
		}
	}
}

// NewRegistry returns an empty registry creating handles with opener.
func NewRegistry(opener Opener, opts ...RegistryOption) *Registry {
	r := &Registry{
		opener:     opener,
		logger:     logger.Discard(),
		now:        time.Now,
		staleGrace: DefaultStaleGrace,
		records:    make(map[string]Record),
		retiring:   make(map[*Conn]*time.Timer),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("tenantdb.registry"))
	return r
}

// Get returns the connected handle of tenantID, creating it on a miss.
//
// A cached connected handle is returned without I/O. Otherwise one creation
// per tenant id is in flight at a time and every concurrent caller receives
// its result. The creation is not bound to the first caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (r *Registry) Get(ctx context.Context, tenantID string) (*Conn, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}

	conn, closed := r.cached(tenantID)
	if closed {
		return nil, ErrRegistryClosed
	}
	if conn != nil {
		r.metrics.lookup(lookupHit)
		return conn, nil
	}
	r.metrics.lookup(lookupMiss)

	ch := r.flights.DoChan(tenantID, func() (any, error) {
		return r.create(context.WithoutCancel(ctx), tenantID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Conn), nil
	case <-ctx.Done():
		return nil, errors.Join(ErrConnection, ctx.Err())
	}
}

// cached returns the connected handle for tenantID, or nil.
func (r *Registry) cached(tenantID string) (conn *Conn, closed bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, true
	}
	rec, ok := r.records[tenantID]
	if !ok || !rec.Conn.Ready() {
		return nil, false
	}
	return rec.Conn, false
}

func (r *Registry) create(ctx context.Context, tenantID string) (*Conn, error) {
	// A flight that just finished may already have stored a handle.
	if conn, closed := r.cached(tenantID); closed {
		return nil, ErrRegistryClosed
	} else if conn != nil {
		return conn, nil
	}

	conn, err := r.opener.Open(ctx, tenantID)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to open tenant connection",
			logger.TenantID(tenantID), logger.Error(err))
		r.drop(tenantID, nil)
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		go closeQuietly(conn, r.logger)
		return nil, ErrRegistryClosed
	}
	stale, hadStale := r.records[tenantID]
	r.records[tenantID] = Record{TenantID: tenantID, Conn: conn, CreatedAt: r.now()}
	open := len(r.records)
	r.mu.Unlock()

	r.metrics.setOpen(open)

	if hadStale && stale.Conn != conn {
		r.logger.InfoContext(ctx, "replacing stale tenant connection",
			logger.TenantID(tenantID),
			slog.String("state", stale.Conn.State().String()))
		r.retire(stale.Conn)
	}

	return conn, nil
}

// retire closes a replaced handle. A handle in the error state may still be
// in use by in-flight requests and may recover, so it is closed after the
// stale grace period instead of right away.
func (r *Registry) retire(conn *Conn) {
	if conn.State() == StateDisconnected || r.staleGrace == 0 {
		go closeQuietly(conn, r.logger)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		go closeQuietly(conn, r.logger)
		return
	}
	r.retiring[conn] = time.AfterFunc(r.staleGrace, func() {
		r.mu.Lock()
		delete(r.retiring, conn)
		r.mu.Unlock()
		closeQuietly(conn, r.logger)
	})
}

// drop removes the record of tenantID unless it holds keep, closing the removed handle.
func (r *Registry) drop(tenantID string, keep *Conn) {
	r.mu.Lock()
	rec, ok := r.records[tenantID]
	if ok && rec.Conn != keep {
		delete(r.records, tenantID)
	}
	open := len(r.records)
	r.mu.Unlock()

	if ok && rec.Conn != keep {
		r.metrics.setOpen(open)
		go closeQuietly(rec.Conn, r.logger)
	}
}

// Lookup returns the cached record of tenantID, whatever its readiness.
func (r *Registry) Lookup(tenantID string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[tenantID]
	return rec, ok
}

// Len returns the number of cached records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Tenants returns the cached tenant ids, sorted.
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Evict removes tenantID from the cache and closes its handle.
// The next Get for the tenant performs a new handshake.
func (r *Registry) Evict(ctx context.Context, tenantID string) error {
	r.mu.Lock()
	rec, ok := r.records[tenantID]
	delete(r.records, tenantID)
	open := len(r.records)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	r.metrics.setOpen(open)
	r.logger.InfoContext(ctx, "evicted tenant connection", logger.TenantID(tenantID))
	return rec.Conn.Close(ctx)
}

// CloseAll closes every cached handle and clears the cache. It is meant for
// process shutdown: later Get calls fail with ErrRegistryClosed.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	records := r.records
	r.records = make(map[string]Record)
	var retiring []*Conn
	for conn, timer := range r.retiring {
		if timer.Stop() {
			retiring = append(retiring, conn)
		}
	}
	r.retiring = make(map[*Conn]*time.Timer)
	r.mu.Unlock()

	r.metrics.setOpen(0)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for id, rec := range records {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rec.Conn.Close(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("close tenant %s: %w", id, err))
				mu.Unlock()
			}
		}()
	}
	for _, conn := range retiring {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := conn.Close(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("close retired tenant %s: %w", conn.TenantID(), err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	r.logger.InfoContext(ctx, "closed tenant connections", slog.Int("count", len(records)))
	return errors.Join(errs...)
}

// Healthcheck returns a readiness probe pinging every cached connected handle.
func (r *Registry) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		r.mu.RLock()
		conns := make([]*Conn, 0, len(r.records))
		for _, rec := range r.records {
			if rec.Conn.Ready() {
				conns = append(conns, rec.Conn)
			}
		}
		r.mu.RUnlock()

		var errs []error
		for _, c := range conns {
			if err := c.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tenant %s: %w", c.TenantID(), err))
			}
		}
		if len(errs) > 0 {
			return errors.Join(ErrHealthcheckFailed, errors.Join(errs...))
		}
		return nil
	}
}
