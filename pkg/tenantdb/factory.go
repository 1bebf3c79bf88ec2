package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/lmskit/pkg/async"
	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/tenant"
)

const (
	// DefaultHandshakeTimeout is the hard deadline raced against the handshake.
	DefaultHandshakeTimeout = 30 * time.Second

	// DefaultFallbackSuffix derives database names for tenants missing from the table.
	DefaultFallbackSuffix = "Db"

	// maxDatabaseNameLength is the MongoDB limit for database names.
	maxDatabaseNameLength = 63

	discardTimeout = 10 * time.Second
)

// Factory opens new connection handles. It never retries and never caches;
// caching is the Registry's job.
type Factory struct {
	base             *url.URL
	dialer           Dialer
	databases        map[string]string
	fallbackSuffix   string
	strict           bool
	handshakeTimeout time.Duration
	logger           *slog.Logger
	metrics          *Metrics
	now              func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithDatabases sets the static tenant to database name table.
func WithDatabases(databases map[string]string) FactoryOption {
	return func(f *Factory) {
		f.databases = maps.Clone(databases)
	}
}

// WithHandshakeTimeout sets the hard handshake deadline.
// Non-positive values are ignored.
func WithHandshakeTimeout(d time.Duration) FactoryOption {
	return func(f *Factory) {
		if d > 0 {
			f.handshakeTimeout = d
		}
	}
}

// WithFallbackSuffix sets the suffix appended to unmapped tenant ids.
func WithFallbackSuffix(suffix string) FactoryOption {
	return func(f *Factory) {
		if suffix != "" {
			f.fallbackSuffix = suffix
		}
	}
}

// WithStrict rejects tenants missing from the table with ErrUnknownTenant
// instead of deriving a database name for them.
func WithStrict(strict bool) FactoryOption {
	return func(f *Factory) { f.strict = strict }
}

// WithFactoryLogger sets the logger for lifecycle diagnostics.
func WithFactoryLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithFactoryMetrics records handshake outcomes and durations.
func WithFactoryMetrics(m *Metrics) FactoryOption {
	return func(f *Factory) { f.metrics = m }
}

// NewFactory returns a Factory connecting to the shared endpoint baseURL.
func NewFactory(baseURL string, dialer Dialer, opts ...FactoryOption) (*Factory, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q has no scheme or host", ErrInvalidBaseURL, baseURL)
	}
	if dialer == nil {
		return nil, errors.New("tenantdb: nil dialer")
	}

	f := &Factory{
		base:             base,
		dialer:           dialer,
		databases:        map[string]string{},
		fallbackSuffix:   DefaultFallbackSuffix,
		handshakeTimeout: DefaultHandshakeTimeout,
		logger:           logger.Discard(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// DatabaseName maps a tenant id to its logical database: the table entry
// when present, otherwise <tenantID><suffix>.
func (f *Factory) DatabaseName(tenantID string) (string, error) {
	if name, ok := f.databases[tenantID]; ok && name != "" {
		return name, nil
	}
	if f.strict {
		return "", fmt.Errorf("%w: %s", ErrUnknownTenant, tenantID)
	}
	return tenantID + f.fallbackSuffix, nil
}

// Target builds the connection target for tenantID from the base endpoint.
func (f *Factory) Target(tenantID string) (Target, error) {
	if tenantID == "" {
		return Target{}, ErrMissingTenant
	}
	if !tenant.ValidID(tenantID) {
		return Target{}, fmt.Errorf("%w: %q", tenant.ErrInvalidIdentifier, tenantID)
	}

	db, err := f.DatabaseName(tenantID)
	if err != nil {
		return Target{}, err
	}
	if len(db) > maxDatabaseNameLength || strings.ContainsAny(db, `/\. "$`) {
		return Target{}, fmt.Errorf("%w: database name %q", tenant.ErrInvalidIdentifier, db)
	}

	u := *f.base
	u.Path = "/" + db
	u.RawPath = ""

	return Target{
		TenantID: tenantID,
		URI:      u.String(),
		Host:     u.Host,
		Database: db,
	}, nil
}

// Open performs a new handshake for tenantID.
//
// The handshake is raced against the factory's hard deadline. If the deadline
// fires first Open returns ErrConnectionTimeout without waiting any further;
// a session that still arrives later is closed in the background. A handshake
// that finishes with the handle in any state other than connected yields
// ErrConnectionNotReady. Transport failures yield ErrConnection.
func (f *Factory) Open(ctx context.Context, tenantID string) (*Conn, error) {
	target, err := f.Target(tenantID)
	if err != nil {
		return nil, err
	}

	conn := newConn(target, f.now(), f.logger)
	start := time.Now()

	handshake := async.Async(ctx, target, func(ctx context.Context, t Target) (Session, error) {
		return f.dialer.Dial(ctx, t, conn.hooks())
	})

	timer := time.NewTimer(f.handshakeTimeout)
	defer timer.Stop()

	select {
	case <-handshake.Done():
	case <-timer.C:
		conn.setState(StateError)
		f.discard(handshake, conn)
		f.metrics.handshake(outcomeTimeout, time.Since(start))
		conn.logger.WarnContext(ctx, "tenant connection handshake timed out",
			logger.Duration(f.handshakeTimeout))
		return nil, fmt.Errorf("%w: tenant %s after %s", ErrConnectionTimeout, tenantID, f.handshakeTimeout)
	case <-ctx.Done():
		conn.setState(StateError)
		f.discard(handshake, conn)
		f.metrics.handshake(outcomeError, time.Since(start))
		return nil, errors.Join(ErrConnection, ctx.Err())
	}

	session, err := handshake.Await()
	if err != nil {
		conn.setState(StateError)
		f.metrics.handshake(outcomeError, time.Since(start))
		conn.logger.WarnContext(ctx, "tenant connection handshake failed", logger.Error(err))
		return nil, errors.Join(ErrConnection, err)
	}
	conn.session = session

	if st := conn.State(); st != StateConnected {
		f.metrics.handshake(outcomeNotReady, time.Since(start))
		go closeQuietly(conn, f.logger)
		return nil, fmt.Errorf("%w: tenant %s is %s", ErrConnectionNotReady, tenantID, st)
	}

	f.metrics.handshake(outcomeOK, time.Since(start))
	conn.logger.InfoContext(ctx, "tenant connection opened",
		logger.Duration(time.Since(start)),
		slog.String("host", target.Host))

	return conn, nil
}

// discard closes a session whose handshake lost the race, once it arrives.
func (f *Factory) discard(handshake *async.Future[Session], conn *Conn) {
	handshake.Then(func(s Session, err error) {
		if err != nil || s == nil {
			return
		}
		conn.session = s
		closeQuietly(conn, f.logger)
		conn.logger.Info("discarded late tenant connection")
	})
}

func closeQuietly(conn *Conn, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), discardTimeout)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		log.Warn("failed to close tenant connection",
			logger.TenantID(conn.TenantID()),
			logger.ConnectionID(conn.ID().String()),
			logger.Error(err))
	}
}
