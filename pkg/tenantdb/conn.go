package tenantdb

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/mongo"
	"github.com/dmitrymomot/lmskit/pkg/schema"
)

// Conn is a live tenant database handle. It is created by a Factory, owned
// by a Registry and shared read-only by every request of its tenant.
type Conn struct {
	id        uuid.UUID
	target    Target
	createdAt time.Time
	logger    *slog.Logger
	state     atomic.Int32
	session   Session

	// attachMu serializes schema attachment across concurrent first users.
	attachMu sync.Mutex

	regMu      sync.RWMutex
	registered map[string]schema.Schema
}

func newConn(target Target, createdAt time.Time, log *slog.Logger) *Conn {
	c := &Conn{
		id:         uuid.New(),
		target:     target,
		createdAt:  createdAt,
		registered: make(map[string]schema.Schema),
	}
	c.logger = log.With(
		logger.Component("tenantdb"),
		logger.TenantID(target.TenantID),
		logger.Database(target.Database),
		logger.ConnectionID(c.id.String()),
	)
	c.state.Store(int32(StateConnecting))
	return c
}

// ID uniquely identifies the handle for diagnostics.
func (c *Conn) ID() uuid.UUID { return c.id }

// TenantID returns the tenant the handle belongs to.
func (c *Conn) TenantID() string { return c.target.TenantID }

// Host returns the host identity of the endpoint.
func (c *Conn) Host() string { return c.target.Host }

// DatabaseName returns the tenant's logical database.
func (c *Conn) DatabaseName() string { return c.target.Database }

// CreatedAt returns when the handshake started.
func (c *Conn) CreatedAt() time.Time { return c.createdAt }

// State returns the current readiness state.
func (c *Conn) State() State { return State(c.state.Load()) }

// Ready reports whether the handle may be used for data operations.
func (c *Conn) Ready() bool { return c.State() == StateConnected }

func (c *Conn) setState(s State) State {
	return State(c.state.Swap(int32(s)))
}

// Database returns the driver database, or nil when the session is not backed by MongoDB.
func (c *Conn) Database() *mongodriver.Database {
	if db, ok := c.session.(interface{ Database() *mongodriver.Database }); ok {
		return db.Database()
	}
	return nil
}

// Collection returns the collection of an attached entity type.
// It fails with ErrEntityUnavailable when the entity was never attached or
// the handle is not connected.
func (c *Conn) Collection(entity string) (*mongodriver.Collection, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("%w: %s on %s connection", ErrConnectionNotReady, entity, c.State())
	}

	c.regMu.RLock()
	sc, ok := c.registered[entity]
	c.regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityUnavailable, entity)
	}

	db := c.Database()
	if db == nil {
		return nil, fmt.Errorf("%w: %s has no database backing", ErrEntityUnavailable, entity)
	}
	return db.Collection(sc.Collection), nil
}

// Registered reports whether entity has been attached to this handle.
func (c *Conn) Registered(entity string) bool {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	_, ok := c.registered[entity]
	return ok
}

// RegisteredNames returns the attached entity names, sorted.
func (c *Conn) RegisteredNames() []string {
	c.regMu.RLock()
	names := make([]string, 0, len(c.registered))
	for name := range c.registered {
		names = append(names, name)
	}
	c.regMu.RUnlock()

	slices.Sort(names)
	return names
}

func (c *Conn) register(sc schema.Schema) {
	c.regMu.Lock()
	c.registered[sc.Name] = sc
	c.regMu.Unlock()
}

func (c *Conn) registeredCount() int {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	return len(c.registered)
}

// Ping checks the handle against the server.
func (c *Conn) Ping(ctx context.Context) error {
	if c.session == nil {
		return ErrConnectionNotReady
	}
	return c.session.Ping(ctx)
}

// Close disconnects the session and marks the handle disconnected.
func (c *Conn) Close(ctx context.Context) error {
	c.setState(StateDisconnected)
	if c.session == nil {
		return nil
	}
	return c.session.Close(ctx)
}

// hooks wires lifecycle notifications into the readiness state. They only
// swap an atomic and log, so the driver is never blocked.
func (c *Conn) hooks() mongo.Hooks {
	return mongo.Hooks{
		OnConnected: func() {
			c.setState(StateConnected)
			c.logger.Debug("tenant connection established")
		},
		OnError: func(err error) {
			c.setState(StateError)
			c.logger.Warn("tenant connection error", logger.Error(err))
		},
		OnDisconnected: func() {
			c.setState(StateDisconnected)
			c.logger.Info("tenant connection disconnected")
		},
		OnReconnected: func() {
			c.setState(StateConnected)
			c.logger.Info("tenant connection reconnected")
		},
	}
}
