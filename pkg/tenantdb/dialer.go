package tenantdb

import (
	"context"

	"github.com/dmitrymomot/lmskit/pkg/mongo"
	"github.com/dmitrymomot/lmskit/pkg/schema"
)

// Target is where a tenant connection goes.
type Target struct {
	TenantID string
	URI      string // base endpoint with the database path applied
	Host     string
	Database string
}

// Session is the driver-level session a Conn wraps.
type Session interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Attach(ctx context.Context, s schema.Schema) error
}

// Dialer performs the handshake for one target. It must report lifecycle
// changes through hooks and call hooks.OnConnected once the session is usable.
type Dialer interface {
	Dial(ctx context.Context, target Target, hooks mongo.Hooks) (Session, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, target Target, hooks mongo.Hooks) (Session, error)

func (f DialerFunc) Dial(ctx context.Context, target Target, hooks mongo.Hooks) (Session, error) {
	return f(ctx, target, hooks)
}

// MongoDialer opens tenant sessions with the MongoDB driver.
type MongoDialer struct {
	cfg mongo.Config
}

// NewMongoDialer returns a Dialer applying cfg's handshake parameters to every session.
func NewMongoDialer(cfg mongo.Config) *MongoDialer {
	return &MongoDialer{cfg: cfg}
}

func (d *MongoDialer) Dial(ctx context.Context, target Target, hooks mongo.Hooks) (Session, error) {
	s, err := mongo.Open(ctx, d.cfg, target.URI, target.Database, hooks)
	if err != nil {
		return nil, err
	}
	return s, nil
}
