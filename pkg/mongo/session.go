package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/dmitrymomot/lmskit/pkg/schema"
)

// codeNamespaceExists is returned by createCollection when the collection is already there.
const codeNamespaceExists = 48

// Session is one live client bound to a single tenant database.
type Session struct {
	client *mongo.Client
	db     *mongo.Database
}

// ClientOptions builds driver options for uri from cfg.
func ClientOptions(cfg Config, uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetRetryReads(cfg.RetryReads).
		SetWriteConcern(writeconcern.Majority())

	if cfg.SocketTimeout > 0 {
		opts.SetTimeout(cfg.SocketTimeout)
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}
	if cfg.HeartbeatInterval > 0 {
		opts.SetHeartbeatInterval(cfg.HeartbeatInterval)
	}
	return opts
}

// Open connects to uri and pings the primary. The ping is the handshake:
// Open returns only once the server answered or the handshake failed.
// It never retries.
func Open(ctx context.Context, cfg Config, uri, database string, hooks Hooks) (*Session, error) {
	mon := newMonitor(hooks)

	client, err := mongo.Connect(ClientOptions(cfg, uri).SetServerMonitor(mon.serverMonitor()))
	if err != nil {
		return nil, errors.Join(ErrFailedToConnectToMongo, err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, errors.Join(ErrPingFailed, err)
	}

	mon.establish()

	return &Session{client: client, db: client.Database(database)}, nil
}

// Database returns the tenant database handle.
func (s *Session) Database() *mongo.Database { return s.db }

// Ping checks the primary is reachable.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Join(ErrPingFailed, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Session) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CollectionNames lists collections of the tenant database.
func (s *Session) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

// Attach makes sure the schema's collection exists with its validator and
// creates its indexes. Attaching an already attached schema is a no-op on the server.
func (s *Session) Attach(ctx context.Context, sc schema.Schema) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: sc.Collection}})
	if err != nil {
		return fmt.Errorf("%w %s: list collections: %w", ErrAttachFailed, sc.Name, err)
	}

	if len(existing) == 0 {
		opts := options.CreateCollection()
		if len(sc.Validator) > 0 {
			opts.SetValidator(sc.Validator)
		}
		if err := s.db.CreateCollection(ctx, sc.Collection, opts); err != nil && !isNamespaceExists(err) {
			return fmt.Errorf("%w %s: create collection: %w", ErrAttachFailed, sc.Name, err)
		}
	}

	if len(sc.Indexes) == 0 {
		return nil
	}

	if _, err := s.db.Collection(sc.Collection).Indexes().CreateMany(ctx, indexModels(sc.Indexes)); err != nil {
		return fmt.Errorf("%w %s: create indexes: %w", ErrAttachFailed, sc.Name, err)
	}
	return nil
}

func indexModels(indexes []schema.Index) []mongo.IndexModel {
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		opts := options.Index()
		if idx.Name != "" {
			opts.SetName(idx.Name)
		}
		if idx.Unique {
			opts.SetUnique(true)
		}
		if idx.Sparse {
			opts.SetSparse(true)
		}
		if idx.ExpireAfter > 0 {
			opts.SetExpireAfterSeconds(int32(idx.ExpireAfter / time.Second))
		}
		models = append(models, mongo.IndexModel{Keys: idx.Keys, Options: opts})
	}
	return models
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists
}
