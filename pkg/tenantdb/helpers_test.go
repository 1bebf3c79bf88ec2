package tenantdb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/lmskit/pkg/mongo"
	"github.com/dmitrymomot/lmskit/pkg/schema"
	"github.com/dmitrymomot/lmskit/pkg/tenantdb"
)

const testBaseURL = "mongodb://db.internal:27017/?replicaSet=rs0"

var errDial = errors.New("connection refused")

type fakeSession struct {
	target tenantdb.Target

	mu         sync.Mutex
	attachErrs map[string]error
	attached   []string
	pingErr    error

	closed atomic.Int32
}

func (s *fakeSession) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *fakeSession) Close(context.Context) error {
	s.closed.Add(1)
	return nil
}

func (s *fakeSession) Attach(_ context.Context, sc schema.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachErrs[sc.Name]; err != nil {
		return err
	}
	s.attached = append(s.attached, sc.Name)
	return nil
}

func (s *fakeSession) failAttach(entity string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attachErrs == nil {
		s.attachErrs = map[string]error{}
	}
	s.attachErrs[entity] = err
}

func (s *fakeSession) setPingErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

func (s *fakeSession) attachedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attached...)
}

func (s *fakeSession) isClosed() bool { return s.closed.Load() > 0 }

// fakeDialer records every handshake and lets tests shape its outcome.
type fakeDialer struct {
	delay    time.Duration
	err      error
	notReady bool

	calls atomic.Int32

	mu       sync.Mutex
	sessions []*fakeSession
	hooks    []mongo.Hooks
}

func (d *fakeDialer) Dial(_ context.Context, target tenantdb.Target, hooks mongo.Hooks) (tenantdb.Session, error) {
	d.calls.Add(1)
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.err != nil {
		hooks.OnError(d.err)
		return nil, d.err
	}

	s := &fakeSession{target: target}
	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	d.hooks = append(d.hooks, hooks)
	d.mu.Unlock()

	if !d.notReady {
		hooks.OnConnected()
	}
	return s, nil
}

func (d *fakeDialer) dialed() int { return int(d.calls.Load()) }

func (d *fakeDialer) session(i int) *fakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.sessions) {
		return nil
	}
	return d.sessions[i]
}

func (d *fakeDialer) sessionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

func (d *fakeDialer) hook(i int) mongo.Hooks {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hooks[i]
}

func newTestFactory(d *fakeDialer, opts ...tenantdb.FactoryOption) *tenantdb.Factory {
	base := []tenantdb.FactoryOption{
		tenantdb.WithDatabases(map[string]string{"ngo": "NgoLms"}),
		tenantdb.WithHandshakeTimeout(time.Second),
	}
	f, err := tenantdb.NewFactory(testBaseURL, d, append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return f
}

func testSchemas() schema.Set {
	return schema.MustNewSet(
		schema.Schema{Name: "user", Collection: "users"},
		schema.Schema{Name: "course", Collection: "courses"},
		schema.Schema{Name: "enrollment", Collection: "enrollments"},
	)
}
