package mongo

import (
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/event"
)

// Hooks receive connection lifecycle notifications.
// They run on driver goroutines and must return quickly.
type Hooks struct {
	OnConnected    func()
	OnError        func(err error)
	OnDisconnected func()
	OnReconnected  func()
}

func (h Hooks) connected() {
	if h.OnConnected != nil {
		h.OnConnected()
	}
}

func (h Hooks) error(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h Hooks) disconnected() {
	if h.OnDisconnected != nil {
		h.OnDisconnected()
	}
}

func (h Hooks) reconnected() {
	if h.OnReconnected != nil {
		h.OnReconnected()
	}
}

// monitor translates driver heartbeat and topology events into Hooks calls.
// Nothing is reported before the handshake is established.
type monitor struct {
	hooks       Hooks
	established atomic.Bool
	healthy     atomic.Bool
	closed      atomic.Bool
}

func newMonitor(h Hooks) *monitor {
	return &monitor{hooks: h}
}

func (m *monitor) establish() {
	m.healthy.Store(true)
	m.established.Store(true)
	m.hooks.connected()
}

func (m *monitor) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			if !m.established.Load() || m.closed.Load() {
				return
			}
			if m.healthy.CompareAndSwap(true, false) {
				m.hooks.error(e.Failure)
			}
		},
		ServerHeartbeatSucceeded: func(*event.ServerHeartbeatSucceededEvent) {
			if !m.established.Load() || m.closed.Load() {
				return
			}
			if m.healthy.CompareAndSwap(false, true) {
				m.hooks.reconnected()
			}
		},
		TopologyClosed: func(*event.TopologyClosedEvent) {
			if m.closed.CompareAndSwap(false, true) && m.established.Load() {
				m.hooks.disconnected()
			}
		},
	}
}
