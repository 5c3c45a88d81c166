// Package presence tracks which users currently hold a live event stream,
// so in-app notifications can be pushed to connected browsers immediately.
package presence

import (
	"sync"
)

// Event is one pushed payload. Data is a rendered JSON string ready to be
// written to the stream.
type Event struct {
	Kind string
	Data string
}

// Connection is one live subscriber stream for a user. Events are dropped
// rather than blocking when the subscriber falls behind.
type Connection struct {
	userID string
	events chan Event
}

// Events returns the receive side of the connection's event channel.
func (c *Connection) Events() <-chan Event {
	return c.events
}

// Registry maps user IDs to their open connections. A user can hold more
// than one connection (multiple tabs); pushes go to all of them.
type Registry struct {
	mu    sync.RWMutex
	conns map[string][]*Connection
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string][]*Connection)}
}

// Connect registers a new connection for userID and returns it.
// PRE: userID is non-empty
// POST: The connection receives subsequent pushes for userID
func (r *Registry) Connect(userID string) *Connection {
	c := &Connection{userID: userID, events: make(chan Event, 16)}
	r.mu.Lock()
	r.conns[userID] = append(r.conns[userID], c)
	r.mu.Unlock()
	return c
}

// Disconnect removes the connection from the registry and closes its
// event channel. Safe to call once per connection.
// POST: The connection receives no further pushes
func (r *Registry) Disconnect(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.conns[c.userID]
	for i, existing := range list {
		if existing == c {
			list = append(list[:i], list[i+1:]...)
			close(c.events)
			break
		}
	}
	if len(list) == 0 {
		delete(r.conns, c.userID)
	} else {
		r.conns[c.userID] = list
	}
}

// IsConnected reports whether userID has at least one open connection.
func (r *Registry) IsConnected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// Push delivers an event to every open connection for userID. Connections
// whose buffer is full are skipped; the in-app record in storage remains
// the source of truth.
// POST: Returns the number of connections that accepted the event
func (r *Registry) Push(userID string, ev Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, c := range r.conns[userID] {
		select {
		case c.events <- ev:
			delivered++
		default:
		}
	}
	return delivered
}
