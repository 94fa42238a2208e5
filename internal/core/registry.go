package core

import "sync"

// Registry owns the bidirectional mapping between user identities and their
// live connections. It is the single shared mutable resource of the core;
// both maps mutate atomically under one lock so no reader can observe one map
// reflecting the new state and the other the old.
type Registry struct {
	mu     sync.RWMutex
	byUser map[int64]*Conn  // user ID -> current connection
	owners map[string]int64 // connection ID -> owning user ID
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[int64]*Conn),
		owners: make(map[string]int64),
	}
}

// Register inserts or overwrites the mapping for the connection's user.
// Last connect wins: a prior connection for the same user is unmapped (but
// not closed) and returned so the caller can observe the replacement.
func (r *Registry) Register(conn *Conn) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.byUser[conn.UserID]
	if prev != nil {
		delete(r.owners, prev.ID)
	}
	r.byUser[conn.UserID] = conn
	r.owners[conn.ID] = conn.UserID
	return prev
}

// Unregister removes the mapping for the connection's user, but only if this
// connection is still the registered one. This guards against a stale
// disconnect racing a newer reconnect that already overwrote the mapping.
// Returns whether the mapping was removed.
func (r *Registry) Unregister(conn *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byUser[conn.UserID]
	if !ok || current.ID != conn.ID {
		return false
	}
	delete(r.byUser, conn.UserID)
	delete(r.owners, conn.ID)
	return true
}

// Resolve looks up the current connection for a user. Absence is a normal
// condition (user offline), not an error.
func (r *Registry) Resolve(userID int64) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byUser[userID]
	return conn, ok
}

// IsOnline reports whether the user currently holds a live connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUser[userID]
	return ok
}

// Snapshot returns a copy of all live connections. Fan-out iterates the copy
// so no per-connection send happens under the registry lock.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, 0, len(r.byUser))
	for _, conn := range r.byUser {
		conns = append(conns, conn)
	}
	return conns
}
