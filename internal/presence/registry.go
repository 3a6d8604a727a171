// Package presence tracks which users currently hold a live connection.
// The registry is process-local and in-memory; nothing here is persisted.
package presence

import "sync"

// Conn is the live-connection handle the registry stores. It is satisfied
// by chathub clients; the registry never calls into it, it only compares
// handle identity.
type Conn interface {
	GetUserID() string
}

// Registry maps userID -> the single active connection for that user.
// A second login evicts the first user's entry without closing its
// transport; the evicted session's later disconnect must not remove the
// newer entry, hence the handle check in Unregister.
type Registry struct {
	mu     sync.RWMutex
	online map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		online: make(map[string]Conn),
	}
}

// Register installs c as the active connection for userID and returns the
// connection it replaced, if any.
func (r *Registry) Register(userID string, c Conn) (evicted Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted = r.online[userID]
	r.online[userID] = c
	return evicted
}

// Unregister removes userID's entry only when c is the connection that
// currently owns it. A stale disconnect of an evicted session returns
// false and leaves the newer entry intact.
func (r *Registry) Unregister(userID string, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.online[userID]
	if !ok || current != c {
		return false
	}
	delete(r.online, userID)
	return true
}

// Lookup returns the active connection for userID, if online.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.online[userID]
	return c, ok
}

// ListOnline returns the IDs of every currently connected user.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.online))
	for userID := range r.online {
		users = append(users, userID)
	}
	return users
}
