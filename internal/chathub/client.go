package chathub

import "socialgo/backend/internal/models"

// Client is the interface for one live connection. It abstracts the
// underlying transport so the hub can manage sessions uniformly and tests
// can drive the hub without sockets.
type Client interface {
	// GetUserID returns the authenticated user bound to this session.
	GetUserID() string
	// GetUsername returns the handle bound at authentication time.
	GetUsername() string

	// Send queues an event for the connection's write pump. It never
	// blocks; it reports false when the session is closed or its buffer
	// is full, in which case the event is dropped.
	Send(ev models.ServerEvent) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close releases the session's resources and stops its pumps.
	Close()
}
