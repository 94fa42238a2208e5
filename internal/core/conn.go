package core

import "github.com/google/uuid"

// Conn is one live connection as seen by the core layer. A user may open
// several physical channels over time but the registry maps each user to at
// most one Conn at any instant.
type Conn struct {
	ID       string
	UserID   int64
	Username string
	Events   chan *Event
}

// NewConn constructs a connection with a fresh ID and initialized event channel.
func NewConn(userID int64, username string) *Conn {
	return &Conn{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		Events:   make(chan *Event, 16),
	}
}

// TrySend queues an event without blocking. Returns false when the
// connection's event buffer is full (slow consumer); the event is dropped.
func (c *Conn) TrySend(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
