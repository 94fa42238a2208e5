package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a user in the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsOnline     bool
	LastSeen     time.Time
	CreatedAt    time.Time
}

// Message represents a persisted direct message between two users.
// Delivered and Read are monotonic flags: once set they never regress,
// regardless of which update path (live push or fetch-triggered bulk
// transition) sets them.
type Message struct {
	ID          int64
	SenderID    int64
	ReceiverID  int64
	Body        string
	Delivered   bool
	DeliveredAt *time.Time
	Read        bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// Conversation summarizes the dialog between the requesting user and a peer.
type Conversation struct {
	PeerID       int64
	PeerUsername string
	LastMessage  *Message
	UnreadCount  int64
}

// UserDirectory handles user persistence and presence state.
type UserDirectory interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UserExists reports whether a user with the given ID exists.
	UserExists(ctx context.Context, id int64) (bool, error)

	// SetPresence updates a user's online flag and last-seen timestamp.
	SetPresence(ctx context.Context, userID int64, isOnline bool, lastSeen time.Time) error

	// ListUsers lists all users except the given one, with presence state.
	ListUsers(ctx context.Context, excludeUserID int64) ([]*User, error)
}

// MessageStore handles message persistence and delivery-state transitions.
type MessageStore interface {
	// CreateMessage persists a new message and fills in its ID and CreatedAt.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// MarkDelivered sets the delivered flag and timestamp on a single message.
	// Idempotent: returns false when the message was already delivered.
	MarkDelivered(ctx context.Context, id int64, at time.Time) (bool, error)

	// MarkRead sets the read flag and timestamp on a single message.
	// Idempotent: returns false when the message was already read.
	MarkRead(ctx context.Context, id int64, at time.Time) (bool, error)

	// BulkMarkDelivered marks all undelivered messages from sender to receiver
	// as delivered and returns the number of rows changed.
	BulkMarkDelivered(ctx context.Context, senderID, receiverID int64, at time.Time) (int64, error)

	// BulkMarkRead marks all unread messages from sender to receiver as read
	// and returns the number of rows changed.
	BulkMarkRead(ctx context.Context, senderID, receiverID int64, at time.Time) (int64, error)

	// ListConversation retrieves messages between two users, newest last.
	// If beforeID is provided, returns messages older than that ID.
	ListConversation(ctx context.Context, userA, userB int64, limit int, beforeID *int64) ([]*Message, error)

	// ListConversations summarizes all dialogs the user participates in.
	ListConversations(ctx context.Context, userID int64) ([]*Conversation, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserDirectory
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
