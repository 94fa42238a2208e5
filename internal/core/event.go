package core

import (
	"time"

	"github.com/dkazarin/echoline-server/internal/store"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessageNew delivers a message to its receiver.
	EventMessageNew EventKind = iota
	// EventMessageSent acknowledges a send to its sender, delivered flag final.
	EventMessageSent
	// EventMessageRead notifies a sender that one message was read.
	EventMessageRead
	// EventConversationRead notifies a sender that a whole conversation was read.
	EventConversationRead
	// EventTypingStart relays a typing indicator to the receiver.
	EventTypingStart
	// EventTypingStop relays the end of a typing indicator.
	EventTypingStop
	// EventUserOnline announces a user coming online.
	EventUserOnline
	// EventUserOffline announces a user going offline.
	EventUserOffline
	// EventUserStatus announces an explicit presence update.
	EventUserStatus
	// EventError notifies the originating client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Message  *store.Message // message events
	UserID   int64          // presence and typing events
	Username string
	IsOnline bool
	LastSeen time.Time
	ReadBy   int64 // read-receipt events
	ReadAt   time.Time
	Error    *CoreError
}
