package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Live-channel frame types. Inbound and outbound share the same namespace;
// for typing:start/typing:stop and message:read the direction decides the
// payload shape.
const (
	TypeMessageSend      = "message:send"
	TypeMessageNew       = "message:new"
	TypeMessageSent      = "message:sent"
	TypeMessageRead      = "message:read"
	TypeConversationRead = "conversation:read"
	TypeTypingStart      = "typing:start"
	TypeTypingStop       = "typing:stop"
	TypeStatusUpdate     = "status:update"
	TypeUserOnline       = "user:online"
	TypeUserOffline      = "user:offline"
	TypeUserStatus       = "user:status"
	TypeError            = "error"
)

// SendData asks the server to deliver a message to another user.
type SendData struct {
	ReceiverID int64  `json:"receiverId"`
	Text       string `json:"text"`
}

// TypingData addresses a typing indicator to another user.
type TypingData struct {
	ReceiverID int64 `json:"receiverId"`
}

// ReadData marks a single message as read.
type ReadData struct {
	MessageID int64 `json:"messageId"`
	SenderID  int64 `json:"senderId"`
}

// ConversationReadData marks a whole conversation as read.
type ConversationReadData struct {
	SenderID int64 `json:"senderId"`
}

// StatusUpdateData explicitly changes the client's presence status.
type StatusUpdateData struct {
	IsOnline bool `json:"isOnline"`
}

// MessagePayload carries full message content in message:new and
// message:sent events.
type MessagePayload struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"senderId"`
	ReceiverID  int64      `json:"receiverId"`
	Text        string     `json:"text"`
	Delivered   bool       `json:"delivered"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	IsFromMe    bool       `json:"isFromMe"`
}

// TypingEvent notifies the receiver that a peer started or stopped typing.
type TypingEvent struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// MessageReadEvent notifies the sender that one message was read.
type MessageReadEvent struct {
	MessageID int64     `json:"messageId"`
	ReadBy    int64     `json:"readBy"`
	ReadAt    time.Time `json:"readAt"`
}

// ConversationReadEvent notifies the sender that a conversation was read.
type ConversationReadEvent struct {
	ReadBy int64     `json:"readBy"`
	ReadAt time.Time `json:"readAt"`
}

// UserOnlineEvent announces a user coming online.
type UserOnlineEvent struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// UserOfflineEvent announces a user going offline.
type UserOfflineEvent struct {
	UserID   int64     `json:"userId"`
	Username string    `json:"username"`
	LastSeen time.Time `json:"lastSeen"`
}

// UserStatusEvent announces an explicit presence update.
type UserStatusEvent struct {
	UserID   int64     `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// ErrorEvent reports a scoped failure to the originating connection.
type ErrorEvent struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
