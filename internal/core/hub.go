package core

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/dkazarin/echoline-server/internal/store"
)

// Hub coordinates the live-messaging core: it owns the connection registry
// and routes presence changes, message delivery, read receipts and typing
// indicators between connections. Durable state goes through the store.
type Hub struct {
	registry      *Registry
	store         store.Store
	log           *zerolog.Logger
	sanitizer     *bluemonday.Policy
	maxMessageLen int
}

// NewHub creates a hub backed by the given store.
func NewHub(st store.Store, logger *zerolog.Logger, maxMessageLen int) *Hub {
	if maxMessageLen <= 0 {
		maxMessageLen = 4096
	}
	return &Hub{
		registry:      NewRegistry(),
		store:         st,
		log:           logger,
		sanitizer:     bluemonday.StrictPolicy(),
		maxMessageLen: maxMessageLen,
	}
}

// Registry exposes the connection registry for read-side collaborators.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Handle dispatches one decoded command for a connection. It runs on the
// connection's own goroutine, so commands from a single connection are
// processed in arrival order. Failures are pushed back to the originating
// connection as an error event and never tear the connection down.
func (h *Hub) Handle(ctx context.Context, conn *Conn, cmd *Command) {
	switch cmd.Kind {
	case CommandSendMessage:
		msg, cerr := h.Send(ctx, conn.UserID, cmd.ReceiverID, cmd.Text)
		if cerr != nil {
			conn.TrySend(&Event{Kind: EventError, Error: cerr})
			return
		}
		// The sender just issued the request, so its connection is present;
		// the ack carries the final delivered flag.
		conn.TrySend(&Event{Kind: EventMessageSent, Message: msg})

	case CommandTypingStart:
		h.Typing(conn, cmd.ReceiverID, true)

	case CommandTypingStop:
		h.Typing(conn, cmd.ReceiverID, false)

	case CommandMarkMessageRead:
		if cerr := h.MarkMessageRead(ctx, conn.UserID, cmd.MessageID); cerr != nil {
			conn.TrySend(&Event{Kind: EventError, Error: cerr})
		}

	case CommandMarkConversationRead:
		if _, cerr := h.MarkConversationRead(ctx, conn.UserID, cmd.SenderID); cerr != nil {
			conn.TrySend(&Event{Kind: EventError, Error: cerr})
		}

	case CommandStatusUpdate:
		if cerr := h.UpdateStatus(ctx, conn.UserID, cmd.IsOnline); cerr != nil {
			conn.TrySend(&Event{Kind: EventError, Error: cerr})
		}

	default:
		conn.TrySend(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

// broadcast fans an event out to every live connection except the origin.
// It iterates a snapshot so no send happens under the registry lock; delivery
// to each peer is best-effort.
func (h *Hub) broadcast(except *Conn, ev *Event) {
	for _, c := range h.registry.Snapshot() {
		if except != nil && c.ID == except.ID {
			continue
		}
		if !c.TrySend(ev) {
			h.log.Debug().Str("conn_id", c.ID).Int64("user_id", c.UserID).Msg("dropped broadcast for slow consumer")
		}
	}
}
