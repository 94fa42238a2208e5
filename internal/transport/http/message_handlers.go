package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dkazarin/echoline-server/internal/core"
	"github.com/dkazarin/echoline-server/internal/store"
)

// MessageHandlers provides HTTP handlers for message endpoints. Sends and
// read receipts go through the hub so the out-of-band path shares the live
// pipeline's validation and notifications.
type MessageHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// SendRequest represents the out-of-band send request body.
type SendRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
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

// ConversationResponse summarizes one dialog for the sidebar.
type ConversationResponse struct {
	PeerID       int64            `json:"peerId"`
	PeerUsername string           `json:"peerUsername"`
	LastMessage  *MessageResponse `json:"lastMessage,omitempty"`
	UnreadCount  int64            `json:"unreadCount"`
}

// ModifiedResponse reports how many records a bulk operation changed.
type ModifiedResponse struct {
	Modified int64 `json:"modified"`
}

func messageResponse(m *store.Message, viewerID int64) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Text:        m.Body,
		Delivered:   m.Delivered,
		DeliveredAt: m.DeliveredAt,
		Read:        m.Read,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
		IsFromMe:    m.SenderID == viewerID,
	}
}

func coreErrorStatus(cerr *core.CoreError) int {
	switch cerr.Code {
	case core.ErrCodeInvalidPayload, core.ErrCodeInvalidTarget, core.ErrCodeBadRequest:
		return http.StatusBadRequest
	case core.ErrCodeReceiverNotFound, core.ErrCodeUserNotFound:
		return http.StatusNotFound
	case core.ErrCodeUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// GetConversation returns the message history with a peer. Fetching the
// conversation is what advances the peer's pending messages to delivered when
// the receiver was offline at send time.
// GET /api/messages/:userID?limit=&before=
func (h *MessageHandlers) GetConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	peerID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || peerID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	var beforeID *int64
	if raw := c.Query("before"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			beforeID = &parsed
		}
	}

	ctx := c.Request.Context()

	// Everything the peer sent us is now observable, so mark it delivered.
	// Runs concurrently with live delivery for the same messages; both
	// transitions are idempotent and monotonic.
	if _, err := h.store.BulkMarkDelivered(ctx, peerID, userID, time.Now().UTC()); err != nil {
		h.log.Warn().Err(err).Int64("peer_id", peerID).Int64("user_id", userID).
			Msg("failed to bulk mark delivered on fetch")
	}

	messages, err := h.store.ListConversation(ctx, userID, peerID, limit, beforeID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, messageResponse(m, userID))
	}
	c.JSON(http.StatusOK, resp)
}

// ListConversations returns summaries of all the caller's dialogs.
// GET /api/conversations
func (h *MessageHandlers) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	conversations, err := h.store.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list conversations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		item := ConversationResponse{
			PeerID:       conv.PeerID,
			PeerUsername: conv.PeerUsername,
			UnreadCount:  conv.UnreadCount,
		}
		if conv.LastMessage != nil {
			last := messageResponse(conv.LastMessage, userID)
			item.LastMessage = &last
		}
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, resp)
}

// Send delivers a message through the same pipeline the live channel uses.
// POST /api/messages
func (h *MessageHandlers) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, cerr := h.hub.Send(c.Request.Context(), userID, req.ReceiverID, req.Text)
	if cerr != nil {
		c.JSON(coreErrorStatus(cerr), ErrorResponse{Error: cerr.Message})
		return
	}
	c.JSON(http.StatusCreated, messageResponse(msg, userID))
}

// MarkRead marks a single message as read. Unlike the live channel, the REST
// boundary enforces that only the designated receiver may do this.
// POST /api/messages/:id/read
func (h *MessageHandlers) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || messageID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
		return
	}

	ctx := c.Request.Context()
	msg, err := h.store.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
			return
		}
		h.log.Error().Err(err).Int64("message_id", messageID).Msg("failed to load message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if msg.ReceiverID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the receiver may mark a message read"})
		return
	}

	if cerr := h.hub.MarkMessageRead(ctx, userID, messageID); cerr != nil {
		c.JSON(coreErrorStatus(cerr), ErrorResponse{Error: cerr.Message})
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkConversationRead bulk-marks all messages from a peer as read.
// POST /api/conversations/:userID/read
func (h *MessageHandlers) MarkConversationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	peerID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || peerID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	modified, cerr := h.hub.MarkConversationRead(c.Request.Context(), userID, peerID)
	if cerr != nil {
		c.JSON(coreErrorStatus(cerr), ErrorResponse{Error: cerr.Message})
		return
	}
	c.JSON(http.StatusOK, ModifiedResponse{Modified: modified})
}
