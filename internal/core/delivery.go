package core

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dkazarin/echoline-server/internal/store"
)

// Send runs the delivery pipeline for one message: validate, persist in Sent
// state, then attempt immediate hand-off to the receiver's live connection.
// The returned message carries the final delivered flag for the sender's ack.
// Failures are reported to the caller only, never to any other party.
func (h *Hub) Send(ctx context.Context, senderID, receiverID int64, text string) (*store.Message, *CoreError) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, coreError(ErrCodeInvalidPayload, "message text is empty")
	}
	if utf8.RuneCountInString(text) > h.maxMessageLen {
		return nil, coreError(ErrCodeInvalidPayload, "message text too long")
	}
	if receiverID == senderID {
		return nil, coreError(ErrCodeInvalidTarget, "cannot send a message to yourself")
	}

	text = h.sanitizer.Sanitize(text)
	if strings.TrimSpace(text) == "" {
		return nil, coreError(ErrCodeInvalidPayload, "message text is empty")
	}

	exists, err := h.store.UserExists(ctx, receiverID)
	if err != nil {
		h.log.Error().Err(err).Int64("receiver_id", receiverID).Msg("failed to look up receiver")
		return nil, coreError(ErrCodeStorageFailure, "failed to look up receiver")
	}
	if !exists {
		return nil, coreError(ErrCodeReceiverNotFound, "receiver not found")
	}

	msg := &store.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       text,
	}
	if err := h.store.CreateMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Int64("sender_id", senderID).Msg("failed to persist message")
		return nil, coreError(ErrCodeStorageFailure, "failed to save message")
	}

	// Hand off to the receiver before acking the sender, so the receiver is
	// never notified after the sender already assumed delivered=false. The
	// receiver gets its own copy: its write loop marshals the event
	// concurrently with the delivered-flag update below.
	if receiver, ok := h.registry.Resolve(receiverID); ok {
		notify := *msg
		if receiver.TrySend(&Event{Kind: EventMessageNew, Message: &notify}) {
			now := time.Now().UTC()
			if _, err := h.store.MarkDelivered(ctx, msg.ID, now); err != nil {
				// The push went out but the transition did not persist; the
				// fetch-triggered bulk update will converge it later.
				h.log.Warn().Err(err).Int64("message_id", msg.ID).Msg("failed to persist delivered transition")
			} else {
				msg.Delivered = true
				msg.DeliveredAt = &now
			}
		}
	}

	return msg, nil
}
