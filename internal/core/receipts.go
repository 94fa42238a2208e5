package core

import (
	"context"
	"errors"
	"time"

	"github.com/dkazarin/echoline-server/internal/store"
)

// MarkMessageRead transitions a single message to read and notifies the
// original sender if reachable. Marking an already-read message is a no-op.
// The live-channel path does not reject a caller that is not the designated
// receiver; receiver-only authorization is enforced at the REST boundary.
func (h *Hub) MarkMessageRead(ctx context.Context, readerID, messageID int64) *CoreError {
	msg, err := h.store.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Best-effort transport; an unknown ID is dropped, not rejected.
			h.log.Debug().Int64("message_id", messageID).Msg("read receipt for unknown message")
			return nil
		}
		h.log.Error().Err(err).Int64("message_id", messageID).Msg("failed to load message for read receipt")
		return coreError(ErrCodeStorageFailure, "failed to mark message read")
	}

	now := time.Now().UTC()
	changed, err := h.store.MarkRead(ctx, messageID, now)
	if err != nil {
		h.log.Error().Err(err).Int64("message_id", messageID).Msg("failed to persist read transition")
		return coreError(ErrCodeStorageFailure, "failed to mark message read")
	}
	if !changed {
		return nil
	}

	if sender, ok := h.registry.Resolve(msg.SenderID); ok {
		sender.TrySend(&Event{
			Kind:    EventMessageRead,
			Message: msg,
			ReadBy:  readerID,
			ReadAt:  now,
		})
	}
	return nil
}

// MarkConversationRead bulk-transitions all unread messages from senderID
// addressed to readerID, then notifies the sender if reachable. Returns the
// number of messages changed; a repeat invocation reports zero.
func (h *Hub) MarkConversationRead(ctx context.Context, readerID, senderID int64) (int64, *CoreError) {
	now := time.Now().UTC()
	changed, err := h.store.BulkMarkRead(ctx, senderID, readerID, now)
	if err != nil {
		h.log.Error().Err(err).Int64("sender_id", senderID).Int64("reader_id", readerID).
			Msg("failed to bulk mark conversation read")
		return 0, coreError(ErrCodeStorageFailure, "failed to mark conversation read")
	}

	if sender, ok := h.registry.Resolve(senderID); ok {
		sender.TrySend(&Event{
			Kind:   EventConversationRead,
			ReadBy: readerID,
			ReadAt: now,
		})
	}
	return changed, nil
}
