package core

import (
	"context"
	"time"
)

// Connect registers the connection and announces the user as online to every
// other live connection. A prior connection for the same user is superseded
// (last connect wins); its physical channel is left to its own handler.
func (h *Hub) Connect(ctx context.Context, conn *Conn) {
	if prev := h.registry.Register(conn); prev != nil {
		h.log.Info().Int64("user_id", conn.UserID).Str("old_conn", prev.ID).Str("new_conn", conn.ID).
			Msg("connection replaced")
	}

	now := time.Now().UTC()
	if err := h.store.SetPresence(ctx, conn.UserID, true, now); err != nil {
		h.log.Warn().Err(err).Int64("user_id", conn.UserID).Msg("failed to persist online presence")
	}

	h.broadcast(conn, &Event{
		Kind:     EventUserOnline,
		UserID:   conn.UserID,
		Username: conn.Username,
	})
}

// Disconnect removes the connection's registration and announces the user as
// offline. When a newer connection already replaced this one, the mapping is
// left alone and nothing is broadcast, so a stale disconnect never produces a
// spurious offline announcement.
func (h *Hub) Disconnect(ctx context.Context, conn *Conn) {
	if !h.registry.Unregister(conn) {
		return
	}

	now := time.Now().UTC()
	if err := h.store.SetPresence(ctx, conn.UserID, false, now); err != nil {
		h.log.Warn().Err(err).Int64("user_id", conn.UserID).Msg("failed to persist offline presence")
	}

	h.broadcast(conn, &Event{
		Kind:     EventUserOffline,
		UserID:   conn.UserID,
		Username: conn.Username,
		LastSeen: now,
	})
}

// UpdateStatus persists an explicit presence change and announces it to all
// other connections. Works for both the live channel and the REST path, where
// the user may not hold a live connection at all.
func (h *Hub) UpdateStatus(ctx context.Context, userID int64, isOnline bool) *CoreError {
	now := time.Now().UTC()
	if err := h.store.SetPresence(ctx, userID, isOnline, now); err != nil {
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to persist status update")
		return coreError(ErrCodeStorageFailure, "failed to update status")
	}

	self, _ := h.registry.Resolve(userID)
	h.broadcast(self, &Event{
		Kind:     EventUserStatus,
		UserID:   userID,
		IsOnline: isOnline,
		LastSeen: now,
	})
	return nil
}
