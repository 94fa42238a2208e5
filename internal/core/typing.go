package core

// Typing forwards an ephemeral typing indicator to the receiver's live
// connection. Nothing is persisted; when the receiver is offline the signal
// is silently dropped, with no queuing and no error.
func (h *Hub) Typing(from *Conn, receiverID int64, started bool) {
	receiver, ok := h.registry.Resolve(receiverID)
	if !ok {
		return
	}

	kind := EventTypingStop
	if started {
		kind = EventTypingStart
	}
	receiver.TrySend(&Event{
		Kind:     kind,
		UserID:   from.UserID,
		Username: from.Username,
	})
}
