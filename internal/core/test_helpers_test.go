package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkazarin/echoline-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func ensureNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got kind %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeStore is an in-memory store.Store for hub tests.
type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]*store.User
	messages   map[int64]*store.Message
	nextMsgID  int64
	failCreate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*store.User),
		messages: make(map[int64]*store.Message),
	}
}

func (f *fakeStore) addUser(id int64, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &store.User{ID: id, Username: username}
}

func (f *fakeStore) message(id int64) store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.messages[id]
}

func (f *fakeStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.users) + 1)
	u := &store.User{ID: id, Username: username, PasswordHash: passwordHash}
	f.users[id] = u
	return u, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UserExists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeStore) SetPresence(_ context.Context, userID int64, isOnline bool, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.IsOnline = isOnline
	u.LastSeen = lastSeen
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context, excludeUserID int64) ([]*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*store.User, 0, len(f.users))
	for _, u := range f.users {
		if u.ID == excludeUserID {
			continue
		}
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("disk full")
	}
	f.nextMsgID++
	msg.ID = f.nextMsgID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	copied := *msg
	f.messages[msg.ID] = &copied
	return nil
}

func (f *fakeStore) GetMessage(_ context.Context, id int64) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeStore) MarkDelivered(_ context.Context, id int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok || m.Delivered {
		return false, nil
	}
	m.Delivered = true
	m.DeliveredAt = &at
	return true, nil
}

func (f *fakeStore) MarkRead(_ context.Context, id int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok || m.Read {
		return false, nil
	}
	m.Read = true
	m.ReadAt = &at
	return true, nil
}

func (f *fakeStore) BulkMarkDelivered(_ context.Context, senderID, receiverID int64, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	for _, m := range f.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Delivered {
			m.Delivered = true
			m.DeliveredAt = &at
			changed++
		}
	}
	return changed, nil
}

func (f *fakeStore) BulkMarkRead(_ context.Context, senderID, receiverID int64, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	for _, m := range f.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			m.ReadAt = &at
			changed++
		}
	}
	return changed, nil
}

func (f *fakeStore) ListConversation(_ context.Context, userA, userB int64, _ int, _ *int64) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages := make([]*store.Message, 0)
	for _, m := range f.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			copied := *m
			messages = append(messages, &copied)
		}
	}
	return messages, nil
}

func (f *fakeStore) ListConversations(_ context.Context, _ int64) ([]*store.Conversation, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }
