package core

import (
	"sync"
	"testing"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	conn := NewConn(1, "alice")

	if prev := r.Register(conn); prev != nil {
		t.Fatalf("expected no previous connection, got %+v", prev)
	}

	got, ok := r.Resolve(1)
	if !ok || got.ID != conn.ID {
		t.Fatalf("expected registered connection, got %+v ok=%v", got, ok)
	}
	if !r.IsOnline(1) {
		t.Fatalf("expected user online")
	}
	if r.IsOnline(2) {
		t.Fatalf("expected unknown user offline")
	}
}

func TestRegistryLastConnectWins(t *testing.T) {
	r := NewRegistry()
	first := NewConn(1, "alice")
	second := NewConn(1, "alice")

	r.Register(first)
	prev := r.Register(second)
	if prev == nil || prev.ID != first.ID {
		t.Fatalf("expected first connection returned as superseded, got %+v", prev)
	}

	got, _ := r.Resolve(1)
	if got.ID != second.ID {
		t.Fatalf("expected second connection to own the mapping")
	}
}

func TestRegistryUnregisterIgnoresStaleConnection(t *testing.T) {
	r := NewRegistry()
	first := NewConn(1, "alice")
	second := NewConn(1, "alice")

	r.Register(first)
	r.Register(second)

	if r.Unregister(first) {
		t.Fatalf("expected stale unregister to be ignored")
	}
	if !r.IsOnline(1) {
		t.Fatalf("expected user still online after stale unregister")
	}

	if !r.Unregister(second) {
		t.Fatalf("expected current connection to unregister")
	}
	if r.IsOnline(1) {
		t.Fatalf("expected user offline after unregister")
	}
	if r.Unregister(second) {
		t.Fatalf("expected repeated unregister to report no removal")
	}
}

func TestRegistrySnapshotIsDetached(t *testing.T) {
	r := NewRegistry()
	r.Register(NewConn(1, "alice"))
	r.Register(NewConn(2, "bob"))

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 connections in snapshot, got %d", len(snap))
	}

	// Mutations after the snapshot do not affect it.
	r.Register(NewConn(3, "carol"))
	if len(snap) != 2 {
		t.Fatalf("snapshot grew after registration")
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for userID := int64(1); userID <= 8; userID++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for range 100 {
				conn := NewConn(id, "user")
				r.Register(conn)
				r.Resolve(id)
				r.Snapshot()
				r.Unregister(conn)
			}
		}(userID)
	}
	wg.Wait()

	if got := len(r.Snapshot()); got != 0 {
		t.Fatalf("expected empty registry after churn, got %d connections", got)
	}
}
