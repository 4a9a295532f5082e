package unread

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/chat"
	"github.com/sogoba/jokko/internal/identity"
	"github.com/sogoba/jokko/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecompute(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	a := New(db, identity.Static{ID: "client#1"}, b, nil)

	ch, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	// Seed a conversation with one incoming message through the core.
	svc := chat.NewService(db, identity.Static{ID: "prov#9"}, nil, nil)
	conv, err := svc.GetOrCreateConversation("client#1", store.CounterpartInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendText(conv.ID, "salut"); err != nil {
		t.Fatal(err)
	}

	count, err := a.Recompute()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(bus.UnreadChange)
		if !ok || change.Count != 1 || change.UserID != "client#1" {
			t.Errorf("payload = %+v, want {client#1 1}", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for unread.changed event")
	}
}

func TestRecomputeNoCurrentUser(t *testing.T) {
	db := testDB(t)
	a := New(db, identity.Static{}, bus.New(), nil)

	if _, err := a.Recompute(); !errors.Is(err, identity.ErrNoCurrentUser) {
		t.Errorf("error = %v, want ErrNoCurrentUser", err)
	}
}

// TestBusSubscription verifies the aggregator recomputes on every chat
// mutation published on the bus.
func TestBusSubscription(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	a := New(db, identity.Static{ID: "client#1"}, b, nil)

	a.Start(context.Background())
	defer a.Stop()

	ch, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	// A mutation through the core publishes chat.message_sent, which the
	// aggregator answers with unread.changed.
	svc := chat.NewService(db, identity.Static{ID: "prov#9"}, b, nil)
	conv, err := svc.GetOrCreateConversation("client#1", store.CounterpartInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendText(conv.ID, "salut"); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			change, ok := evt.Payload.(bus.UnreadChange)
			if !ok {
				t.Fatalf("payload = %+v, want UnreadChange", evt.Payload)
			}
			if change.Count == 1 {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for unread.changed with count 1")
		}
	}
}
