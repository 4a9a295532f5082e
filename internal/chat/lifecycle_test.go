package chat

import (
	"errors"
	"testing"

	"github.com/sogoba/jokko/internal/store"
)

func TestArchiveConversation(t *testing.T) {
	svc, db, _ := testService(t, "client#1")

	conv, err := svc.GetOrCreateConversation("prov#9", store.CounterpartInfo{})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ArchiveConversation(conv.ID); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetConversation(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != store.StatusArchived {
		t.Errorf("status = %s, want archived", got.Status)
	}

	// Archived conversations still accept messages.
	if _, err := svc.SendText(conv.ID, "toujours là ?"); err != nil {
		t.Errorf("send into archived conversation: %v", err)
	}

	// No way back, and no archived -> blocked edge.
	if err := svc.BlockUser(conv.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("archived -> blocked error = %v, want ErrInvalidTransition", err)
	}
	if err := svc.ArchiveConversation(conv.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("archived -> archived error = %v, want ErrInvalidTransition", err)
	}
}

func TestBlockUser(t *testing.T) {
	svc, db, _ := testService(t, "client#1")

	conv, err := svc.GetOrCreateConversation("prov#9", store.CounterpartInfo{})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.BlockUser(conv.ID); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetConversation(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != store.StatusBlocked {
		t.Errorf("status = %s, want blocked", got.Status)
	}

	// Blocked conversations reject new messages.
	if _, err := svc.SendText(conv.ID, "hello?"); !errors.Is(err, ErrConversationBlocked) {
		t.Errorf("send into blocked conversation error = %v, want ErrConversationBlocked", err)
	}

	// Marking as read is never gated on status.
	if _, err := svc.MarkMessagesAsRead(conv.ID); err != nil {
		t.Errorf("mark read on blocked conversation: %v", err)
	}
}

func TestDeleteConversationCascade(t *testing.T) {
	svc, _, _ := testService(t, "client#1")

	conv, err := svc.GetOrCreateConversation("prov#9", store.CounterpartInfo{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendText(conv.ID, "un"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendBookingRequest(conv.ID, store.BookingDetails{Service: "Coiffure", Date: "2025-01-20", Time: "14:00", Price: 5000}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteConversation(conv.ID); err != nil {
		t.Fatal(err)
	}

	msgs, err := svc.Messages(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages after delete, want 0", len(msgs))
	}
	convs, err := svc.Conversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 0 {
		t.Errorf("got %d conversations after delete, want 0", len(convs))
	}

	if err := svc.DeleteConversation(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("second delete error = %v, want ErrConversationNotFound", err)
	}
}

func TestLifecycleRequiresActor(t *testing.T) {
	svc, _, _ := testService(t, "")

	if err := svc.ArchiveConversation("any"); !errors.Is(err, ErrNoCurrentUser) {
		t.Errorf("archive error = %v, want ErrNoCurrentUser", err)
	}
	if err := svc.BlockUser("any"); !errors.Is(err, ErrNoCurrentUser) {
		t.Errorf("block error = %v, want ErrNoCurrentUser", err)
	}
	if err := svc.DeleteConversation("any"); !errors.Is(err, ErrNoCurrentUser) {
		t.Errorf("delete error = %v, want ErrNoCurrentUser", err)
	}
}

func TestLifecycleMissingConversation(t *testing.T) {
	svc, _, _ := testService(t, "client#1")

	if err := svc.ArchiveConversation("ghost"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("archive error = %v, want ErrConversationNotFound", err)
	}
	if err := svc.BlockUser("ghost"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("block error = %v, want ErrConversationNotFound", err)
	}
	if err := svc.DeleteConversation("ghost"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("delete error = %v, want ErrConversationNotFound", err)
	}
}
