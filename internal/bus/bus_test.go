package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	b.Publish(Event{Topic: TopicMessageSent, OccurredAt: time.Now(), Payload: MessageRef{ConversationID: "c1"}})

	select {
	case evt := <-ch:
		if evt.Topic != TopicMessageSent {
			t.Errorf("got topic %q, want %q", evt.Topic, TopicMessageSent)
		}
		ref, ok := evt.Payload.(MessageRef)
		if !ok || ref.ConversationID != "c1" {
			t.Errorf("payload = %v, want MessageRef{c1}", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPrefixFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("unread.", 10)
	defer unsub()

	b.Publish(Event{Topic: TopicMessageSent})
	b.Publish(Event{Topic: TopicUnreadChanged})

	select {
	case evt := <-ch:
		if evt.Topic != TopicUnreadChanged {
			t.Errorf("got topic %q, want %q", evt.Topic, TopicUnreadChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The chat event must not have been delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	unsub()

	b.Publish(Event{Topic: TopicConversationCreated})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 1)
	defer unsub()

	b.Publish(Event{Topic: TopicMessageSent})
	// Buffer full: dropped rather than blocking the publisher.
	b.Publish(Event{Topic: TopicMessagesRead})

	evt := <-ch
	if evt.Topic != TopicMessageSent {
		t.Errorf("got %q, want %q", evt.Topic, TopicMessageSent)
	}
}
