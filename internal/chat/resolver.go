package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/store"
	"go.uber.org/zap"
)

// GetOrCreateConversation returns the conversation between the current user
// and counterpartID, creating it if none exists. A found conversation is
// returned unchanged; the passed-in info does not refresh the stored
// snapshot. Creation is an atomic find-or-insert, so repeated or concurrent
// calls for the same pair resolve to one conversation.
func (s *Service) GetOrCreateConversation(counterpartID string, info store.CounterpartInfo) (*store.Conversation, error) {
	me, err := s.ids.CurrentUserID()
	if err != nil {
		return nil, err
	}
	if counterpartID == "" {
		return nil, fmt.Errorf("counterpart id is empty")
	}
	if counterpartID == me {
		return nil, fmt.Errorf("cannot open a conversation with yourself")
	}

	now := time.Now().UnixMilli()
	lo, hi := store.NormalizePair(me, counterpartID)
	info.ID = counterpartID
	candidate := &store.Conversation{
		ID:            uuid.NewString(),
		ParticipantLo: lo,
		ParticipantHi: hi,
		Counterpart:   info,
		Status:        store.StatusActive,
		CreatedAt:     now,
		LastMessageAt: now,
	}

	conv, created, err := s.db.FindOrCreateConversation(candidate)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("conversation created",
			zap.String("conversation_id", conv.ID),
			zap.String("counterpart", counterpartID))
		s.publish(bus.TopicConversationCreated, conv.ID)
	}
	return conv, nil
}

func (s *Service) publish(topic, conversationID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{
		Topic:      topic,
		OccurredAt: time.Now(),
		Payload:    map[string]string{"conversation_id": conversationID},
	})
}
