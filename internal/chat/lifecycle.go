package chat

import (
	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/store"
	"go.uber.org/zap"
)

// ArchiveConversation moves an active conversation to archived. Archived
// conversations still accept messages; archiving is local shelving, not a
// refusal to communicate.
func (s *Service) ArchiveConversation(id string) error {
	return s.transition(id, store.StatusArchived, bus.TopicConversationArchived)
}

// BlockUser moves an active conversation to blocked. Sending into a blocked
// conversation fails with ErrConversationBlocked.
func (s *Service) BlockUser(id string) error {
	return s.transition(id, store.StatusBlocked, bus.TopicUserBlocked)
}

func (s *Service) transition(id string, to store.Status, topic string) error {
	if _, err := s.ids.CurrentUserID(); err != nil {
		return err
	}
	conv, err := s.db.GetConversation(id)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	if err := checkTransition(conv.Status, to); err != nil {
		return err
	}
	if err := s.db.UpdateConversationStatus(id, to); err != nil {
		return err
	}
	s.logger.Info("conversation status changed",
		zap.String("conversation_id", id),
		zap.String("from", string(conv.Status)),
		zap.String("to", string(to)))
	s.publish(topic, id)
	return nil
}

// DeleteConversation removes a conversation and every message it owns.
// Allowed from any status; there is no undelete.
func (s *Service) DeleteConversation(id string) error {
	if _, err := s.ids.CurrentUserID(); err != nil {
		return err
	}
	if err := s.db.DeleteConversation(id); err != nil {
		return err
	}
	s.logger.Info("conversation deleted", zap.String("conversation_id", id))
	s.publish(bus.TopicConversationDeleted, id)
	return nil
}
