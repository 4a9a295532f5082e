package chat

import (
	"time"

	"github.com/sogoba/jokko/internal/bus"
	"go.uber.org/zap"
)

// MarkMessagesAsRead flips every unread message in the conversation to read,
// regardless of sender, and returns how many were flipped. Repeated calls
// with no new messages flip nothing and publish nothing.
func (s *Service) MarkMessagesAsRead(conversationID string) (int64, error) {
	me, err := s.ids.CurrentUserID()
	if err != nil {
		return 0, err
	}

	flipped, err := s.db.MarkConversationRead(conversationID)
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.logger.Info("messages marked read",
			zap.String("conversation_id", conversationID),
			zap.Int64("count", flipped))
		if s.bus != nil {
			s.bus.Publish(bus.Event{
				Topic:      bus.TopicMessagesRead,
				OccurredAt: time.Now(),
				Payload:    bus.MessageRef{ConversationID: conversationID, SenderID: me},
			})
		}
	}
	return flipped, nil
}

// UnreadCount returns the number of unread messages across all conversations
// authored by someone other than the current user. It is computed from the
// store on every call.
func (s *Service) UnreadCount() (int, error) {
	me, err := s.ids.CurrentUserID()
	if err != nil {
		return 0, err
	}
	return s.db.CountUnread(me)
}
