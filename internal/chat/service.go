// Package chat implements the messaging core of the booking platform:
// conversation resolution, message dispatch, read tracking and conversation
// lifecycle. All state lives in the injected store; every mutation publishes
// a domain event on the bus for whatever surface observes it.
package chat

import (
	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/identity"
	"github.com/sogoba/jokko/internal/store"
	"go.uber.org/zap"
)

// ErrNoCurrentUser mirrors identity.ErrNoCurrentUser for callers matching on
// this package's errors.
var ErrNoCurrentUser = identity.ErrNoCurrentUser

// ErrConversationNotFound and ErrConversationBlocked mirror the store
// sentinels surfaced by mutating operations.
var (
	ErrConversationNotFound = store.ErrConversationNotFound
	ErrConversationBlocked  = store.ErrConversationBlocked
)

// Service is the messaging core. It owns no state of its own: the store
// handle, identity resolver and bus are constructed once and injected.
type Service struct {
	db     *store.DB
	ids    identity.Resolver
	bus    *bus.Bus
	logger *zap.Logger
}

// NewService creates the messaging core service.
func NewService(db *store.DB, ids identity.Resolver, b *bus.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, ids: ids, bus: b, logger: logger}
}

// Conversations returns the current user's conversations, most recent
// activity first, each carrying its unread count.
func (s *Service) Conversations() ([]store.Conversation, error) {
	me, err := s.ids.CurrentUserID()
	if err != nil {
		return nil, err
	}
	return s.db.ListConversations(me)
}

// Messages returns all messages of a conversation in send order. The slice
// is a fresh snapshot; callers may mutate it freely.
func (s *Service) Messages(conversationID string) ([]store.Message, error) {
	return s.db.ListMessages(conversationID)
}
