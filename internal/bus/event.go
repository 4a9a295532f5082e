package bus

import "time"

// Topics published by the messaging core. Subscribers filter by prefix,
// e.g. "chat." receives every conversation/message mutation.
const (
	TopicConversationCreated  = "chat.conversation_created"
	TopicMessageSent          = "chat.message_sent"
	TopicMessagesRead         = "chat.messages_read"
	TopicConversationArchived = "chat.conversation_archived"
	TopicUserBlocked          = "chat.user_blocked"
	TopicConversationDeleted  = "chat.conversation_deleted"
	TopicUnreadChanged        = "unread.changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Topic      string
	OccurredAt time.Time
	Payload    any
}

// MessageRef identifies a message within a conversation, used as the
// payload for message-level events.
type MessageRef struct {
	ConversationID string
	MessageID      string
	SenderID       string
}

// UnreadChange is the payload for unread.changed events.
type UnreadChange struct {
	UserID string
	Count  int
}
