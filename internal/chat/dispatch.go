package chat

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sogoba/jokko/internal/bus"
	"github.com/sogoba/jokko/internal/store"
	"go.uber.org/zap"
)

// previewLimit bounds the conversation preview; longer content is cut at
// this many runes and marked with an ellipsis.
const previewLimit = 50

// SendMessage appends a message authored by the current user to the given
// conversation and updates the conversation's summary in the same
// transaction. Messages are born unread and delivered (there is no external
// transport to fail). Returns ErrConversationNotFound for an unknown id and
// ErrConversationBlocked for a blocked conversation.
func (s *Service) SendMessage(conversationID, content string, kind store.Kind, meta store.Meta) (*store.Message, error) {
	me, err := s.ids.CurrentUserID()
	if err != nil {
		return nil, err
	}

	msg := &store.Message{
		ID:             ulid.Make().String(),
		ConversationID: conversationID,
		SenderID:       me,
		Content:        content,
		Kind:           kind,
		Meta:           meta,
		Timestamp:      time.Now().UnixMilli(),
		Read:           false,
		Delivered:      true,
	}
	if err := s.db.InsertMessage(msg, truncatePreview(content, previewLimit)); err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		zap.String("conversation_id", conversationID),
		zap.String("message_id", msg.ID),
		zap.String("kind", string(kind)))
	if s.bus != nil {
		s.bus.Publish(bus.Event{
			Topic:      bus.TopicMessageSent,
			OccurredAt: time.Now(),
			Payload: bus.MessageRef{
				ConversationID: conversationID,
				MessageID:      msg.ID,
				SenderID:       me,
			},
		})
	}
	return msg, nil
}

// SendText appends a plain text message.
func (s *Service) SendText(conversationID, content string) (*store.Message, error) {
	return s.SendMessage(conversationID, content, store.KindText, store.Meta{})
}

// SendBookingRequest appends a booking_request message carrying the booking
// details, with a generated human-readable summary as content.
func (s *Service) SendBookingRequest(conversationID string, details store.BookingDetails) (*store.Message, error) {
	content := fmt.Sprintf("Nouvelle demande de réservation : %s le %s à %s", details.Service, details.Date, details.Time)
	return s.SendMessage(conversationID, content, store.KindBookingRequest, store.Meta{Booking: &details})
}

// ConfirmBooking appends a booking_confirmation message carrying the booking
// details.
func (s *Service) ConfirmBooking(conversationID string, details store.BookingDetails) (*store.Message, error) {
	content := fmt.Sprintf("Réservation confirmée : %s le %s à %s", details.Service, details.Date, details.Time)
	return s.SendMessage(conversationID, content, store.KindBookingConfirmation, store.Meta{Booking: &details})
}

// RequestPayment appends a payment_request message carrying the payment
// details.
func (s *Service) RequestPayment(conversationID string, details store.PaymentDetails) (*store.Message, error) {
	content := fmt.Sprintf("Demande de paiement : %d FCFA pour %s", details.Amount, details.Service)
	return s.SendMessage(conversationID, content, store.KindPaymentRequest, store.Meta{Payment: &details})
}

func truncatePreview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
