package store

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusBlocked  Status = "blocked"
)

// Kind distinguishes plain chat messages from structured transactional events.
type Kind string

const (
	KindText                Kind = "text"
	KindImage               Kind = "image"
	KindBookingRequest      Kind = "booking_request"
	KindBookingConfirmation Kind = "booking_confirmation"
	KindPaymentRequest      Kind = "payment_request"
	KindSystem              Kind = "system"
)

// CounterpartInfo is a denormalized snapshot of the other participant's
// display attributes, captured when the conversation is created. It is not
// re-synced when the counterpart's profile changes.
type CounterpartInfo struct {
	ID             string
	Name           string
	Specialty      string
	ImageRef       string
	ServiceSummary string
}

// Conversation is a persistent thread between exactly two users. The
// participant pair is stored normalized (lo < hi) and is unique per pair.
type Conversation struct {
	ID                 string
	ParticipantLo      string
	ParticipantHi      string
	Counterpart        CounterpartInfo
	Status             Status
	CreatedAt          int64 // unix millis, immutable
	LastMessageAt      int64 // unix millis
	LastMessagePreview string
	UnreadCount        int // derived on listing, not stored
}

// Involves reports whether userID is one of the two participants.
func (c *Conversation) Involves(userID string) bool {
	return c.ParticipantLo == userID || c.ParticipantHi == userID
}

// NormalizePair orders an unordered participant pair for storage.
func NormalizePair(a, b string) (lo, hi string) {
	if a > b {
		return b, a
	}
	return a, b
}

// BookingDetails is the structured payload of booking_request and
// booking_confirmation messages.
type BookingDetails struct {
	Service         string `json:"service"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Price           int64  `json:"price"`
}

// PaymentDetails is the structured payload of payment_request messages.
type PaymentDetails struct {
	Amount  int64  `json:"amount"`
	Service string `json:"service,omitempty"`
	Method  string `json:"method,omitempty"`
}

// Meta is the kind-tagged metadata union. Exactly the pointer matching the
// message kind is set; both are nil for text, image and system messages.
type Meta struct {
	Booking *BookingDetails
	Payment *PaymentDetails
}

// Message is a single timestamped unit of content within a conversation.
type Message struct {
	ID             string // ulid, unique even for same-instant messages
	Seq            int64  // insertion order, breaks timestamp ties
	ConversationID string
	SenderID       string
	Content        string
	Kind           Kind
	Meta           Meta
	Timestamp      int64 // unix millis
	Read           bool
	Delivered      bool
}

// encodeMeta serializes the metadata variant matching kind. Kinds without
// structured payloads must carry an empty Meta.
func encodeMeta(kind Kind, meta Meta) (string, error) {
	switch kind {
	case KindBookingRequest, KindBookingConfirmation:
		if meta.Booking == nil {
			return "", fmt.Errorf("kind %s requires booking details", kind)
		}
		raw, err := json.Marshal(meta.Booking)
		if err != nil {
			return "", fmt.Errorf("encode booking details: %w", err)
		}
		return string(raw), nil
	case KindPaymentRequest:
		if meta.Payment == nil {
			return "", fmt.Errorf("kind %s requires payment details", kind)
		}
		raw, err := json.Marshal(meta.Payment)
		if err != nil {
			return "", fmt.Errorf("encode payment details: %w", err)
		}
		return string(raw), nil
	case KindText, KindImage, KindSystem:
		if meta.Booking != nil || meta.Payment != nil {
			return "", fmt.Errorf("kind %s carries no metadata", kind)
		}
		return "", nil
	default:
		return "", fmt.Errorf("unknown message kind %q", kind)
	}
}

// decodeMeta deserializes a stored metadata column. Corrupt or mismatched
// records fail loudly rather than being repaired.
func decodeMeta(kind Kind, raw string) (Meta, error) {
	switch kind {
	case KindBookingRequest, KindBookingConfirmation:
		var d BookingDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return Meta{}, fmt.Errorf("decode booking details: %w", err)
		}
		return Meta{Booking: &d}, nil
	case KindPaymentRequest:
		var d PaymentDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return Meta{}, fmt.Errorf("decode payment details: %w", err)
		}
		return Meta{Payment: &d}, nil
	case KindText, KindImage, KindSystem:
		return Meta{}, nil
	default:
		return Meta{}, fmt.Errorf("unknown message kind %q", kind)
	}
}
