package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrConversationNotFound is returned when an operation references a
// conversation id that does not exist.
var ErrConversationNotFound = errors.New("conversation not found")

const conversationColumns = `id, participant_lo, participant_hi,
	counterpart_id, counterpart_name, counterpart_specialty, counterpart_image_ref, counterpart_summary,
	status, created_at, last_message_at, last_message_preview`

// FindByParticipants returns the conversation between the given pair, or nil
// if none exists. The pair may be passed in either order.
func (db *DB) FindByParticipants(a, b string) (*Conversation, error) {
	lo, hi := NormalizePair(a, b)
	row := db.QueryRow(`
		SELECT `+conversationColumns+`,
			0 AS unread_count
		FROM conversations
		WHERE participant_lo = ? AND participant_hi = ?`, lo, hi)
	return scanConversation(row)
}

// FindOrCreateConversation atomically returns the existing conversation for
// c's participant pair or inserts c. The UNIQUE index on the normalized pair
// makes the insert race-safe: a loser of a concurrent create re-reads the
// winner's row instead of duplicating it. Returns created=true when c was
// inserted.
func (db *DB) FindOrCreateConversation(c *Conversation) (*Conversation, bool, error) {
	existing, err := db.FindByParticipants(c.ParticipantLo, c.ParticipantHi)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	_, err = db.Exec(`
		INSERT INTO conversations (`+conversationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ParticipantLo, c.ParticipantHi,
		c.Counterpart.ID, c.Counterpart.Name, c.Counterpart.Specialty, c.Counterpart.ImageRef, c.Counterpart.ServiceSummary,
		c.Status, c.CreatedAt, c.LastMessageAt, c.LastMessagePreview)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			existing, ferr := db.FindByParticipants(c.ParticipantLo, c.ParticipantHi)
			if ferr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("insert conversation: %w", err)
	}
	return c, true, nil
}

// GetConversation returns a single conversation by id, or nil if missing.
func (db *DB) GetConversation(id string) (*Conversation, error) {
	row := db.QueryRow(`
		SELECT `+conversationColumns+`,
			0 AS unread_count
		FROM conversations
		WHERE id = ?`, id)
	return scanConversation(row)
}

// ListConversations returns the conversations userID participates in, newest
// activity first. Each row carries the count of unread messages authored by
// the counterpart.
func (db *DB) ListConversations(userID string) ([]Conversation, error) {
	rows, err := db.Query(`
		SELECT `+conversationColumns+`,
			(SELECT COUNT(*) FROM messages m
				WHERE m.conversation_id = conversations.id
				AND m.is_read = 0 AND m.sender_id <> ?) AS unread_count
		FROM conversations
		WHERE participant_lo = ? OR participant_hi = ?
		ORDER BY last_message_at DESC, created_at DESC`, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		c, err := scanConversationRow(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

// UpdateConversationStatus sets the lifecycle status of a conversation.
// Returns ErrConversationNotFound if the id does not exist.
func (db *DB) UpdateConversationStatus(id string, status Status) error {
	res, err := db.Exec(`UPDATE conversations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// DeleteConversation removes a conversation; the ON DELETE CASCADE foreign
// key removes all of its messages in the same transaction, so no orphan
// messages can survive. Returns ErrConversationNotFound if the id does not
// exist.
func (db *DB) DeleteConversation(id string) error {
	res, err := db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row *sql.Row) (*Conversation, error) {
	c, err := scanConversationRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanConversationRow(row rowScanner) (*Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.ParticipantLo, &c.ParticipantHi,
		&c.Counterpart.ID, &c.Counterpart.Name, &c.Counterpart.Specialty, &c.Counterpart.ImageRef, &c.Counterpart.ServiceSummary,
		&c.Status, &c.CreatedAt, &c.LastMessageAt, &c.LastMessagePreview,
		&c.UnreadCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
