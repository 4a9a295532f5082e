package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrConversationBlocked is returned when a message is sent into a blocked
// conversation.
var ErrConversationBlocked = errors.New("conversation is blocked")

// ErrNotParticipant is returned when a message's sender is not one of the
// conversation's two participants.
var ErrNotParticipant = errors.New("sender is not a conversation participant")

// InsertMessage appends a message and updates the owning conversation's
// summary fields in one transaction, so the summary can never reflect a
// message that failed to persist. The message's Seq is filled in on return.
func (db *DB) InsertMessage(m *Message, preview string) error {
	metaRaw, err := encodeMeta(m.Kind, m.Meta)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lo, hi string
	var status Status
	err = tx.QueryRow(`SELECT participant_lo, participant_hi, status FROM conversations WHERE id = ?`, m.ConversationID).
		Scan(&lo, &hi, &status)
	if err == sql.ErrNoRows {
		return ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	if m.SenderID != lo && m.SenderID != hi {
		return ErrNotParticipant
	}
	if status == StatusBlocked {
		return ErrConversationBlocked
	}

	res, err := tx.Exec(`
		INSERT INTO messages (id, conversation_id, sender_id, content, kind, meta, timestamp, is_read, delivered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.Kind, metaRaw, m.Timestamp, m.Read, m.Delivered)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("message seq: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE conversations SET last_message_at = ?, last_message_preview = ?
		WHERE id = ?`, m.Timestamp, preview, m.ConversationID); err != nil {
		return fmt.Errorf("update conversation summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.Seq = seq
	return nil
}

// ListMessages returns all messages of a conversation ordered ascending by
// timestamp, insertion order breaking ties. The result is a fresh slice each
// call; an unknown conversation id yields an empty result.
func (db *DB) ListMessages(conversationID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT seq, id, conversation_id, sender_id, content, kind, meta, timestamp, is_read, delivered
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, seq ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		var metaRaw string
		if err := rows.Scan(&m.Seq, &m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Kind, &metaRaw, &m.Timestamp, &m.Read, &m.Delivered); err != nil {
			return nil, err
		}
		m.Meta, err = decodeMeta(m.Kind, metaRaw)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", m.ID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkConversationRead flips every unread message of the conversation to
// read, regardless of sender, and returns how many were flipped. Calling it
// again with no new messages flips nothing.
func (db *DB) MarkConversationRead(conversationID string) (int64, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM conversations WHERE id = ?`, conversationID).Scan(&one)
	if err == sql.ErrNoRows {
		return 0, ErrConversationNotFound
	}
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(`UPDATE messages SET is_read = 1 WHERE conversation_id = ? AND is_read = 0`, conversationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnread returns the number of unread messages across all conversations
// authored by someone other than excludeSender. It is always computed from
// the live rows; there is no cached value to drift.
func (db *DB) CountUnread(excludeSender string) (int, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM messages
		WHERE is_read = 0 AND sender_id <> ?`, excludeSender).Scan(&n)
	return n, err
}
