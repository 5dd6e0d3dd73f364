package store

import (
	"context"
	"fmt"
	"time"
)

// MessageKind distinguishes chat utterances from system and warning records.
type MessageKind string

const (
	KindMessage MessageKind = "message"
	KindSystem  MessageKind = "system"
	KindWarning MessageKind = "warning"
)

// Message is a persisted chat record. Warning-kind rows are retained for the
// admin audit trail only and never broadcast. The whole table is wiped
// whenever any connection closes; history has session-scoped lifetime.
type Message struct {
	ID           string
	SenderID     string
	Alias        string
	Content      string
	IsFiltered   bool
	FilterReason string
	Kind         MessageKind
	CreatedAt    time.Time
}

// CreateMessage inserts a message row and fills in its creation timestamp.
func (s *Store) CreateMessage(ctx context.Context, m *Message) error {
	var reason any
	if m.FilterReason != "" {
		reason = m.FilterReason
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, alias, content, is_filtered, filter_reason, kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		m.ID, m.SenderID, m.Alias, m.Content, m.IsFiltered, reason, m.Kind,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// DeleteAllMessages wipes the entire message table. Invoked on every
// disconnect to enforce the ephemeral-room property.
func (s *Store) DeleteAllMessages(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("delete all messages: %w", err)
	}
	return nil
}

// ListMessages returns up to limit of the newest messages for admin
// monitoring, including filtered records.
func (s *Store) ListMessages(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_id, alias, content, is_filtered,
			coalesce(filter_reason, ''), kind, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.Alias, &m.Content,
			&m.IsFiltered, &m.FilterReason, &m.Kind, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

// CountMessages returns the total and filtered message counts across the room.
func (s *Store) CountMessages(ctx context.Context) (total int, filtered int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE is_filtered) FROM messages`,
	).Scan(&total, &filtered)
	if err != nil {
		return 0, 0, fmt.Errorf("count messages: %w", err)
	}
	return total, filtered, nil
}

// CountMessagesBySender returns the total and filtered message counts for one sender.
func (s *Store) CountMessagesBySender(ctx context.Context, senderID string) (total int, filtered int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE is_filtered)
		FROM messages WHERE sender_id = $1`, senderID,
	).Scan(&total, &filtered)
	if err != nil {
		return 0, 0, fmt.Errorf("count messages by sender: %w", err)
	}
	return total, filtered, nil
}
