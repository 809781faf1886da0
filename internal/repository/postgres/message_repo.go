package postgres

import (
	"context"
	"fmt"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// MessageRepo implements MessageRepository using PostgreSQL.
type MessageRepo struct{ db *DB }

// NewMessageRepo constructs a message repository.
func NewMessageRepo(db *DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts an immutable voice message row.
func (r *MessageRepo) Create(ctx context.Context, m *model.VoiceMessage) error {
	const q = `
INSERT INTO voice_messages (id, sender_id, recipient_id, audio_path, duration, message_type, title, voice_effect)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var recipient any
	if m.RecipientID != uuid.Nil {
		recipient = m.RecipientID
	}
	_, err := r.db.Pool.Exec(ctx, q,
		m.ID, m.SenderID, recipient, m.AudioPath, m.Duration, string(m.Type), m.Title, m.VoiceEffect)
	return err
}

// List returns messages ordered by created_at descending with range pagination.
func (r *MessageRepo) List(ctx context.Context, f repository.MessageFilter) ([]model.VoiceMessage, error) {
	q := `
SELECT id, sender_id, recipient_id, audio_path, duration, message_type, title, voice_effect, created_at
FROM voice_messages`
	var (
		args  []any
		where []string
	)
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("message_type=$%d", len(args)))
	}
	if f.UserID != uuid.Nil {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("(sender_id=$%d OR recipient_id=$%d)", len(args), len(args)))
	}
	if f.ViewerID != uuid.Nil {
		args = append(args, f.ViewerID)
		where = append(where, fmt.Sprintf(
			"(message_type='broadcast' OR sender_id=$%d OR recipient_id=$%d)", len(args), len(args)))
	}
	for i, w := range where {
		if i == 0 {
			q += "\nWHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += "\nORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf("\nLIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VoiceMessage
	for rows.Next() {
		var (
			m         model.VoiceMessage
			recipient *uuid.UUID
			mtype     string
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &recipient, &m.AudioPath, &m.Duration, &mtype, &m.Title, &m.VoiceEffect, &m.CreatedAt); err != nil {
			return nil, err
		}
		if recipient != nil {
			m.RecipientID = *recipient
		}
		m.Type = model.MessageType(mtype)
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddRecipient creates the marker for a direct message.
func (r *MessageRepo) AddRecipient(ctx context.Context, messageID, recipientID uuid.UUID) error {
	const q = `
INSERT INTO voice_message_recipients (message_id, recipient_id)
VALUES ($1, $2)`
	_, err := r.db.Pool.Exec(ctx, q, messageID, recipientID)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// FanOutBroadcast creates markers for every echo-enabled profile except the
// sender, in a single INSERT..SELECT.
func (r *MessageRepo) FanOutBroadcast(ctx context.Context, messageID, senderID uuid.UUID) (int64, error) {
	const q = `
INSERT INTO voice_message_recipients (message_id, recipient_id)
SELECT $1, user_id FROM profiles
WHERE echo_enabled AND user_id <> $2`
	tag, err := r.db.Pool.Exec(ctx, q, messageID, senderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkListened transitions listened_at null -> now(), exactly once.
func (r *MessageRepo) MarkListened(ctx context.Context, messageID, recipientID uuid.UUID) error {
	const q = `
UPDATE voice_message_recipients
SET listened_at=now()
WHERE message_id=$1 AND recipient_id=$2 AND listened_at IS NULL`
	_, err := r.db.Pool.Exec(ctx, q, messageID, recipientID)
	return err
}

// CountUnread returns markers for the recipient with null listened_at.
func (r *MessageRepo) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	const q = `
SELECT count(*) FROM voice_message_recipients
WHERE recipient_id=$1 AND listened_at IS NULL`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, recipientID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteMarkersByRecipient removes the user's markers.
func (r *MessageRepo) DeleteMarkersByRecipient(ctx context.Context, recipientID uuid.UUID) error {
	const q = `DELETE FROM voice_message_recipients WHERE recipient_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, recipientID)
	return err
}

// DeleteBySender removes the user's sent messages; markers cascade.
func (r *MessageRepo) DeleteBySender(ctx context.Context, senderID uuid.UUID) error {
	const q = `DELETE FROM voice_messages WHERE sender_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, senderID)
	return err
}
