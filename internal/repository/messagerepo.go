package repository

import (
	"context"

	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
)

// MessageFilter narrows List results. Zero values mean "no filter".
type MessageFilter struct {
	Type     model.MessageType // eq filter on message_type
	UserID   uuid.UUID         // direct scope: sender OR recipient
	ViewerID uuid.UUID         // visibility scope: broadcasts plus the viewer's own direct rows
	Limit    int
	Offset   int
}

// MessageRepository stores voice messages and their recipient markers.
type MessageRepository interface {
	// Create inserts an immutable voice message row.
	Create(ctx context.Context, m *model.VoiceMessage) error
	// List returns messages ordered by created_at descending with range pagination.
	List(ctx context.Context, f MessageFilter) ([]model.VoiceMessage, error)

	// AddRecipient creates the marker for a direct message.
	AddRecipient(ctx context.Context, messageID, recipientID uuid.UUID) error
	// FanOutBroadcast creates markers for every echo-enabled profile except
	// the sender, in a single statement. Returns the number of markers.
	FanOutBroadcast(ctx context.Context, messageID, senderID uuid.UUID) (int64, error)

	// MarkListened transitions listened_at null -> now(), exactly once.
	MarkListened(ctx context.Context, messageID, recipientID uuid.UUID) error
	// CountUnread returns markers for the recipient with null listened_at.
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)

	// DeleteMarkersByRecipient removes the user's markers (account deletion).
	DeleteMarkersByRecipient(ctx context.Context, recipientID uuid.UUID) error
	// DeleteBySender removes the user's sent messages (account deletion).
	DeleteBySender(ctx context.Context, senderID uuid.UUID) error
}
