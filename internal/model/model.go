// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// MessageType discriminates direct and broadcast voice messages.
type MessageType string

const (
	// MessageDirect is addressed to exactly one recipient.
	MessageDirect MessageType = "direct"
	// MessageBroadcast is fanned out to all opted-in users ("echo").
	MessageBroadcast MessageType = "broadcast"
)

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account. Passwords are stored as Argon2id hashes only.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	CreatedAt time.Time
}

// Profile holds per-user preferences, created lazily on first settings write.
type Profile struct {
	UserID          uuid.UUID // PK, FK -> users.id
	Username        string    // display name, may be empty
	EchoEnabled     bool      // opted into receiving broadcasts
	ReceiveMessages bool      // opted into unread tracking and notifications
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VoiceMessage is an immutable recorded clip, direct or broadcast.
type VoiceMessage struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID // uuid.Nil for broadcasts
	AudioPath   string    // object path under the sender's id prefix
	Duration    float64   // seconds
	Type        MessageType
	Title       string
	VoiceEffect string // cosmetic tag, never applied to the signal
	CreatedAt   time.Time
}

// RecipientMarker is the per-(message, recipient) delivery/read-state record.
type RecipientMarker struct {
	ID          uuid.UUID
	MessageID   uuid.UUID
	RecipientID uuid.UUID
	ListenedAt  *time.Time // nil until the recipient plays the message
	CreatedAt   time.Time
}

// NicknameAssignment is a private, per-viewer label for another user.
// At most one row exists per (assigner, target) pair.
type NicknameAssignment struct {
	AssignerID uuid.UUID
	TargetID   uuid.UUID
	Nickname   string
	CreatedAt  time.Time
}

// InviteCode gates registration; consumed exactly once.
type InviteCode struct {
	Code     string
	Nickname string // the display name the redeemer is born with
	IsUsed   bool
	UsedBy   uuid.UUID // uuid.Nil until consumed
	UsedAt   *time.Time
}

// AudioBlob is a stored audio object with its content type.
type AudioBlob struct {
	Path        string // <owner-id>/<random>.<ext>
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
