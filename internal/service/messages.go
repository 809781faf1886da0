package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/Jasujung99/echo-note-whisper-app/internal/audiocheck"
	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
	"github.com/Jasujung99/echo-note-whisper-app/internal/validate"
)

// SendInput carries one recorded clip and its metadata.
type SendInput struct {
	Audio       []byte
	Duration    float64
	RecipientID uuid.UUID // uuid.Nil broadcasts to all opted-in users
	Title       string
	VoiceEffect string // cosmetic tag only
}

// MessageView is a message enriched with the viewer's nickname for its
// counterpart, the counterpart's own fixed username, and a playable URL.
type MessageView struct {
	Message         model.VoiceMessage
	CounterpartID   uuid.UUID
	Nickname        string
	CounterpartName string // counterpart's profile username, empty when unset
	AudioURL        string
}

// MessageService records, lists, and marks voice messages.
type MessageService interface {
	// Send validates the clip, stores the blob, inserts the message, and
	// fans out recipient markers.
	Send(ctx context.Context, senderID uuid.UUID, in SendInput) (*model.VoiceMessage, error)
	// List returns a page of messages visible to the user, with nicknames
	// resolved through the batch resolver (one read, at most one write).
	List(ctx context.Context, userID uuid.UUID, mtype model.MessageType, limit, offset int) ([]MessageView, error)
	// MarkListened transitions the user's marker once, null -> now().
	MarkListened(ctx context.Context, userID, messageID uuid.UUID) error
	// UnreadCount derives the live count, honoring receive_messages.
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	// Audio loads a stored blob for playback.
	Audio(ctx context.Context, path string) (*model.AudioBlob, error)
	// AudioURL renders the public playback URL for a stored path.
	AudioURL(path string) string
}

type MessageServiceImpl struct {
	messages  repository.MessageRepository
	profiles  repository.ProfileRepository
	blobs     repository.BlobRepository
	nicknames NicknameService
	baseURL   string
	log       *zap.Logger
}

// NewMessageService constructs MessageService.
func NewMessageService(
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	blobs repository.BlobRepository,
	nicknames NicknameService,
	baseURL string,
	log *zap.Logger,
) *MessageServiceImpl {
	return &MessageServiceImpl{
		messages: messages, profiles: profiles, blobs: blobs,
		nicknames: nicknames, baseURL: baseURL, log: log,
	}
}

// Send validates locally before any write, then blob -> row -> markers.
func (s *MessageServiceImpl) Send(ctx context.Context, senderID uuid.UUID, in SendInput) (*model.VoiceMessage, error) {
	if senderID == uuid.Nil {
		return nil, errors.New("validation: empty senderID")
	}
	title, err := validate.Title(in.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrValidation, err)
	}
	res, err := audiocheck.Validate(in.Audio, in.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrValidation, err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	path := securePath(senderID, id, res.Format)

	blob := model.AudioBlob{
		Path:        path,
		ContentType: audiocheck.ContentType(res.Format),
		Data:        in.Audio,
	}
	if err := s.blobs.Upload(ctx, blob, false); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	m := &model.VoiceMessage{
		ID:          id,
		SenderID:    senderID,
		RecipientID: in.RecipientID,
		AudioPath:   path,
		Duration:    res.Duration,
		Type:        model.MessageBroadcast,
		Title:       title,
		VoiceEffect: in.VoiceEffect,
		CreatedAt:   time.Now(),
	}
	if in.RecipientID != uuid.Nil {
		m.Type = model.MessageDirect
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if m.Type == model.MessageDirect {
		if err := s.messages.AddRecipient(ctx, m.ID, m.RecipientID); err != nil {
			return nil, fmt.Errorf("add recipient: %w", err)
		}
	} else {
		n, err := s.messages.FanOutBroadcast(ctx, m.ID, senderID)
		if err != nil {
			return nil, fmt.Errorf("fan out: %w", err)
		}
		s.log.Info("broadcast fanned out", zap.Stringer("message", m.ID), zap.Int64("recipients", n))
	}
	return m, nil
}

// List fetches a page and resolves all counterpart nicknames and profiles
// in one batch each. Direct messages are visible only to their sender and
// recipient, whatever type filter the caller asked for.
func (s *MessageServiceImpl) List(ctx context.Context, userID uuid.UUID, mtype model.MessageType, limit, offset int) ([]MessageView, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	f := repository.MessageFilter{Type: mtype, Limit: limit, Offset: offset}
	switch mtype {
	case model.MessageDirect:
		f.UserID = userID
	case model.MessageBroadcast:
		// type filter alone suffices
	default:
		f.ViewerID = userID
	}
	msgs, err := s.messages.List(ctx, f)
	if err != nil {
		return nil, err
	}

	// the viewer never gets a nickname for themselves
	counterparts := make([]uuid.UUID, 0, len(msgs))
	for _, m := range msgs {
		if cp := counterpartOf(m, userID); cp != userID {
			counterparts = append(counterparts, cp)
		}
	}
	nicks := s.nicknames.ResolveNicknames(ctx, userID, counterparts)
	names, err := s.nicknames.ProfilesFor(ctx, counterparts)
	if err != nil {
		// nicknames still render; the fixed username is an extra
		s.log.Warn("counterpart profile batch", zap.Error(err), zap.Stringer("viewer", userID))
		names = map[uuid.UUID]model.Profile{}
	}

	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		cp := counterpartOf(m, userID)
		out = append(out, MessageView{
			Message:         m,
			CounterpartID:   cp,
			Nickname:        nicks[cp],
			CounterpartName: names[cp].Username,
			AudioURL:        s.AudioURL(m.AudioPath),
		})
	}
	return out, nil
}

// MarkListened is idempotent at the storage layer; repeated calls are no-ops.
func (s *MessageServiceImpl) MarkListened(ctx context.Context, userID, messageID uuid.UUID) error {
	if userID == uuid.Nil || messageID == uuid.Nil {
		return errors.New("validation: empty id")
	}
	return s.messages.MarkListened(ctx, messageID, userID)
}

// UnreadCount short-circuits to zero when the user opted out of messages.
// A missing profile row counts as opted out.
func (s *MessageServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if !p.ReceiveMessages {
		return 0, nil
	}
	return s.messages.CountUnread(ctx, userID)
}

// Audio loads a stored blob for playback.
func (s *MessageServiceImpl) Audio(ctx context.Context, path string) (*model.AudioBlob, error) {
	return s.blobs.Get(ctx, path)
}

// AudioURL renders the public playback URL for a stored path.
func (s *MessageServiceImpl) AudioURL(path string) string {
	return s.baseURL + "/audio/" + path
}

// counterpartOf picks whose nickname a viewer sees for a message.
func counterpartOf(m model.VoiceMessage, viewer uuid.UUID) uuid.UUID {
	if m.Type == model.MessageDirect && m.SenderID == viewer {
		return m.RecipientID
	}
	return m.SenderID
}

// securePath builds <owner>/<random>_<unix-ms>.<ext> under the owner prefix.
func securePath(owner, id uuid.UUID, format string) string {
	return fmt.Sprintf("%s/%s_%d.%s", owner, id, time.Now().UnixMilli(), format)
}
