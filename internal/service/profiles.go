package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
	"github.com/Jasujung99/echo-note-whisper-app/internal/validate"
)

// UpdateProfile carries partial settings changes; nil fields are untouched.
type UpdateProfile struct {
	Username        *string
	EchoEnabled     *bool
	ReceiveMessages *bool
}

// ProfileService reads and writes per-user settings.
type ProfileService interface {
	// Get returns the profile, or defaults when none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// Update merges the changes into the profile via upsert; the row is
	// created lazily on first write.
	Update(ctx context.Context, userID uuid.UUID, in UpdateProfile) (*model.Profile, error)
}

type ProfileServiceImpl struct {
	profiles repository.ProfileRepository
}

// NewProfileService constructs ProfileService.
func NewProfileService(profiles repository.ProfileRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{profiles: profiles}
}

// Get returns the stored profile or in-memory defaults for users who never
// touched settings.
func (s *ProfileServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return defaultProfile(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update validates changed fields locally, merges onto the current state,
// and upserts keyed by user id.
func (s *ProfileServiceImpl) Update(ctx context.Context, userID uuid.UUID, in UpdateProfile) (*model.Profile, error) {
	if userID == uuid.Nil {
		return nil, errors.New("validation: empty userID")
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		name := validate.Sanitize(*in.Username)
		if name != "" {
			if err := validate.Username(name); err != nil {
				return nil, fmt.Errorf("%w: %s", errs.ErrValidation, err)
			}
		}
		p.Username = name
	}
	if in.EchoEnabled != nil {
		p.EchoEnabled = *in.EchoEnabled
	}
	if in.ReceiveMessages != nil {
		p.ReceiveMessages = *in.ReceiveMessages
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func defaultProfile(userID uuid.UUID) *model.Profile {
	return &model.Profile{
		UserID:          userID,
		EchoEnabled:     true,
		ReceiveMessages: true,
	}
}
