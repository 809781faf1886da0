// Package service contains application services for auth, profiles,
// voice messages, and nickname resolution.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/Jasujung99/echo-note-whisper-app/internal/crypto"
	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/limiter"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
	"github.com/Jasujung99/echo-note-whisper-app/internal/validate"
)

// AuthService defines registration, login, and account removal.
type AuthService interface {
	// Register creates an invite-gated account and its initial profile.
	Register(ctx context.Context, email, password, inviteCode string) (userID string, err error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (tokens model.Tokens, user model.User, err error)
	// DeleteAccount cascades removal of everything the user owns.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	invites   repository.InviteRepository
	messages  repository.MessageRepository
	nicknames repository.NicknameRepository
	blobs     repository.BlobRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	log       *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	invites repository.InviteRepository,
	messages repository.MessageRepository,
	nicknames repository.NicknameRepository,
	blobs repository.BlobRepository,
	signKey []byte,
	accessTTL time.Duration,
	lim limiter.Limiter,
	log *zap.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		users: users, profiles: profiles, invites: invites,
		messages: messages, nicknames: nicknames, blobs: blobs,
		signKey: signKey, accessTTL: accessTTL, lim: lim, log: log,
	}
}

// Register validates inputs locally, creates the user, consumes the invite
// code atomically, and seeds the profile with the invite's birth nickname.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, inviteCode string) (string, error) {
	if err := validate.Email(email); err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrValidation, err)
	}
	if err := validate.Password(password); err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrValidation, err)
	}
	if inviteCode == "" {
		return "", fmt.Errorf("%w: invite code required", errs.ErrValidation)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:       uid,
		Email:    email,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), saltAuth),
		SaltAuth: saltAuth,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}

	nickname, err := s.invites.Redeem(ctx, inviteCode, uid)
	if err != nil {
		// The account must not outlive a failed redemption.
		if delErr := s.users.Delete(ctx, uid); delErr != nil {
			s.log.Error("rollback user after invite failure", zap.Error(delErr), zap.Stringer("user", uid))
		}
		return "", err
	}

	p := &model.Profile{
		UserID:          uid,
		Username:        nickname,
		EchoEnabled:     true,
		ReceiveMessages: true,
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		// Profile is created lazily elsewhere; registration still succeeded.
		s.log.Warn("seed profile", zap.Error(err), zap.Stringer("user", uid))
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		// Record failure; if threshold reached, report rate-limited.
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// Hide user existence on wrong password or lookup error.
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// DeleteAccount removes the user's data in dependency order: recipient
// markers, sent messages, nickname assignments (both directions), profile,
// stored audio under the id prefix, then the account row. Intermediate
// failures are logged and skipped; only the final user delete is fatal.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errors.New("validation: empty userID")
	}

	if err := s.messages.DeleteMarkersByRecipient(ctx, userID); err != nil {
		s.log.Error("delete recipient markers", zap.Error(err), zap.Stringer("user", userID))
	}
	if err := s.messages.DeleteBySender(ctx, userID); err != nil {
		s.log.Error("delete sent messages", zap.Error(err), zap.Stringer("user", userID))
	}
	if err := s.nicknames.DeleteByUser(ctx, userID); err != nil {
		s.log.Error("delete nicknames", zap.Error(err), zap.Stringer("user", userID))
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		s.log.Error("delete profile", zap.Error(err), zap.Stringer("user", userID))
	}

	paths, err := s.blobs.List(ctx, userID.String()+"/")
	if err != nil {
		s.log.Error("list audio blobs", zap.Error(err), zap.Stringer("user", userID))
	} else if len(paths) > 0 {
		if err := s.blobs.Remove(ctx, paths); err != nil {
			s.log.Error("remove audio blobs", zap.Error(err), zap.Stringer("user", userID))
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info("account deleted", zap.Stringer("user", userID))
	return nil
}
