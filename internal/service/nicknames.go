package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/nickgen"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
)

// NicknameService resolves counterpart user ids to display nicknames.
type NicknameService interface {
	// ResolveNicknames maps every id in targetIDs to a nickname with at
	// most one read and one write round trip. Ids that cannot be assigned
	// degrade to the anonymous sentinel; the mapping is always complete.
	ResolveNicknames(ctx context.Context, assignerID uuid.UUID, targetIDs []uuid.UUID) map[uuid.UUID]string
	// NicknameFor is the single-target variant of ResolveNicknames.
	NicknameFor(ctx context.Context, assignerID, targetID uuid.UUID) string
	// ProfilesFor returns profiles for a set of users in one query.
	ProfilesFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Profile, error)
	// DisplayName returns the user's own fixed username, or a random
	// nickname when none is set.
	DisplayName(ctx context.Context, userID uuid.UUID) string
}

type NicknameServiceImpl struct {
	nicknames repository.NicknameRepository
	profiles  repository.ProfileRepository
	log       *zap.Logger
}

// NewNicknameService constructs NicknameService.
func NewNicknameService(
	nicknames repository.NicknameRepository,
	profiles repository.ProfileRepository,
	log *zap.Logger,
) *NicknameServiceImpl {
	return &NicknameServiceImpl{nicknames: nicknames, profiles: profiles, log: log}
}

// ResolveNicknames batches the lookup to avoid one query per counterpart:
// one read for existing assignments, then one insert for all missing ids.
// A failed insert (e.g. a concurrent assignment) degrades every missing id
// to the sentinel rather than partially succeeding.
func (s *NicknameServiceImpl) ResolveNicknames(ctx context.Context, assignerID uuid.UUID, targetIDs []uuid.UUID) map[uuid.UUID]string {
	unique := dedupe(targetIDs)
	result := make(map[uuid.UUID]string, len(unique))
	if len(unique) == 0 {
		return result
	}

	existing, err := s.nicknames.GetByTargets(ctx, assignerID, unique)
	if err != nil {
		// Treated as "none found": the insert below either creates rows or
		// conflicts into the sentinel path.
		s.log.Warn("nickname batch read", zap.Error(err), zap.Stringer("assigner", assignerID))
		existing = map[uuid.UUID]string{}
	}
	for id, nick := range existing {
		result[id] = nick
	}

	var missing []model.NicknameAssignment
	for _, id := range unique {
		if _, ok := existing[id]; !ok {
			missing = append(missing, model.NicknameAssignment{
				AssignerID: assignerID,
				TargetID:   id,
				Nickname:   nickgen.Random(),
			})
		}
	}
	if len(missing) == 0 {
		return result
	}

	if err := s.nicknames.InsertBatch(ctx, missing); err != nil {
		s.log.Warn("nickname batch insert", zap.Error(err), zap.Stringer("assigner", assignerID))
		for _, a := range missing {
			result[a.TargetID] = nickgen.Anonymous
		}
		return result
	}
	for _, a := range missing {
		result[a.TargetID] = a.Nickname
	}
	return result
}

// NicknameFor applies the same read-then-maybe-insert contract to a
// singleton set.
func (s *NicknameServiceImpl) NicknameFor(ctx context.Context, assignerID, targetID uuid.UUID) string {
	nick, err := s.nicknames.Get(ctx, assignerID, targetID)
	if err == nil {
		return nick
	}
	if !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("nickname read", zap.Error(err), zap.Stringer("assigner", assignerID))
		return nickgen.Anonymous
	}

	fresh := nickgen.Random()
	a := model.NicknameAssignment{AssignerID: assignerID, TargetID: targetID, Nickname: fresh}
	if err := s.nicknames.Insert(ctx, a); err != nil {
		s.log.Warn("nickname insert", zap.Error(err), zap.Stringer("assigner", assignerID))
		return nickgen.Anonymous
	}
	return fresh
}

// ProfilesFor batches profile lookups for rendering counterpart lists.
func (s *NicknameServiceImpl) ProfilesFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Profile, error) {
	unique := dedupe(userIDs)
	out := make(map[uuid.UUID]model.Profile, len(unique))
	if len(unique) == 0 {
		return out, nil
	}
	ps, err := s.profiles.GetByUserIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.UserID] = p
	}
	return out, nil
}

// DisplayName returns the profile username, falling back to a random
// nickname when the profile or username is missing.
func (s *NicknameServiceImpl) DisplayName(ctx context.Context, userID uuid.UUID) string {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil || p.Username == "" {
		return nickgen.Random()
	}
	return p.Username
}

// dedupe returns targetIDs without duplicates or nil entries, preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
