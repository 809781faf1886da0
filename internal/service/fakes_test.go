package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
)

type fakeUsers struct {
	byEmail map[string]*model.User

	createErr error
	getErr    error

	deleted []uuid.UUID
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.User{}
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *u
	f.byEmail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	for email, u := range f.byEmail {
		if u.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeProfiles struct {
	byUser map[uuid.UUID]*model.Profile

	getErr    error
	upsertErr error
	deleteErr error
}

var _ repository.ProfileRepository = (*fakeProfiles)(nil)

func (f *fakeProfiles) Get(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byUser[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *model.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.byUser == nil {
		f.byUser = map[uuid.UUID]*model.Profile{}
	}
	cpy := *p
	f.byUser[p.UserID] = &cpy
	return nil
}

func (f *fakeProfiles) GetByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]model.Profile, error) {
	var out []model.Profile
	for _, id := range userIDs {
		if p, ok := f.byUser[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) Delete(_ context.Context, userID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byUser, userID)
	return nil
}

type fakeMessages struct {
	created []model.VoiceMessage
	markers map[uuid.UUID][]uuid.UUID // message -> recipients

	listOut    []model.VoiceMessage
	listErr    error
	lastFilter repository.MessageFilter

	fanOutN   int64
	fanOutErr error

	createErr error
	addErr    error

	unread    int
	unreadErr error

	markedListened [][2]uuid.UUID

	markersDeleted []uuid.UUID
	sendersDeleted []uuid.UUID
}

var _ repository.MessageRepository = (*fakeMessages)(nil)

func (f *fakeMessages) Create(_ context.Context, m *model.VoiceMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeMessages) List(_ context.Context, flt repository.MessageFilter) ([]model.VoiceMessage, error) {
	f.lastFilter = flt
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.VoiceMessage
	for _, m := range f.listOut {
		if flt.Type != "" && m.Type != flt.Type {
			continue
		}
		if flt.UserID != uuid.Nil && m.SenderID != flt.UserID && m.RecipientID != flt.UserID {
			continue
		}
		if flt.ViewerID != uuid.Nil && m.Type == model.MessageDirect &&
			m.SenderID != flt.ViewerID && m.RecipientID != flt.ViewerID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMessages) AddRecipient(_ context.Context, messageID, recipientID uuid.UUID) error {
	if f.addErr != nil {
		return f.addErr
	}
	if f.markers == nil {
		f.markers = map[uuid.UUID][]uuid.UUID{}
	}
	f.markers[messageID] = append(f.markers[messageID], recipientID)
	return nil
}

func (f *fakeMessages) FanOutBroadcast(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return f.fanOutN, f.fanOutErr
}

func (f *fakeMessages) MarkListened(_ context.Context, messageID, recipientID uuid.UUID) error {
	f.markedListened = append(f.markedListened, [2]uuid.UUID{messageID, recipientID})
	return nil
}

func (f *fakeMessages) CountUnread(_ context.Context, _ uuid.UUID) (int, error) {
	return f.unread, f.unreadErr
}

func (f *fakeMessages) DeleteMarkersByRecipient(_ context.Context, recipientID uuid.UUID) error {
	f.markersDeleted = append(f.markersDeleted, recipientID)
	return nil
}

func (f *fakeMessages) DeleteBySender(_ context.Context, senderID uuid.UUID) error {
	f.sendersDeleted = append(f.sendersDeleted, senderID)
	return nil
}

type nickKey struct{ assigner, target uuid.UUID }

type fakeNicknames struct {
	byKey map[nickKey]string

	getCalls    int
	batchReads  int
	batchWrites int

	readErr  error
	writeErr error

	deleted []uuid.UUID
}

var _ repository.NicknameRepository = (*fakeNicknames)(nil)

func (f *fakeNicknames) Get(_ context.Context, assignerID, targetID uuid.UUID) (string, error) {
	f.getCalls++
	if f.readErr != nil {
		return "", f.readErr
	}
	nick, ok := f.byKey[nickKey{assignerID, targetID}]
	if !ok {
		return "", errs.ErrNotFound
	}
	return nick, nil
}

func (f *fakeNicknames) GetByTargets(_ context.Context, assignerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	f.batchReads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := map[uuid.UUID]string{}
	for _, id := range targetIDs {
		if nick, ok := f.byKey[nickKey{assignerID, id}]; ok {
			out[id] = nick
		}
	}
	return out, nil
}

func (f *fakeNicknames) Insert(_ context.Context, a model.NicknameAssignment) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.byKey == nil {
		f.byKey = map[nickKey]string{}
	}
	k := nickKey{a.AssignerID, a.TargetID}
	if _, exists := f.byKey[k]; exists {
		return errs.ErrAlreadyExists
	}
	f.byKey[k] = a.Nickname
	return nil
}

func (f *fakeNicknames) InsertBatch(_ context.Context, as []model.NicknameAssignment) error {
	f.batchWrites++
	if f.writeErr != nil {
		return f.writeErr
	}
	for _, a := range as {
		k := nickKey{a.AssignerID, a.TargetID}
		if _, exists := f.byKey[k]; exists {
			return errs.ErrAlreadyExists
		}
	}
	if f.byKey == nil {
		f.byKey = map[nickKey]string{}
	}
	for _, a := range as {
		f.byKey[nickKey{a.AssignerID, a.TargetID}] = a.Nickname
	}
	return nil
}

func (f *fakeNicknames) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeInvites struct {
	nicknames map[string]string // code -> birth nickname
	used      map[string]uuid.UUID

	redeemErr error
}

var _ repository.InviteRepository = (*fakeInvites)(nil)

func (f *fakeInvites) Create(_ context.Context, code, nickname string) error {
	if f.nicknames == nil {
		f.nicknames = map[string]string{}
	}
	f.nicknames[code] = nickname
	return nil
}

func (f *fakeInvites) Redeem(_ context.Context, code string, userID uuid.UUID) (string, error) {
	if f.redeemErr != nil {
		return "", f.redeemErr
	}
	nick, ok := f.nicknames[code]
	if !ok {
		return "", errs.ErrInviteUnavailable
	}
	if _, taken := f.used[code]; taken {
		return "", errs.ErrInviteUnavailable
	}
	if f.used == nil {
		f.used = map[string]uuid.UUID{}
	}
	f.used[code] = userID
	return nick, nil
}

func (f *fakeInvites) List(_ context.Context) ([]model.InviteCode, error) {
	return nil, nil
}

type fakeBlobs struct {
	byPath map[string]model.AudioBlob

	uploadErr error

	removed []string
}

var _ repository.BlobRepository = (*fakeBlobs)(nil)

func (f *fakeBlobs) Upload(_ context.Context, b model.AudioBlob, upsert bool) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.byPath == nil {
		f.byPath = map[string]model.AudioBlob{}
	}
	if _, exists := f.byPath[b.Path]; exists && !upsert {
		return errs.ErrAlreadyExists
	}
	f.byPath[b.Path] = b
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, path string) (*model.AudioBlob, error) {
	b, ok := f.byPath[path]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &b, nil
}

func (f *fakeBlobs) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for p := range f.byPath {
		if len(p) >= len(prefix) && p[:len(prefix)] == prefix {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBlobs) Remove(_ context.Context, paths []string) error {
	f.removed = append(f.removed, paths...)
	for _, p := range paths {
		delete(f.byPath, p)
	}
	return nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	allowCalls   int
	failureCalls int
	successCalls int
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ []byte) (bool, time.Duration, error) {
	f.allowCalls++
	return f.allowOK, 0, f.allowErr
}

func (f *fakeLimiter) Success(_ context.Context, _ string, _ []byte) error {
	f.successCalls++
	return nil
}

func (f *fakeLimiter) Failure(_ context.Context, _ string, _ []byte) (bool, time.Duration, error) {
	f.failureCalls++
	return f.failBlocked, 0, f.failErr
}
