// Package unread maintains the live unread-message count for one
// authenticated session. State moves only through the pure Reduce
// function; user-facing side effects (toast, OS notification) are
// separate subscribers of the resulting transitions.
package unread

import (
	"context"
	"errors"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/realtime"
	"github.com/Jasujung99/echo-note-whisper-app/internal/repository"
)

// EventKind enumerates tracker inputs.
type EventKind int

const (
	// EventMarkerInserted is a realtime insert for this recipient.
	EventMarkerInserted EventKind = iota
	// EventMarkRead is the optimistic local reset after playback.
	EventMarkRead
	// EventRefreshed replaces the count with a freshly derived value.
	EventRefreshed
)

// Event is a single tracker input.
type Event struct {
	Kind  EventKind
	Count int // used by EventRefreshed
}

// State is the tracker's whole state.
type State struct {
	Count int
}

// Reduce is the pure transition function (event, state) -> new state.
func Reduce(s State, ev Event) State {
	switch ev.Kind {
	case EventMarkerInserted:
		return State{Count: s.Count + 1}
	case EventMarkRead:
		return State{Count: 0}
	case EventRefreshed:
		return State{Count: ev.Count}
	}
	return s
}

// Transition is delivered to subscribers after each state change.
type Transition struct {
	From, To State
	// NewArrival marks transitions caused by a fresh insert event; only
	// these should produce user-facing notifications.
	NewArrival bool
}

// Tracker derives and maintains the unread count for one user.
type Tracker struct {
	userID   uuid.UUID
	profiles repository.ProfileRepository
	messages repository.MessageRepository
	log      *zap.Logger

	mu    sync.Mutex
	state State
	subs  []func(Transition)
}

// NewTracker constructs a tracker for the given user.
func NewTracker(
	userID uuid.UUID,
	profiles repository.ProfileRepository,
	messages repository.MessageRepository,
	log *zap.Logger,
) *Tracker {
	return &Tracker{userID: userID, profiles: profiles, messages: messages, log: log}
}

// OnChange registers a side-effect subscriber. Must be called before the
// tracker starts receiving events.
func (t *Tracker) OnChange(fn func(Transition)) {
	t.mu.Lock()
	t.subs = append(t.subs, fn)
	t.mu.Unlock()
}

// Count returns the current live count.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Count
}

// Refresh re-derives the count from storage. The receive_messages
// preference short-circuits to zero. Query failures are logged and leave
// the previous count unchanged; unread is best-effort.
func (t *Tracker) Refresh(ctx context.Context) {
	enabled, err := t.receiveEnabled(ctx)
	if err != nil {
		t.log.Warn("unread preference fetch", zap.Error(err), zap.Stringer("user", t.userID))
		return
	}
	if !enabled {
		t.apply(Event{Kind: EventRefreshed, Count: 0}, false)
		return
	}
	n, err := t.messages.CountUnread(ctx, t.userID)
	if err != nil {
		t.log.Warn("unread count fetch", zap.Error(err), zap.Stringer("user", t.userID))
		return
	}
	t.apply(Event{Kind: EventRefreshed, Count: n}, false)
}

// MarkAsRead resets the live count to zero without re-verifying storage.
func (t *Tracker) MarkAsRead() {
	t.apply(Event{Kind: EventMarkRead}, false)
}

// HandleInsert reacts to a realtime marker insert for this user: the
// preference is re-checked (it may have changed mid-session), then the
// count is optimistically incremented. Disabled preference drops the
// event entirely.
func (t *Tracker) HandleInsert(ctx context.Context, ev realtime.Event) {
	if ev.RecipientID != t.userID {
		return
	}
	enabled, err := t.receiveEnabled(ctx)
	if err != nil {
		t.log.Warn("unread preference recheck", zap.Error(err), zap.Stringer("user", t.userID))
		return
	}
	if !enabled {
		return
	}
	t.apply(Event{Kind: EventMarkerInserted}, true)
}

func (t *Tracker) receiveEnabled(ctx context.Context) (bool, error) {
	p, err := t.profiles.Get(ctx, t.userID)
	if err != nil {
		// No profile row: treated as opted out until one exists.
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.ReceiveMessages, nil
}

func (t *Tracker) apply(ev Event, arrival bool) {
	t.mu.Lock()
	from := t.state
	t.state = Reduce(from, ev)
	to := t.state
	subs := t.subs
	t.mu.Unlock()

	tr := Transition{From: from, To: to, NewArrival: arrival}
	for _, fn := range subs {
		fn(tr)
	}
}
