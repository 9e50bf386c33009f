package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/storage"
)

// StorageKey is the fixed slot the session record lives under.
const StorageKey = "auth_session"

// ErrStorageUnavailable wraps every storage failure surfaced by the Store.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Clock returns the current time. Expiry checks read it once per call.
type Clock func() time.Time

// EventKind identifies a lifecycle transition reported to an Observer.
type EventKind uint8

const (
	// EventSaved follows a successful Save.
	EventSaved EventKind = iota + 1
	// EventLoaded follows a Get that returned a live record.
	EventLoaded
	// EventExpired follows a Get that found and cleared an expired record.
	EventExpired
	// EventCorrupt follows a Get that found and cleared an undecodable record.
	EventCorrupt
	// EventCleared follows an explicit Clear.
	EventCleared
	// EventStorageFailure follows any storage error.
	EventStorageFailure
)

func (k EventKind) String() string {
	switch k {
	case EventSaved:
		return "session_saved"
	case EventLoaded:
		return "session_loaded"
	case EventExpired:
		return "session_expired"
	case EventCorrupt:
		return "session_corrupt"
	case EventCleared:
		return "session_cleared"
	case EventStorageFailure:
		return "session_storage_failure"
	default:
		return "session_unknown"
	}
}

// Event describes one lifecycle transition.
type Event struct {
	Kind   EventKind
	UserID string
	Err    error
}

// Observer receives lifecycle events synchronously. Implementations must not
// block.
type Observer interface {
	SessionEvent(ctx context.Context, event Event)
}

// Store is the sole accessor of one tab's session slot.
type Store struct {
	storage  storage.Storage
	key      string
	now      Clock
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for expiry checks.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.now = c
		}
	}
}

// WithKey overrides StorageKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithObserver attaches a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// NewStore returns a Store over st.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		key:     StorageKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes rec to the slot, replacing any prior record.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	raw, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := s.storage.Write(ctx, s.key, raw); err != nil {
		s.notify(ctx, Event{Kind: EventStorageFailure, UserID: rec.UserID(), Err: err})
		return fmt.Errorf("save session: %w: %w", ErrStorageUnavailable, err)
	}
	s.notify(ctx, Event{Kind: EventSaved, UserID: rec.UserID()})
	return nil
}

// Get returns the live record, or nil when the slot is empty, expired or
// corrupt. Expired and corrupt entries are removed before returning. A non-nil
// error is only ever a storage failure. The returned record is JSON-equivalent
// to the saved one; see Record.
func (s *Store) Get(ctx context.Context) (*Record, error) {
	now := s.now()

	raw, ok, err := s.storage.Read(ctx, s.key)
	if err != nil {
		s.notify(ctx, Event{Kind: EventStorageFailure, Err: err})
		return nil, fmt.Errorf("read session: %w: %w", ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, nil
	}

	rec, err := Decode(raw)
	if err != nil {
		s.notify(ctx, Event{Kind: EventCorrupt, Err: err})
		return nil, s.discard(ctx, "")
	}

	if rec.Expired(now) {
		s.notify(ctx, Event{Kind: EventExpired, UserID: rec.UserID()})
		return nil, s.discard(ctx, rec.UserID())
	}

	s.notify(ctx, Event{Kind: EventLoaded, UserID: rec.UserID()})
	return rec, nil
}

// Clear removes the slot. Clearing an empty slot succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.notify(ctx, Event{Kind: EventStorageFailure, Err: err})
		return fmt.Errorf("clear session: %w: %w", ErrStorageUnavailable, err)
	}
	s.notify(ctx, Event{Kind: EventCleared})
	return nil
}

func (s *Store) discard(ctx context.Context, userID string) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.notify(ctx, Event{Kind: EventStorageFailure, UserID: userID, Err: err})
		return fmt.Errorf("discard session: %w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, event Event) {
	if s.observer == nil {
		return
	}
	s.observer.SessionEvent(ctx, event)
}
