package session

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goGate/storage/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingObserver struct {
	mu     sync.Mutex
	events []EventKind
}

func (o *recordingObserver) SessionEvent(_ context.Context, e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e.Kind)
}

func (o *recordingObserver) kinds() []EventKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]EventKind(nil), o.events...)
}

type failingStorage struct {
	readErr, writeErr, deleteErr error
	value                        string
	present                      bool
}

func (f *failingStorage) Read(context.Context, string) (string, bool, error) {
	return f.value, f.present, f.readErr
}

func (f *failingStorage) Write(context.Context, string, string) error { return f.writeErr }

func (f *failingStorage) Delete(context.Context, string) error { return f.deleteErr }

func newTestStore(t *testing.T) (*Store, *memory.Slot, *fakeClock) {
	t.Helper()
	slot := memory.NewSlot()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return NewStore(slot, WithClock(clock.Now)), slot, clock
}

func testRecord(clock *fakeClock, ttl time.Duration) *Record {
	return NewRecord(clock.now.Add(ttl), map[string]any{
		FieldUserID:      "u-1",
		FieldRoles:       []any{"admin", "editor"},
		FieldAccessToken: "token-abc",
		"display_name":   "Ada",
		"mfa":            false,
		"tenant":         float64(7),
	})
}

func TestSaveThenGetReturnsEquivalentRecord(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	rec := testRecord(clock, time.Hour)

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.ExpiresAt != rec.ExpiresAt {
		t.Fatalf("expires_at mismatch: %d != %d", got.ExpiresAt, rec.ExpiresAt)
	}
	if !reflect.DeepEqual(got.Payload, rec.Payload) {
		t.Fatalf("payload mismatch:\n got %#v\nwant %#v", got.Payload, rec.Payload)
	}
	if got.UserID() != "u-1" || got.AccessToken() != "token-abc" {
		t.Fatalf("unexpected well-known fields: %q %q", got.UserID(), got.AccessToken())
	}
	if roles := got.Roles(); !reflect.DeepEqual(roles, []string{"admin", "editor"}) {
		t.Fatalf("unexpected roles %v", roles)
	}
}

func TestSaveThenGetYieldsJSONTypes(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	rec := NewRecord(clock.now.Add(time.Hour), map[string]any{
		FieldRoles: []string{"admin"},
		"tenant":   7,
		"prefs":    map[string]string{"theme": "dark"},
	})

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	want := map[string]any{
		FieldRoles: []any{"admin"},
		"tenant":   float64(7),
		"prefs":    map[string]any{"theme": "dark"},
	}
	if !reflect.DeepEqual(got.Payload, want) {
		t.Fatalf("payload mismatch:\n got %#v\nwant %#v", got.Payload, want)
	}
	if roles := got.Roles(); !reflect.DeepEqual(roles, rec.Roles()) {
		t.Fatalf("roles accessor differs after round trip: %v vs %v", roles, rec.Roles())
	}
}

func TestExpiredRecordIsClearedAndAbsent(t *testing.T) {
	store, slot, clock := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord(clock, -time.Second)); err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if got != nil {
			t.Fatalf("get %d: expected absent, got %+v", i, got)
		}
	}
	if slot.Has(StorageKey) {
		t.Fatal("expected expired record removed from storage")
	}
}

func TestFarFutureExpiryRoundTrips(t *testing.T) {
	store, slot, _ := newTestStore(t)
	ctx := context.Background()

	for _, exp := range []int64{1<<53 + 1, math.MaxInt64} {
		rec := &Record{ExpiresAt: exp, Payload: map[string]any{FieldUserID: "u-1"}}
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("save %d: %v", exp, err)
		}
		got, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("get %d: %v", exp, err)
		}
		if got == nil {
			t.Fatalf("get %d: expected record, got absent", exp)
		}
		if got.ExpiresAt != exp {
			t.Fatalf("expected expires_at %d, got %d", exp, got.ExpiresAt)
		}
		if !slot.Has(StorageKey) {
			t.Fatalf("expires_at %d: slot must survive the read", exp)
		}
	}
}

func TestExpiryBoundaryIsInclusive(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, testRecord(clock, 0))
	got, err := store.Get(ctx)
	if err != nil || got == nil {
		t.Fatalf("expected record valid at its expiry second, got %v err=%v", got, err)
	}

	clock.Advance(time.Second)
	if got, _ := store.Get(ctx); got != nil {
		t.Fatal("expected record invalid one second past expiry")
	}
}

func TestClockAdvanceScenario(t *testing.T) {
	store, slot, clock := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord(clock, time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := store.Get(ctx); got == nil {
		t.Fatal("expected record before expiry")
	}

	clock.Advance(time.Hour + time.Second)
	if got, _ := store.Get(ctx); got != nil {
		t.Fatal("expected absent after expiry")
	}
	if slot.Has(StorageKey) {
		t.Fatal("expected storage to no longer contain the key")
	}
}

func TestClearThenGetIsAbsent(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear empty: %v", err)
	}
	_ = store.Save(ctx, testRecord(clock, time.Hour))
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
	if got, err := store.Get(ctx); got != nil || err != nil {
		t.Fatalf("expected absent, got %v err=%v", got, err)
	}
}

func TestNeverSavedIsAbsent(t *testing.T) {
	store, _, _ := newTestStore(t)
	got, err := store.Get(context.Background())
	if got != nil || err != nil {
		t.Fatalf("expected absent, got %v err=%v", got, err)
	}
}

func TestCorruptRecordIsClearedAndAbsent(t *testing.T) {
	cases := map[string]string{
		"not json":        "{{{",
		"json null":       "null",
		"array":           `[1,2]`,
		"missing expiry":  `{"user_id":"u"}`,
		"string expiry":   `{"expires_at":"soon"}`,
		"negative expiry": `{"expires_at":-5}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store, slot, _ := newTestStore(t)
			obs := &recordingObserver{}
			store.observer = obs
			ctx := context.Background()
			_ = slot.Write(ctx, StorageKey, raw)

			got, err := store.Get(ctx)
			if got != nil || err != nil {
				t.Fatalf("expected absent, got %v err=%v", got, err)
			}
			if slot.Has(StorageKey) {
				t.Fatal("expected corrupt entry cleared")
			}
			if kinds := obs.kinds(); len(kinds) != 1 || kinds[0] != EventCorrupt {
				t.Fatalf("expected single corrupt event, got %v", kinds)
			}
		})
	}
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	store, _, _ := newTestStore(t)
	err := store.Save(context.Background(), &Record{ExpiresAt: 0})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if err := store.Save(context.Background(), nil); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for nil, got %v", err)
	}
}

func TestStorageFailuresPropagate(t *testing.T) {
	boom := errors.New("quota exceeded")
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	store := NewStore(&failingStorage{writeErr: boom}, WithClock(clock.Now))
	err := store.Save(ctx, testRecord(clock, time.Hour))
	if !errors.Is(err, ErrStorageUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error on save, got %v", err)
	}

	store = NewStore(&failingStorage{readErr: boom}, WithClock(clock.Now))
	if _, err := store.Get(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected wrapped storage error on get, got %v", err)
	}

	store = NewStore(&failingStorage{deleteErr: boom}, WithClock(clock.Now))
	if err := store.Clear(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected wrapped storage error on clear, got %v", err)
	}
}

func TestExpiredRecordWithFailingDeleteNeverReturned(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	raw, err := Encode(testRecord(clock, -time.Minute))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	store := NewStore(&failingStorage{value: raw, present: true, deleteErr: errors.New("down")}, WithClock(clock.Now))

	got, err := store.Get(context.Background())
	if got != nil {
		t.Fatalf("expected no record, got %+v", got)
	}
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestObserverSeesLifecycle(t *testing.T) {
	obs := &recordingObserver{}
	slot := memory.NewSlot()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := NewStore(slot, WithClock(clock.Now), WithObserver(obs))
	ctx := context.Background()

	_ = store.Save(ctx, testRecord(clock, time.Minute))
	_, _ = store.Get(ctx)
	clock.Advance(2 * time.Minute)
	_, _ = store.Get(ctx)
	_ = store.Clear(ctx)

	want := []EventKind{EventSaved, EventLoaded, EventExpired, EventCleared}
	if got := obs.kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWithKeyOverridesSlot(t *testing.T) {
	slot := memory.NewSlot()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := NewStore(slot, WithKey("custom"), WithClock(clock.Now))

	_ = store.Save(context.Background(), testRecord(clock, time.Hour))
	if !slot.Has("custom") || slot.Has(StorageKey) {
		t.Fatal("expected record under custom key only")
	}
}
