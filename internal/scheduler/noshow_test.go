package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/model"
)

// sweepStore implements domain.ReservationStore with just enough behavior
// for the sweep: date listing and the guarded cancel. failID simulates a
// per-row database error.
type sweepStore struct {
	mu     sync.Mutex
	seq    int64
	items  map[int64]*model.Reservation
	failID int64
}

func newSweepStore() *sweepStore {
	return &sweepStore{items: map[int64]*model.Reservation{}}
}

func (s *sweepStore) add(r model.Reservation) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r.ID = s.seq
	s.items[r.ID] = &r
	return &r
}

func (s *sweepStore) status(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Status
}

func (s *sweepStore) ListByDate(ctx context.Context, date model.Date) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.items {
		if r.Date.Equal(date) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *sweepStore) CancelIfReserved(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.failID {
		return false, errors.New("simulated failure")
	}
	r, ok := s.items[id]
	if !ok || r.Status != model.StatusReserved {
		return false, nil
	}
	r.Status = model.StatusCancelled
	return true, nil
}

func (s *sweepStore) WithinTx(ctx context.Context, fn func(tx domain.ReservationTx) error) error {
	return errors.New("not used by the sweep")
}
func (s *sweepStore) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return nil, errors.New("not used by the sweep")
}
func (s *sweepStore) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return nil, nil
}
func (s *sweepStore) ListAll(ctx context.Context) ([]model.Reservation, error) { return nil, nil }
func (s *sweepStore) ListCurrent(ctx context.Context, date model.Date, slot int) ([]model.Reservation, error) {
	return nil, nil
}
func (s *sweepStore) CheckInIfReserved(ctx context.Context, id int64, at time.Time) (bool, error) {
	return false, nil
}

type fixedSettings map[string]int

func (f fixedSettings) Value(key, def string) string { return def }
func (f fixedSettings) IntValue(key string, def int) int {
	if v, ok := f[key]; ok {
		return v
	}
	return def
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) PublishJSON(eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	return nil
}

// sweepNow is 2024-05-01 12:00 UTC; slot 24.
var sweepNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestReclaimer(store *sweepStore, pub *recordingPublisher) *NoShowReclaimer {
	r := NewNoShowReclaimer(store, fixedSettings{model.SettingCheckinGraceMinutes: 15},
		nil, zerolog.Nop(), time.UTC, time.Minute)
	if pub != nil {
		r.events = pub
	}
	r.now = func() time.Time { return sweepNow }
	return r
}

func reserved(start, end int, required bool) model.Reservation {
	return model.Reservation{
		UserID: 1, RoomID: 1, Date: model.DateOf(sweepNow),
		StartSlot: start, EndSlot: end,
		Status: model.StatusReserved, CheckinRequired: required,
	}
}

func TestSweepReclaimsExpiredReservations(t *testing.T) {
	store := newSweepStore()
	pub := &recordingPublisher{}
	// Both started 10:00 and 11:00; deadlines long past at 12:00.
	a := store.add(reserved(20, 21, true))
	b := store.add(reserved(22, 23, true))
	r := newTestReclaimer(store, pub)

	n, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, model.StatusCancelled, store.status(a.ID))
	assert.Equal(t, model.StatusCancelled, store.status(b.ID))
	assert.Len(t, pub.types, 2)

	// The sweep is idempotent: a second run finds nothing.
	n, err = r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSweepLeavesUnexpiredAndExemptAlone(t *testing.T) {
	store := newSweepStore()
	// Starts 12:00 exactly: deadline 12:15 not yet passed.
	current := store.add(reserved(24, 25, true))
	// Future reservation.
	future := store.add(reserved(30, 31, true))
	// Past deadline but exempt from check-in.
	exempt := store.add(reserved(20, 21, false))
	r := newTestReclaimer(store, nil)

	n, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.StatusReserved, store.status(current.ID))
	assert.Equal(t, model.StatusReserved, store.status(future.ID))
	assert.Equal(t, model.StatusReserved, store.status(exempt.ID))
}

func TestSweepSkipsTerminalStatuses(t *testing.T) {
	store := newSweepStore()
	ts := sweepNow.Add(-time.Hour)
	checkedIn := store.add(model.Reservation{
		UserID: 1, RoomID: 1, Date: model.DateOf(sweepNow),
		StartSlot: 20, EndSlot: 21,
		Status: model.StatusCheckedIn, CheckinTime: &ts, CheckinRequired: true,
	})
	cancelled := store.add(model.Reservation{
		UserID: 1, RoomID: 1, Date: model.DateOf(sweepNow),
		StartSlot: 22, EndSlot: 23,
		Status: model.StatusCancelled, CheckinRequired: true,
	})
	r := newTestReclaimer(store, nil)

	n, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.StatusCheckedIn, store.status(checkedIn.ID))
	assert.Equal(t, model.StatusCancelled, store.status(cancelled.ID))
}

func TestSweepContinuesPastRowFailure(t *testing.T) {
	store := newSweepStore()
	broken := store.add(reserved(20, 21, true))
	healthy := store.add(reserved(22, 23, true))
	store.failID = broken.ID
	r := newTestReclaimer(store, nil)

	n, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.StatusReserved, store.status(broken.ID))
	assert.Equal(t, model.StatusCancelled, store.status(healthy.ID))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := newSweepStore()
	r := newTestReclaimer(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reclaimer did not stop after context cancellation")
	}
}
