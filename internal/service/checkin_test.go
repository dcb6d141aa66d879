package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyroomhq/study-room-reservation/internal/model"
)

func newTestCheckinService(store *memStore, pub *memPublisher, at time.Time) *CheckinService {
	svc := NewCheckinService(store, defaultSettings(), nil, zerolog.Nop(), time.UTC)
	if pub != nil {
		svc.events = pub
	}
	svc.now = func() time.Time { return at }
	return svc
}

// seedReservation inserts a RESERVED row for today without going through
// the policy pipeline.
func seedReservation(store *memStore, userID, roomID int64, start, end int) *model.Reservation {
	return store.add(model.Reservation{
		UserID: userID, RoomID: roomID, Date: model.DateOf(fixedNow),
		StartSlot: start, EndSlot: end,
		Status: model.StatusReserved, CheckinRequired: true,
	})
}

func TestCheckInWithinGrace(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{}
	// Reservation starts 10:00 (slot 20); scan at 10:10.
	seedReservation(store, 1, 1, 20, 21)
	svc := newTestCheckinService(store, pub, fixedNow.Add(10*time.Minute))

	res, outcome, err := svc.CheckIn(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, outcome)
	assert.Equal(t, model.StatusCheckedIn, res.Status)
	require.NotNil(t, res.CheckinTime)
	assert.Equal(t, []string{"checkin.completed"}, pub.types())
}

func TestCheckInTooEarly(t *testing.T) {
	store := newMemStore()
	// Reservation starts 11:00 (slot 22); scan at 10:10.
	seedReservation(store, 1, 1, 22, 23)
	svc := newTestCheckinService(store, nil, fixedNow.Add(10*time.Minute))

	_, _, err := svc.CheckIn(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrRule)
	assert.Contains(t, err.Error(), "opens at the reservation start time (11:00)")
	assert.Equal(t, model.StatusReserved, store.get(1).Status)
}

func TestCheckInAfterDeadlineCancels(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{}
	// Starts 10:00, grace 15m, scan at 10:20.
	res := seedReservation(store, 1, 1, 20, 21)
	svc := newTestCheckinService(store, pub, fixedNow.Add(20*time.Minute))

	_, _, err := svc.CheckIn(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrRule)
	assert.Contains(t, err.Error(), "deadline (10:15) has passed")
	assert.Equal(t, model.StatusCancelled, store.get(res.ID).Status)
	assert.Equal(t, []string{"noshow.reclaimed"}, pub.types())

	// The reservation is gone; a second scan finds nothing to check in.
	_, _, err = svc.CheckIn(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrRule)
}

func TestCheckInAtDeadlineBoundary(t *testing.T) {
	store := newMemStore()
	seedReservation(store, 1, 1, 20, 21)
	// Exactly 10:15 is still inside the window.
	svc := newTestCheckinService(store, nil, fixedNow.Add(15*time.Minute))

	_, outcome, err := svc.CheckIn(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, outcome)
}

func TestCheckInIdempotentRescan(t *testing.T) {
	store := newMemStore()
	seedReservation(store, 1, 1, 20, 21)
	svc := newTestCheckinService(store, nil, fixedNow.Add(5*time.Minute))

	_, outcome, err := svc.CheckIn(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, OutcomeCheckedIn, outcome)

	res, outcome, err := svc.CheckIn(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCheckedIn, outcome)
	assert.Equal(t, model.StatusCheckedIn, res.Status)
}

func TestCheckInNotRequired(t *testing.T) {
	store := newMemStore()
	exempt := store.add(model.Reservation{
		UserID: 1, RoomID: 1, Date: model.DateOf(fixedNow),
		StartSlot: 20, EndSlot: 21,
		Status: model.StatusReserved, CheckinRequired: false,
	})
	svc := newTestCheckinService(store, nil, fixedNow.Add(5*time.Minute))

	res, outcome, err := svc.CheckIn(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotRequired, outcome)
	assert.Equal(t, model.StatusReserved, res.Status)
	assert.Equal(t, model.StatusReserved, store.get(exempt.ID).Status)
}

func TestCheckInPrefersCoveringReservation(t *testing.T) {
	store := newMemStore()
	later := seedReservation(store, 1, 1, 30, 31)   // 15:00
	current := seedReservation(store, 1, 1, 20, 21) // 10:00, covers now
	svc := newTestCheckinService(store, nil, fixedNow.Add(5*time.Minute))

	res, outcome, err := svc.CheckIn(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, outcome)
	assert.Equal(t, current.ID, res.ID)
	assert.Equal(t, model.StatusReserved, store.get(later.ID).Status)
}

func TestCheckInIgnoresOtherRooms(t *testing.T) {
	store := newMemStore()
	seedReservation(store, 1, 2, 20, 21) // other room
	svc := newTestCheckinService(store, nil, fixedNow.Add(5*time.Minute))

	_, _, err := svc.CheckIn(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrRule)
}

func TestCheckInByID(t *testing.T) {
	store := newMemStore()
	res := seedReservation(store, 1, 1, 20, 21)
	svc := newTestCheckinService(store, nil, fixedNow.Add(5*time.Minute))

	got, outcome, err := svc.CheckInByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, outcome)
	assert.Equal(t, model.StatusCheckedIn, got.Status)

	// Repeating against the now checked-in row is a no-op success.
	_, outcome, err = svc.CheckInByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCheckedIn, outcome)
}

func TestCheckInByIDRejectsWrongDayAndStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestCheckinService(store, nil, fixedNow.Add(5*time.Minute))

	tomorrow := store.add(model.Reservation{
		UserID: 1, RoomID: 1, Date: model.DateOf(fixedNow).AddDays(1),
		StartSlot: 20, EndSlot: 21,
		Status: model.StatusReserved, CheckinRequired: true,
	})
	_, _, err := svc.CheckInByID(context.Background(), tomorrow.ID)
	require.ErrorIs(t, err, ErrRule)
	assert.Contains(t, err.Error(), "not today")

	cancelled := store.add(model.Reservation{
		UserID: 1, RoomID: 1, Date: model.DateOf(fixedNow),
		StartSlot: 20, EndSlot: 21,
		Status: model.StatusCancelled, CheckinRequired: true,
	})
	_, _, err = svc.CheckInByID(context.Background(), cancelled.ID)
	require.ErrorIs(t, err, ErrRule)

	_, _, err = svc.CheckInByID(context.Background(), 9999)
	assert.True(t, IsNotFound(err))
}
