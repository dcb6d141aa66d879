package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/metrics"
	"github.com/studyroomhq/study-room-reservation/internal/model"
	"github.com/studyroomhq/study-room-reservation/internal/queue"
)

// CheckinOutcome describes how a check-in request was resolved.
type CheckinOutcome string

const (
	// OutcomeCheckedIn means the reservation transitioned to CHECKED_IN.
	OutcomeCheckedIn CheckinOutcome = "checked_in"
	// OutcomeAlreadyCheckedIn means a re-scan hit a reservation that was
	// already checked in; treated as success with no state change.
	OutcomeAlreadyCheckedIn CheckinOutcome = "already_checked_in"
	// OutcomeNotRequired means the reservation is exempt from check-in
	// and was returned unchanged.
	OutcomeNotRequired CheckinOutcome = "not_required"
)

// CheckinService applies the RESERVED→CHECKED_IN transition, or the
// RESERVED→CANCELLED transition when the check-in deadline has passed.
// Every transition goes through the ledger's guarded conditional updates,
// so a race with the no-show sweep resolves to exactly one winner.
type CheckinService struct {
	store    domain.ReservationStore
	settings domain.SettingsReader
	events   domain.EventPublisher
	log      zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewCheckinService wires the check-in state machine. events may be nil.
func NewCheckinService(store domain.ReservationStore, settings domain.SettingsReader,
	events domain.EventPublisher, log zerolog.Logger, loc *time.Location) *CheckinService {
	return &CheckinService{
		store:    store,
		settings: settings,
		events:   events,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// Grace returns the configured check-in grace period: how long after the
// reservation's start time a check-in is still accepted. The no-show
// sweep uses the same value so the two paths agree on the deadline.
func (s *CheckinService) Grace() time.Duration {
	minutes := s.settings.IntValue(model.SettingCheckinGraceMinutes, 15)
	return time.Duration(minutes) * time.Minute
}

// CheckIn resolves the user's reservation for the room today and applies
// the transition. Resolution prefers a reservation whose slot range
// contains the current slot; with none current, the earliest one that has
// not started yet is chosen. A re-scan against an already checked-in
// current reservation succeeds idempotently.
func (s *CheckinService) CheckIn(ctx context.Context, userID, roomID int64) (*model.Reservation, CheckinOutcome, error) {
	now := s.now().In(s.loc)
	today := model.DateOf(now)
	nowSlot := model.SlotOf(now)

	mine, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	var candidates []model.Reservation
	for i := range mine {
		r := mine[i]
		if r.RoomID != roomID || !r.Date.Equal(today) {
			continue
		}
		if r.Status == model.StatusCheckedIn && r.Covers(nowSlot) {
			return &r, OutcomeAlreadyCheckedIn, nil
		}
		if r.Status == model.StatusReserved && r.CheckinTime == nil {
			candidates = append(candidates, r)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].StartSlot < candidates[j].StartSlot
	})

	var target *model.Reservation
	for i := range candidates {
		if candidates[i].Covers(nowSlot) {
			target = &candidates[i]
			break
		}
	}
	if target == nil {
		for i := range candidates {
			if nowSlot < candidates[i].StartSlot {
				target = &candidates[i]
				break
			}
		}
	}
	if target == nil {
		return nil, "", rulef("no reservation for this room today, or it was already checked in")
	}

	return s.apply(ctx, target, now)
}

// CheckInByID applies the transition to one specific reservation. Used by
// the manual/admin check-in path; the reservation must be for today and
// still RESERVED.
func (s *CheckinService) CheckInByID(ctx context.Context, reservationID int64) (*model.Reservation, CheckinOutcome, error) {
	now := s.now().In(s.loc)
	res, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, "", err
	}
	if res.Status == model.StatusCheckedIn {
		return res, OutcomeAlreadyCheckedIn, nil
	}
	if res.Status != model.StatusReserved {
		return nil, "", rulef("reservation is %s and can no longer be checked in", res.Status)
	}
	if !res.Date.Equal(model.DateOf(now)) {
		return nil, "", rulef("reservation is for %s, not today", res.Date)
	}
	return s.apply(ctx, res, now)
}

// apply enforces the time-window rules and performs the guarded
// transition for one resolved RESERVED reservation.
func (s *CheckinService) apply(ctx context.Context, res *model.Reservation, now time.Time) (*model.Reservation, CheckinOutcome, error) {
	if !res.CheckinRequired {
		s.log.Info().Int64("reservation_id", res.ID).Msg("reservation exempt from check-in")
		return res, OutcomeNotRequired, nil
	}

	start := res.StartTime(s.loc)
	if now.Before(start) {
		return nil, "", rulef("check-in opens at the reservation start time (%s)", start.Format("15:04"))
	}

	deadline := res.CheckinDeadline(s.Grace(), s.loc)
	if now.After(deadline) {
		// Missed the window: reclaim the slot as a no-show. The guarded
		// cancel may lose to a concurrent sweep, which already applied
		// the same outcome.
		ok, err := s.store.CancelIfReserved(ctx, res.ID)
		if err != nil {
			return nil, "", err
		}
		if ok {
			metrics.IncNoShowReclaimed()
			s.log.Info().Int64("reservation_id", res.ID).Time("deadline", deadline).
				Msg("check-in deadline missed, reservation cancelled")
			s.publish(queue.EventNoShowReclaimed, res, "check-in deadline missed")
		}
		return nil, "", rulef("the check-in deadline (%s) has passed; the reservation was cancelled",
			deadline.Format("15:04"))
	}

	ok, err := s.store.CheckInIfReserved(ctx, res.ID, now)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		// Lost a race: the sweep or another actor transitioned the row
		// between resolution and the conditional update.
		return nil, "", rulef("reservation was already handled")
	}

	metrics.IncCheckin()
	updated, err := s.store.FindByID(ctx, res.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().Int64("reservation_id", updated.ID).Int64("user_id", updated.UserID).
		Int64("room_id", updated.RoomID).Msg("check-in completed")
	s.publish(queue.EventCheckinCompleted, updated, "")
	return updated, OutcomeCheckedIn, nil
}

func (s *CheckinService) publish(eventType string, res *model.Reservation, reason string) {
	if s.events == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:          eventType,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		Date:          res.Date,
		StartSlot:     res.StartSlot,
		EndSlot:       res.EndSlot,
		Reason:        reason,
		OccurredAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishJSON(eventType, ev); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
