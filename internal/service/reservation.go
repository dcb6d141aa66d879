package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/metrics"
	"github.com/studyroomhq/study-room-reservation/internal/model"
	"github.com/studyroomhq/study-room-reservation/internal/queue"
	"github.com/studyroomhq/study-room-reservation/internal/repository"
)

// Policy defaults used when the settings table has no row for a key.
const (
	defaultOpeningHour     = 9
	defaultClosingHour     = 21
	defaultDailyLimitHours = 3
	defaultMaxSlotsPerRes  = 6
)

// CreateReservationInput is a booking request. CheckinRequired is an
// explicit input: callers that book inside a no-check-in window (for
// example same-day walk-up bookings decided by the surrounding policy)
// pass false, everything else passes true.
type CreateReservationInput struct {
	UserID          int64
	RoomID          int64
	Date            model.Date
	StartSlot       int
	EndSlot         int
	CheckinRequired bool
}

// ReservationService validates booking requests against the settings
// cache and existing bookings, then commits them through the ledger
// inside a single transaction. It also serves the read and cancellation
// paths.
type ReservationService struct {
	store    domain.ReservationStore
	settings domain.SettingsReader
	events   domain.EventPublisher
	log      zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewReservationService wires the policy engine. events may be nil when
// no broker is configured.
func NewReservationService(store domain.ReservationStore, settings domain.SettingsReader,
	events domain.EventPublisher, log zerolog.Logger, loc *time.Location) *ReservationService {
	return &ReservationService{
		store:    store,
		settings: settings,
		events:   events,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// Create runs the policy pipeline and, when every check passes, inserts
// the reservation. The daily-quota read, the per-slot claim scan and the
// insert share one transaction so no interleaving commit can violate the
// exclusivity invariant. Rule violations are reported via ErrRule with a
// specific reason; the first conflicting slot is named as HH:MM.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	if !model.ValidSlot(in.StartSlot) || !model.ValidSlot(in.EndSlot) || in.StartSlot > in.EndSlot {
		return nil, rulef("invalid slot range %d..%d", in.StartSlot, in.EndSlot)
	}

	openingHour := s.settings.IntValue(model.SettingOpeningHour, defaultOpeningHour)
	closingHour := s.settings.IntValue(model.SettingClosingHour, defaultClosingHour)
	dailyLimitHours := s.settings.IntValue(model.SettingDailyLimitHours, defaultDailyLimitHours)
	maxSlotsPerDay := dailyLimitHours * 2
	maxSlotsPerRes := s.settings.IntValue(model.SettingMaxSlotsPerReservation, defaultMaxSlotsPerRes)

	// Bookings are accepted for today through six days ahead.
	today := model.DateOf(s.now().In(s.loc))
	if maxDate := today.AddDays(6); in.Date.After(maxDate) {
		return nil, rulef("reservations are only accepted through %s", maxDate)
	}

	// The slot range, converted to hours, must lie inside operating hours.
	startHour := in.StartSlot / 2
	endHour := (in.EndSlot + 1) / 2
	if startHour < openingHour || endHour > closingHour {
		return nil, rulef("reservations are only available between %02d:00 and %02d:00", openingHour, closingHour)
	}

	requested := in.EndSlot - in.StartSlot + 1
	if requested > maxSlotsPerRes {
		return nil, rulef("a single reservation may cover at most %d slots", maxSlotsPerRes)
	}

	var created *model.Reservation
	err := s.store.WithinTx(ctx, func(tx domain.ReservationTx) error {
		used, err := tx.ActiveSlotCount(ctx, in.UserID, in.Date)
		if err != nil {
			return err
		}
		if used+requested > maxSlotsPerDay {
			return rulef("daily limit is %d hours per day (%.1f hours already reserved)",
				dailyLimitHours, float64(used)/2)
		}

		// Claim every requested slot. Each scan locks the covering row
		// range, so a racing request for an overlapping range blocks here
		// and then sees this transaction's insert; requests for disjoint
		// ranges are untouched.
		for slot := in.StartSlot; slot <= in.EndSlot; slot++ {
			if _, taken, err := tx.SlotHolder(ctx, in.RoomID, in.Date, slot); err != nil {
				return err
			} else if taken {
				metrics.IncSlotConflict()
				return rulef("slot %s is already reserved by another user", model.FormatSlot(slot))
			}
		}

		res := &model.Reservation{
			UserID:          in.UserID,
			RoomID:          in.RoomID,
			Date:            in.Date,
			StartSlot:       in.StartSlot,
			EndSlot:         in.EndSlot,
			Status:          model.StatusReserved,
			CheckinRequired: in.CheckinRequired,
		}
		if err := tx.Insert(ctx, res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		// A lock conflict means a concurrent request won the race for an
		// overlapping slot range. Report it like any other slot conflict.
		if errors.Is(err, repository.ErrTxConflict) {
			metrics.IncSlotConflict()
			return nil, rulef("the requested slots were just reserved by another user")
		}
		return nil, err
	}

	metrics.IncReservationCreated()
	s.log.Info().Int64("reservation_id", created.ID).Int64("user_id", created.UserID).
		Int64("room_id", created.RoomID).Str("date", created.Date.String()).
		Int("start_slot", created.StartSlot).Int("end_slot", created.EndSlot).
		Msg("reservation created")
	s.publish(queue.EventReservationCreated, created, "")
	return created, nil
}

// ByDate lists all reservations on a calendar day.
func (s *ReservationService) ByDate(ctx context.Context, date model.Date) ([]model.Reservation, error) {
	return s.store.ListByDate(ctx, date)
}

// ByUser lists a user's reservations.
func (s *ReservationService) ByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	return s.store.ListByUser(ctx, userID)
}

// All lists every reservation (admin).
func (s *ReservationService) All(ctx context.Context) ([]model.Reservation, error) {
	return s.store.ListAll(ctx)
}

// Current lists active reservations whose slot range contains "now" (admin).
func (s *ReservationService) Current(ctx context.Context) ([]model.Reservation, error) {
	now := s.now().In(s.loc)
	return s.store.ListCurrent(ctx, model.DateOf(now), model.SlotOf(now))
}

// Cancel soft-cancels a user's own RESERVED reservation. The status
// check rides inside the transaction so a concurrent check-in or sweep
// cannot be overwritten.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, userID int64) error {
	return s.cancel(ctx, reservationID, &userID, "cancelled by user")
}

// CancelByAdmin is Cancel without the ownership check.
func (s *ReservationService) CancelByAdmin(ctx context.Context, reservationID int64) error {
	return s.cancel(ctx, reservationID, nil, "cancelled by admin")
}

func (s *ReservationService) cancel(ctx context.Context, reservationID int64, owner *int64, reason string) error {
	var cancelled *model.Reservation
	err := s.store.WithinTx(ctx, func(tx domain.ReservationTx) error {
		res, err := tx.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if owner != nil && res.UserID != *owner {
			return repository.ErrForbidden
		}
		if res.Status != model.StatusReserved {
			return rulef("only RESERVED reservations can be cancelled (status is %s)", res.Status)
		}
		ok, err := tx.UpdateStatus(ctx, res.ID, model.StatusReserved, model.StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return rulef("reservation was already handled")
		}
		cancelled = res
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Int64("reservation_id", cancelled.ID).Str("reason", reason).Msg("reservation cancelled")
	s.publish(queue.EventReservationCancelled, cancelled, reason)
	return nil
}

func (s *ReservationService) publish(eventType string, res *model.Reservation, reason string) {
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

// IsNotFound reports whether err denotes a missing reservation.
func IsNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }

// IsForbidden reports whether err denotes an ownership violation.
func IsForbidden(err error) bool { return errors.Is(err, repository.ErrForbidden) }
