// Package scheduler runs the periodic no-show reclamation sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/metrics"
	"github.com/studyroomhq/study-room-reservation/internal/model"
	"github.com/studyroomhq/study-room-reservation/internal/queue"
)

// NoShowReclaimer periodically cancels today's RESERVED reservations
// whose check-in deadline has passed. It applies the same deadline rule
// as the interactive check-in path (start time plus the configured grace
// period) and the same guarded conditional update, so the two paths are
// idempotent with respect to each other: whichever commits first wins and
// the other becomes a no-op.
type NoShowReclaimer struct {
	store    domain.ReservationStore
	settings domain.SettingsReader
	events   domain.EventPublisher
	log      zerolog.Logger
	loc      *time.Location
	interval time.Duration
	now      func() time.Time
}

// NewNoShowReclaimer builds a reclaimer sweeping on the given interval.
// events may be nil when no broker is configured.
func NewNoShowReclaimer(store domain.ReservationStore, settings domain.SettingsReader,
	events domain.EventPublisher, log zerolog.Logger, loc *time.Location, interval time.Duration) *NoShowReclaimer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &NoShowReclaimer{
		store:    store,
		settings: settings,
		events:   events,
		log:      log,
		loc:      loc,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick until the context is
// cancelled. Sweep failures are logged and retried on the next period;
// nothing escapes the loop, so the host process is never taken down by
// the background task.
func (r *NoShowReclaimer) Run(ctx context.Context) {
	r.runSweep(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("no-show reclaimer stopped")
			return
		case <-ticker.C:
			r.runSweep(ctx)
		}
	}
}

func (r *NoShowReclaimer) runSweep(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("no-show sweep panicked")
		}
	}()
	if _, err := r.Sweep(ctx); err != nil {
		r.log.Error().Err(err).Msg("no-show sweep failed, retrying next period")
	}
}

// Sweep scans today's reservations and cancels every unchecked, past-
// deadline one. A failure on one reservation is logged and does not stop
// the rest of the scan. Returns the number of reservations reclaimed.
func (r *NoShowReclaimer) Sweep(ctx context.Context) (int, error) {
	now := r.now().In(r.loc)
	today := model.DateOf(now)
	graceMin := r.settings.IntValue(model.SettingCheckinGraceMinutes, 15)
	grace := time.Duration(graceMin) * time.Minute

	reservations, err := r.store.ListByDate(ctx, today)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for i := range reservations {
		res := reservations[i]
		if res.Status != model.StatusReserved || !res.CheckinRequired || res.CheckinTime != nil {
			continue
		}
		deadline := res.CheckinDeadline(grace, r.loc)
		if !now.After(deadline) {
			continue
		}
		ok, err := r.store.CancelIfReserved(ctx, res.ID)
		if err != nil {
			r.log.Error().Err(err).Int64("reservation_id", res.ID).Msg("no-show cancel failed")
			continue
		}
		if !ok {
			// A concurrent check-in or cancel got there first.
			continue
		}
		reclaimed++
		metrics.IncNoShowReclaimed()
		r.log.Info().Int64("reservation_id", res.ID).Int64("user_id", res.UserID).
			Int64("room_id", res.RoomID).Time("deadline", deadline).
			Msg("no-show reservation cancelled")
		r.publish(&res)
	}
	return reclaimed, nil
}

func (r *NoShowReclaimer) publish(res *model.Reservation) {
	if r.events == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:          queue.EventNoShowReclaimed,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		Date:          res.Date,
		StartSlot:     res.StartSlot,
		EndSlot:       res.EndSlot,
		Reason:        "check-in deadline missed",
		OccurredAt:    r.now().UTC().Format(time.RFC3339),
	}
	if err := r.events.PublishJSON(ev.Type, ev); err != nil {
		r.log.Warn().Err(err).Msg("event publish failed")
	}
}
