package model

import "time"

// Reservation status values. Transitions are single-directional:
// RESERVED may move to CHECKED_IN or CANCELLED; both of those are terminal.
const (
	StatusReserved  = "RESERVED"
	StatusCheckedIn = "CHECKED_IN"
	StatusCancelled = "CANCELLED"
)

// Reservation records a user's claim on a room for an inclusive range of
// 30-minute slots on a single day. At most one RESERVED or CHECKED_IN
// reservation may cover any given (room, date, slot) tuple.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  RoomID          – room being reserved.
//  Date            – calendar day of the reservation.
//  StartSlot       – first slot of the range (inclusive).
//  EndSlot         – last slot of the range (inclusive).
//  Status          – RESERVED, CHECKED_IN or CANCELLED.
//  CheckinTime     – set exactly once, when the status passes through CHECKED_IN.
//  CheckinRequired – fixed at creation; false exempts the row from no-show rules.
//  CreatedAt       – creation timestamp.
type Reservation struct {
	ID              int64      `json:"id"`               // reservations.id
	UserID          int64      `json:"user_id"`          // reservations.user_id
	RoomID          int64      `json:"room_id"`          // reservations.room_id
	Date            Date       `json:"date"`             // reservations.date
	StartSlot       int        `json:"start_slot"`       // reservations.start_slot
	EndSlot         int        `json:"end_slot"`         // reservations.end_slot
	Status          string     `json:"status"`           // reservations.status
	CheckinTime     *time.Time `json:"checkin_time"`     // reservations.checkin_time (nullable)
	CheckinRequired bool       `json:"checkin_required"` // reservations.checkin_required
	CreatedAt       time.Time  `json:"created_at"`       // reservations.created_at
}

// Active reports whether the reservation counts against slot exclusivity
// and daily quotas (RESERVED or CHECKED_IN).
func (r *Reservation) Active() bool {
	return r.Status == StatusReserved || r.Status == StatusCheckedIn
}

// SlotCount is the number of slots covered by the inclusive range.
func (r *Reservation) SlotCount() int { return r.EndSlot - r.StartSlot + 1 }

// Covers reports whether the given slot falls inside the reserved range.
func (r *Reservation) Covers(slot int) bool {
	return slot >= r.StartSlot && slot <= r.EndSlot
}

// StartTime is the wall-clock start of the reservation in loc.
func (r *Reservation) StartTime(loc *time.Location) time.Time {
	return SlotStart(r.Date, r.StartSlot, loc)
}

// CheckinDeadline is the latest instant at which a check-in is accepted:
// the reservation's start time plus the grace period. The interactive
// check-in path and the no-show sweep must both use this rule so that a
// reservation is never reclaimed while a check-in for it would still be
// accepted.
func (r *Reservation) CheckinDeadline(grace time.Duration, loc *time.Location) time.Time {
	return r.StartTime(loc).Add(grace)
}
