// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

import "github.com/studyroomhq/study-room-reservation/internal/model"

// Event types published on the reservation.events queue.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventCheckinCompleted     = "checkin.completed"
	EventNoShowReclaimed      = "noshow.reclaimed"
)

// ReservationEvent is published on every reservation lifecycle change. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ReservationEvent struct {
	Type          string     `json:"type"`
	ReservationID int64      `json:"reservation_id"`
	UserID        int64      `json:"user_id"`
	RoomID        int64      `json:"room_id"`
	Date          model.Date `json:"date"`
	StartSlot     int        `json:"start_slot"`
	EndSlot       int        `json:"end_slot"`
	Reason        string     `json:"reason,omitempty"`
	OccurredAt    string     `json:"occurred_at"`
}
