// Package domain declares the interfaces between the reservation services
// and their collaborators (persistence, settings, messaging). Services
// accept these interfaces so that the MySQL repositories can be swapped
// for in-memory implementations in tests.
package domain

import (
	"context"
	"time"

	"github.com/studyroomhq/study-room-reservation/internal/model"
)

// ReservationTx is the set of operations available inside one reservation
// transaction. Implementations must guarantee that SlotHolder acquires an
// exclusive claim on the (room, date, slot) tuple that is held until the
// transaction ends, so that two concurrent transactions probing the same
// slot serialize and exactly one observes it free.
type ReservationTx interface {
	// SlotHolder returns the id of the active reservation covering the
	// slot, locking the row for the remainder of the transaction. The
	// boolean is false when no active reservation covers the slot.
	SlotHolder(ctx context.Context, roomID int64, date model.Date, slot int) (int64, bool, error)
	// ActiveSlotCount sums the slots of the user's active reservations
	// on the given day.
	ActiveSlotCount(ctx context.Context, userID int64, date model.Date) (int, error)
	// Insert persists a new reservation and populates its ID and CreatedAt.
	Insert(ctx context.Context, r *model.Reservation) error
	// FindByID loads a reservation inside the transaction.
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	// UpdateStatus transitions id from one status to another. It reports
	// false when the row was not in the expected source status.
	UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error)
}

// ReservationStore is the durable ledger of reservations.
type ReservationStore interface {
	// WithinTx runs fn inside one transaction, committing on nil return
	// and rolling back otherwise. The transaction must make SlotHolder
	// scans exclusive against concurrent inserts into the same slot
	// range; the MySQL implementation runs at REPEATABLE READ so the
	// locking read takes gap locks, and reports lost lock races as
	// repository.ErrTxConflict.
	WithinTx(ctx context.Context, fn func(tx ReservationTx) error) error
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	ListByDate(ctx context.Context, date model.Date) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	// ListCurrent returns active reservations whose range covers the
	// given slot on the given day.
	ListCurrent(ctx context.Context, date model.Date, slot int) ([]model.Reservation, error)
	// CheckInIfReserved atomically marks the reservation CHECKED_IN and
	// stamps checkin_time, but only while it is still RESERVED with no
	// prior check-in. Reports whether the update applied.
	CheckInIfReserved(ctx context.Context, id int64, at time.Time) (bool, error)
	// CancelIfReserved atomically marks the reservation CANCELLED while
	// it is still RESERVED. Reports whether the update applied.
	CancelIfReserved(ctx context.Context, id int64) (bool, error)
}

// SettingStore is the persistent source of truth behind the settings cache.
type SettingStore interface {
	FindAll(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

// SettingsReader serves policy parameters with caller-supplied defaults.
// Implementations must be safe for concurrent use.
type SettingsReader interface {
	Value(key, def string) string
	IntValue(key string, def int) int
}

// EventPublisher emits reservation lifecycle events to the message broker.
// Publishing is best-effort: callers log failures and carry on.
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}
