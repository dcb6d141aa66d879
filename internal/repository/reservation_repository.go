package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/model"
)

// ReservationRepo provides transactional access to the reservations table.
// It owns the slot-exclusivity invariant at the storage boundary: the
// per-slot claim scan (SlotHolder) takes row-level locks scoped to the
// surrounding transaction, so overlapping booking attempts serialize on
// the slots they share while disjoint ranges proceed independently.
// All timestamp columns are stored in UTC; the date column carries the
// calendar day of the reservation in the operating timezone.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, user_id, room_id, date, start_slot, end_slot, status, checkin_time, checkin_required, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res         model.Reservation
		day         time.Time
		checkinTime sql.NullTime
	)
	err := row.Scan(&res.ID, &res.UserID, &res.RoomID, &day, &res.StartSlot, &res.EndSlot,
		&res.Status, &checkinTime, &res.CheckinRequired, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	res.Date = model.DateOf(day)
	if checkinTime.Valid {
		t := checkinTime.Time
		res.CheckinTime = &t
	}
	return &res, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WithinTx runs fn inside a REPEATABLE READ transaction. The isolation
// level matters for correctness, not just consistency: the SlotHolder
// scan relies on next-key locks over the empty index range, and InnoDB
// disables gap locking for locking reads at READ COMMITTED, which would
// let two transactions both see a free slot and both insert. Under
// REPEATABLE READ one of the racing transactions blocks or deadlocks
// instead; a deadlock victim surfaces as ErrTxConflict so callers can
// report the booking race rather than an internal failure. The
// transaction is committed when fn returns nil and rolled back otherwise;
// locks taken by SlotHolder are released either way.
func (r *ReservationRepo) WithinTx(ctx context.Context, fn func(tx domain.ReservationTx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&reservationTx{tx: tx}); err != nil {
		return wrapLockConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return wrapLockConflict(err)
	}
	committed = true
	return nil
}

// wrapLockConflict translates InnoDB lock-contention errors (1213
// deadlock victim, 1205 lock wait timeout) into ErrTxConflict. Both
// arise when concurrent bookings fight over the same slot range.
func wrapLockConflict(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == 1213 || myErr.Number == 1205) {
		return ErrTxConflict
	}
	return err
}

// reservationTx implements domain.ReservationTx over one *sql.Tx.
type reservationTx struct {
	tx *sql.Tx
}

// SlotHolder locks and returns the active reservation covering one slot.
// When a covering row exists the SELECT ... FOR UPDATE locks it; when the
// slot is free the locking read takes next-key locks over the scanned
// index gap (the transaction runs at REPEATABLE READ, see WithinTx), so a
// racing transaction inserting into the same range blocks or deadlocks
// rather than slipping an overlapping row past the scan.
func (t *reservationTx) SlotHolder(ctx context.Context, roomID int64, date model.Date, slot int) (int64, bool, error) {
	const q = `SELECT id FROM reservations
	           WHERE room_id = ? AND date = ? AND status IN ('RESERVED','CHECKED_IN')
	             AND start_slot <= ? AND end_slot >= ?
	           LIMIT 1 FOR UPDATE`
	var id int64
	err := t.tx.QueryRowContext(ctx, q, roomID, date.String(), slot, slot).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ActiveSlotCount sums slots of the user's RESERVED and CHECKED_IN
// reservations on the given day.
func (t *reservationTx) ActiveSlotCount(ctx context.Context, userID int64, date model.Date) (int, error) {
	const q = `SELECT COALESCE(SUM(end_slot - start_slot + 1), 0) FROM reservations
	           WHERE user_id = ? AND date = ? AND status IN ('RESERVED','CHECKED_IN')`
	var n int
	if err := t.tx.QueryRowContext(ctx, q, userID, date.String()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Insert persists a new reservation row and queries it back to populate
// the generated ID and the database-assigned created_at.
func (t *reservationTx) Insert(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, room_id, date, start_slot, end_slot, status, checkin_required)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := t.tx.ExecContext(ctx, q, res.UserID, res.RoomID, res.Date.String(),
		res.StartSlot, res.EndSlot, res.Status, res.CheckinRequired)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = id
	stored, err := t.FindByID(ctx, id)
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// FindByID loads a reservation inside the transaction.
func (t *reservationTx) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return res, err
}

// UpdateStatus transitions the row's status only when it currently holds
// the expected source status. The guard is part of the UPDATE itself so a
// concurrent transition cannot be overwritten.
func (t *reservationTx) UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindByID loads a single reservation. ErrNotFound is returned when no
// row with the given id exists.
func (r *ReservationRepo) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return res, err
}

// ListByDate returns all reservations for a calendar day, ordered by room
// and start slot for deterministic output.
func (r *ReservationRepo) ListByDate(ctx context.Context, date model.Date) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE date = ? ORDER BY room_id, start_slot`,
		date.String())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListByUser returns all of a user's reservations, newest day first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY date DESC, start_slot`,
		userID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListAll returns every reservation. Intended for the admin view.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY date DESC, room_id, start_slot`)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListCurrent returns active reservations whose slot range covers the
// given slot on the given day. Intended for the admin "in use now" view.
func (r *ReservationRepo) ListCurrent(ctx context.Context, date model.Date, slot int) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE date = ? AND start_slot <= ? AND end_slot >= ?
	             AND status IN ('RESERVED','CHECKED_IN')
	           ORDER BY room_id, start_slot`
	rows, err := r.db.QueryContext(ctx, q, date.String(), slot, slot)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// CheckInIfReserved stamps checkin_time and flips the status to CHECKED_IN
// in one conditional UPDATE. The status and checkin_time guards make the
// operation race-safe against the no-show sweep: whichever side commits
// first wins and the other observes zero affected rows.
func (r *ReservationRepo) CheckInIfReserved(ctx context.Context, id int64, at time.Time) (bool, error) {
	const q = `UPDATE reservations SET status = 'CHECKED_IN', checkin_time = ?
	           WHERE id = ? AND status = 'RESERVED' AND checkin_time IS NULL`
	result, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelIfReserved flips a still-RESERVED reservation to CANCELLED. The
// row is retained for audit history rather than deleted.
func (r *ReservationRepo) CancelIfReserved(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANCELLED' WHERE id = ? AND status = 'RESERVED'`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
