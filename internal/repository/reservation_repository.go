package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/motel-reservation/internal/model"
)

// timeLayout renders instants for comparison against DATE columns.
// MySQL widens the DATE side to midnight, which matches the half-open
// stay semantics used by the check-in and check-out windows.
const timeLayout = "2006-01-02 15:04:05"

// ReservationRepo provides CRUD operations for reservations.  A
// reservation is the single source of truth for a stay; listings are
// served by querying this table by user id rather than through a
// denormalized per-user reference list.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, room_id, start_date, end_date, checked_in, checked_out, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }, res *model.Reservation) error {
	return row.Scan(&res.ID, &res.UserID, &res.RoomID, &res.StartDate, &res.EndDate,
		&res.CheckedIn, &res.CheckedOut, &res.CreatedAt, &res.UpdatedAt)
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated id and timestamps on the
// provided struct.  Check-in and check-out flags default to false in
// the schema.  The caller must commit or roll back the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, room_id, start_date, end_date) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.RoomID,
		res.StartDate.Format(dateLayout), res.EndDate.Format(dateLayout))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	sel := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(tx.QueryRowContext(ctx, sel, res.ID), res)
}

// GetByID returns a reservation by id or ErrReservationNotFound.
// Ownership is checked by the caller so that a mismatch can be
// reported as unauthorized rather than missing.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByIDTx is GetByID within a transaction, locking the row so that
// rebind and cancel do not race a concurrent mutation of the same
// reservation.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	var res model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ListByUser returns all reservations created by a user, newest first.
// When none exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// DeleteTx removes a reservation within a transaction.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// FindCheckInCandidateTx returns the caller's reservation eligible for
// check-in: the one with the latest start date at or before now.  The
// row is locked so the flag update cannot race.  Returns
// ErrReservationNotFound when the user has no started reservation.
func (r *ReservationRepo) FindCheckInCandidateTx(ctx context.Context, tx *sql.Tx, userID uint64, now time.Time) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? AND start_date <= ? ORDER BY start_date DESC LIMIT 1 FOR UPDATE`
	var res model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx, q, userID, now.UTC().Format(timeLayout)), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindCheckOutCandidateTx returns the caller's reservation eligible for
// check-out: not yet checked out, ending at or after now, earliest end
// date first.  Returns ErrReservationNotFound when there is none.
func (r *ReservationRepo) FindCheckOutCandidateTx(ctx context.Context, tx *sql.Tx, userID uint64, now time.Time) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? AND checked_out = 0 AND end_date >= ? ORDER BY end_date LIMIT 1 FOR UPDATE`
	var res model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx, q, userID, now.UTC().Format(timeLayout)), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// SetCheckedInTx marks a reservation as checked in.
func (r *ReservationRepo) SetCheckedInTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE reservations SET checked_in = 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// SetCheckedOutTx marks a reservation as checked out.
func (r *ReservationRepo) SetCheckedOutTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE reservations SET checked_out = 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
