package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/motel-reservation/internal/model"
	"github.com/iliyamo/motel-reservation/internal/repository"
)

// Lifecycle transitions existing reservations: rebind to a new room and
// dates, cancel, check-in and check-out.  Per reservation the states
// are Booked -> CheckedIn -> CheckedOut, with cancellation reachable
// from any non-terminal state through an explicit Cancel call.
type Lifecycle struct {
	db           *sql.DB
	rooms        *repository.RoomRepo
	intervals    *repository.BookedIntervalRepo
	reservations *repository.ReservationRepo
}

// NewLifecycle constructs a Lifecycle.  All dependencies must be
// non-nil.
func NewLifecycle(db *sql.DB, rooms *repository.RoomRepo, intervals *repository.BookedIntervalRepo, reservations *repository.ReservationRepo) *Lifecycle {
	if db == nil || rooms == nil || intervals == nil || reservations == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	return &Lifecycle{db: db, rooms: rooms, intervals: intervals, reservations: reservations}
}

// Rebind moves a reservation to new dates on a different room.  The
// caller must own the reservation.  Candidate rooms must be available,
// match the requested type, sleep at least the requested capacity
// (minimum match, unlike allocation) and pass the broader
// RebindConflicts test against the target dates.  On success the old
// reservation and its interval are replaced by new ones in the same
// transaction, so the intermediate deleted state is never observable.
// The reservation id is not preserved.  When no candidate fits, the
// transaction rolls back and the original reservation is untouched.
func (l *Lifecycle) Rebind(ctx context.Context, userID, reservationID uint64, req StayRequest) (*model.Reservation, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidStay
	}
	want := model.BookedInterval{Start: req.StartDate, End: req.EndDate()}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	old, err := l.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if old.UserID != userID {
		return nil, ErrNotOwner
	}

	candidates, err := l.rooms.FindAvailableTx(ctx, tx, repository.RoomFilter{
		Type:        req.Type,
		MinCapacity: req.Capacity,
		ExcludeID:   old.RoomID,
	})
	if err != nil {
		return nil, err
	}

	for _, room := range candidates {
		if err := l.rooms.LockTx(ctx, tx, room.ID); err != nil {
			return nil, err
		}
		existing, err := l.intervals.ListByRoomTx(ctx, tx, room.ID)
		if err != nil {
			return nil, err
		}
		if RebindConflicts(existing, want) {
			continue
		}

		if err := l.reservations.DeleteTx(ctx, tx, old.ID); err != nil {
			return nil, err
		}
		if err := l.intervals.DeleteExactTx(ctx, tx, old.RoomID, old.Interval()); err != nil {
			return nil, err
		}
		res := &model.Reservation{
			UserID:    userID,
			RoomID:    room.ID,
			StartDate: want.Start,
			EndDate:   want.End,
		}
		if err := l.reservations.CreateTx(ctx, tx, res); err != nil {
			return nil, err
		}
		if err := l.intervals.InsertTx(ctx, tx, room.ID, want); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return res, nil
	}
	return nil, ErrNoRoomAvailable
}

// Cancel deletes a reservation, removes the exact matching interval
// from its room and sets the room status back to available.  A second
// cancel of the same id returns repository.ErrReservationNotFound.  A
// room deleted underneath the reservation is tolerated: the interval
// and status updates then affect no rows.
func (l *Lifecycle) Cancel(ctx context.Context, reservationID uint64) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := l.reservations.GetByIDTx(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if err := l.reservations.DeleteTx(ctx, tx, res.ID); err != nil {
		return err
	}
	if err := l.intervals.DeleteExactTx(ctx, tx, res.RoomID, res.Interval()); err != nil {
		return err
	}
	if err := l.rooms.SetStatusTx(ctx, tx, res.RoomID, model.RoomStatusAvailable); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CheckIn marks the caller's current reservation as checked in and the
// room as occupied.  The candidate is the reservation with the latest
// start date at or before now; check-in is valid within [start, end).
func (l *Lifecycle) CheckIn(ctx context.Context, userID uint64, now time.Time) (*model.Reservation, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := l.reservations.FindCheckInCandidateTx(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}
	if now.Before(res.StartDate) || !now.Before(res.EndDate) {
		return nil, ErrCheckInNotAllowed
	}
	if err := l.reservations.SetCheckedInTx(ctx, tx, res.ID); err != nil {
		return nil, err
	}
	if err := l.rooms.SetStatusTx(ctx, tx, res.RoomID, model.RoomStatusOccupied); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.CheckedIn = true
	return res, nil
}

// CheckOut marks the caller's reservation as checked out and frees the
// room.  The candidate is the unfinished reservation with the earliest
// end date at or after now; check-out is valid within [start, end],
// end inclusive.
func (l *Lifecycle) CheckOut(ctx context.Context, userID uint64, now time.Time) (*model.Reservation, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := l.reservations.FindCheckOutCandidateTx(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}
	if now.Before(res.StartDate) || now.After(res.EndDate) {
		return nil, ErrCheckOutNotAllowed
	}
	if err := l.reservations.SetCheckedOutTx(ctx, tx, res.ID); err != nil {
		return nil, err
	}
	if err := l.rooms.SetStatusTx(ctx, tx, res.RoomID, model.RoomStatusAvailable); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	res.CheckedOut = true
	return res, nil
}
