package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/motel-reservation/internal/model"
	"github.com/iliyamo/motel-reservation/internal/repository"
)

// StayRequest describes the stay a guest asks for.  Type, Floor and
// Capacity are optional filters; their zero values mean "any".  For
// allocation Capacity is an exact match, for rebind it is a minimum —
// that asymmetry is part of the contract.
type StayRequest struct {
	StartDate time.Time // first night of the stay (date precision)
	Duration  int       // number of nights; must be positive
	Type      string    // optional room type filter
	Floor     int       // optional floor filter (allocation only)
	Capacity  int       // optional capacity filter
}

// EndDate derives the exclusive checkout date.
func (s StayRequest) EndDate() time.Time {
	return s.StartDate.AddDate(0, 0, s.Duration)
}

// Allocator matches a stay request to a free room and books it.  The
// candidate scan, overlap check and writes all happen inside one
// transaction; the room row lock taken before the overlap check makes
// the check-then-act sequence safe under concurrent requests.
type Allocator struct {
	db           *sql.DB
	rooms        *repository.RoomRepo
	intervals    *repository.BookedIntervalRepo
	reservations *repository.ReservationRepo
}

// NewAllocator constructs an Allocator.  All dependencies must be
// non-nil.
func NewAllocator(db *sql.DB, rooms *repository.RoomRepo, intervals *repository.BookedIntervalRepo, reservations *repository.ReservationRepo) *Allocator {
	if db == nil || rooms == nil || intervals == nil || reservations == nil {
		panic("nil dependency passed to NewAllocator")
	}
	return &Allocator{db: db, rooms: rooms, intervals: intervals, reservations: reservations}
}

// Allocate finds the first available room (ascending id) matching the
// request whose booked intervals do not overlap the requested range,
// creates the reservation and appends the interval to the room.  It
// returns ErrNoRoomAvailable when every matching room conflicts.
func (a *Allocator) Allocate(ctx context.Context, userID uint64, req StayRequest) (*model.Reservation, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidStay
	}
	want := model.BookedInterval{Start: req.StartDate, End: req.EndDate()}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	candidates, err := a.rooms.FindAvailableTx(ctx, tx, repository.RoomFilter{
		Type:     req.Type,
		Floor:    req.Floor,
		Capacity: req.Capacity,
	})
	if err != nil {
		return nil, err
	}

	for _, room := range candidates {
		// Candidates are locked one at a time in id order, which keeps
		// concurrent allocators from deadlocking on each other.
		if err := a.rooms.LockTx(ctx, tx, room.ID); err != nil {
			return nil, err
		}
		existing, err := a.intervals.ListByRoomTx(ctx, tx, room.ID)
		if err != nil {
			return nil, err
		}
		if Overlaps(existing, want) {
			continue
		}

		res := &model.Reservation{
			UserID:    userID,
			RoomID:    room.ID,
			StartDate: want.Start,
			EndDate:   want.End,
		}
		if err := a.reservations.CreateTx(ctx, tx, res); err != nil {
			return nil, err
		}
		if err := a.intervals.InsertTx(ctx, tx, room.ID, want); err != nil {
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
