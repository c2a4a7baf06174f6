package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/motel-reservation/internal/model"
	"github.com/iliyamo/motel-reservation/internal/repository"
)

const (
	selectRooms       = `SELECT id, number, floor, room_type, capacity, price_cents, status, created_at, updated_at FROM rooms WHERE status = ?`
	lockRoom          = `SELECT id FROM rooms WHERE id = ? FOR UPDATE`
	selectIntervals   = `SELECT start_date, end_date FROM room_booked_dates WHERE room_id = ? ORDER BY start_date FOR UPDATE`
	insertReservation = `INSERT INTO reservations (user_id, room_id, start_date, end_date) VALUES (?, ?, ?, ?)`
	selectReservation = `SELECT id, user_id, room_id, start_date, end_date, checked_in, checked_out, created_at, updated_at FROM reservations WHERE id = ?`
	insertInterval    = `INSERT INTO room_booked_dates (room_id, start_date, end_date) VALUES (?, ?, ?)`
	deleteReservation = `DELETE FROM reservations WHERE id = ?`
	deleteInterval    = `DELETE FROM room_booked_dates WHERE room_id = ? AND start_date = ? AND end_date = ?`
	updateRoomStatus  = `UPDATE rooms SET status = ? WHERE id = ?`
	setCheckedIn      = `UPDATE reservations SET checked_in = 1 WHERE id = ?`
	setCheckedOut     = `UPDATE reservations SET checked_out = 1 WHERE id = ?`
	lockReservation   = `SELECT id, user_id, room_id, start_date, end_date, checked_in, checked_out, created_at, updated_at FROM reservations WHERE id = ? FOR UPDATE`
	checkInCandidate  = `SELECT id, user_id, room_id, start_date, end_date, checked_in, checked_out, created_at, updated_at FROM reservations WHERE user_id = ? AND start_date <= ? ORDER BY start_date DESC LIMIT 1 FOR UPDATE`
	checkOutCandidate = `SELECT id, user_id, room_id, start_date, end_date, checked_in, checked_out, created_at, updated_at FROM reservations WHERE user_id = ? AND checked_out = 0 AND end_date >= ? ORDER BY end_date LIMIT 1 FOR UPDATE`
)

func newBookingTest(t *testing.T) (*Allocator, *Lifecycle, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rooms := repository.NewRoomRepo(db)
	intervals := repository.NewBookedIntervalRepo(db)
	reservations := repository.NewReservationRepo(db)
	return NewAllocator(db, rooms, intervals, reservations),
		NewLifecycle(db, rooms, intervals, reservations),
		mock
}

func roomRow(id uint64, number string, floor, capacity int, roomType string) *sqlmock.Rows {
	return roomRows().AddRow(id, number, floor, roomType, capacity, 7000, "available", time.Now(), time.Now())
}

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "number", "floor", "room_type", "capacity", "price_cents", "status", "created_at", "updated_at"})
}

func intervalRows(ivs ...model.BookedInterval) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"start_date", "end_date"})
	for _, v := range ivs {
		rows.AddRow(v.Start, v.End)
	}
	return rows
}

func reservationRow(id, userID, roomID uint64, start, end time.Time, checkedIn, checkedOut bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "room_id", "start_date", "end_date", "checked_in", "checked_out", "created_at", "updated_at"}).
		AddRow(id, userID, roomID, start, end, checkedIn, checkedOut, time.Now(), time.Now())
}

func TestAllocateSkipsConflictingRoom(t *testing.T) {
	alloc, _, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms + ` AND room_type = ? ORDER BY id`)).
		WithArgs("available", "double").
		WillReturnRows(roomRows().
			AddRow(1, "103", 1, "double", 2, 7000, "available", time.Now(), time.Now()).
			AddRow(2, "104", 1, "double", 2, 8000, "available", time.Now(), time.Now()))

	// Room 1 already holds an overlapping booking.
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(1).
		WillReturnRows(intervalRows(iv(3, 7)))

	// Room 2 is free and gets the booking.
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(2).
		WillReturnRows(intervalRows())
	mock.ExpectExec(regexp.QuoteMeta(insertReservation)).
		WithArgs(42, 2, "2026-09-01", "2026-09-04").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectReservation)).WithArgs(11).
		WillReturnRows(reservationRow(11, 42, 2, day(1), day(4), false, false))
	mock.ExpectExec(regexp.QuoteMeta(insertInterval)).
		WithArgs(2, "2026-09-01", "2026-09-04").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := alloc.Allocate(context.Background(), 42, StayRequest{
		StartDate: day(1),
		Duration:  3,
		Type:      "double",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.RoomID)
	assert.Equal(t, uint64(11), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateAcceptsTouchingInterval(t *testing.T) {
	alloc, _, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms + ` ORDER BY id`)).
		WithArgs("available").
		WillReturnRows(roomRow(1, "103", 1, 2, "double"))
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// Existing stay ends the day the new one starts; checkout day is free.
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(1).
		WillReturnRows(intervalRows(iv(1, 4)))
	mock.ExpectExec(regexp.QuoteMeta(insertReservation)).
		WithArgs(42, 1, "2026-09-04", "2026-09-06").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectReservation)).WithArgs(12).
		WillReturnRows(reservationRow(12, 42, 1, day(4), day(6), false, false))
	mock.ExpectExec(regexp.QuoteMeta(insertInterval)).
		WithArgs(1, "2026-09-04", "2026-09-06").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	res, err := alloc.Allocate(context.Background(), 42, StayRequest{StartDate: day(4), Duration: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateNoRoomAvailable(t *testing.T) {
	alloc, _, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms + ` ORDER BY id`)).
		WithArgs("available").
		WillReturnRows(roomRow(1, "103", 1, 2, "double"))
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(1).
		WillReturnRows(intervalRows(iv(1, 4)))
	mock.ExpectRollback()

	_, err := alloc.Allocate(context.Background(), 42, StayRequest{StartDate: day(2), Duration: 3})
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The interval check runs as a locking read after the room row lock is
// acquired, so a booking committed by a concurrent request while this
// one waited on the lock is visible and the room is rejected.  A plain
// select would serve the transaction's earlier snapshot and let both
// bookings through.
func TestAllocateSeesIntervalCommittedDuringLockWait(t *testing.T) {
	alloc, _, mock := newBookingTest(t)

	mock.ExpectBegin()
	// Candidate scan from the transaction's snapshot: room 1 looks free.
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms + ` ORDER BY id`)).
		WithArgs("available").
		WillReturnRows(roomRow(1, "103", 1, 2, "double"))
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// The locking re-read returns the interval a concurrent booking
	// committed in the meantime.
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(1).
		WillReturnRows(intervalRows(iv(1, 4)))
	mock.ExpectRollback()

	_, err := alloc.Allocate(context.Background(), 42, StayRequest{StartDate: day(1), Duration: 3})
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateRejectsInvalidDuration(t *testing.T) {
	alloc, _, mock := newBookingTest(t)

	for _, nights := range []int{0, -2} {
		_, err := alloc.Allocate(context.Background(), 42, StayRequest{StartDate: day(1), Duration: nights})
		assert.ErrorIs(t, err, ErrInvalidStay)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateAppliesAllFilters(t *testing.T) {
	alloc, _, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms+` AND room_type = ? AND floor = ? AND capacity = ? ORDER BY id`)).
		WithArgs("available", "suite", 2, 4).
		WillReturnRows(roomRows())
	mock.ExpectRollback()

	_, err := alloc.Allocate(context.Background(), 42, StayRequest{
		StartDate: day(1),
		Duration:  2,
		Type:      "suite",
		Floor:     2,
		Capacity:  4,
	})
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
