package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/motel-reservation/internal/repository"
)

func TestRebindMovesReservation(t *testing.T) {
	_, lc, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockReservation)).WithArgs(7).
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), false, false))
	// Minimum capacity match, old room excluded.
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms+` AND capacity >= ? AND id <> ? ORDER BY id`)).
		WithArgs("available", 2, 1).
		WillReturnRows(roomRow(3, "203", 2, 2, "double"))
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(3).
		WillReturnRows(intervalRows())
	mock.ExpectExec(regexp.QuoteMeta(deleteReservation)).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteInterval)).
		WithArgs(1, "2026-09-01", "2026-09-04").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertReservation)).
		WithArgs(42, 3, "2026-09-10", "2026-09-13").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectReservation)).WithArgs(21).
		WillReturnRows(reservationRow(21, 42, 3, day(10), day(13), false, false))
	mock.ExpectExec(regexp.QuoteMeta(insertInterval)).
		WithArgs(3, "2026-09-10", "2026-09-13").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	res, err := lc.Rebind(context.Background(), 42, 7, StayRequest{
		StartDate: day(10),
		Duration:  3,
		Capacity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.RoomID)
	assert.NotEqual(t, uint64(7), res.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A booking that merely touches the target window disqualifies the room
// during rebind, and the failed attempt must leave the original
// reservation untouched.
func TestRebindRollsBackWhenNoRoomFits(t *testing.T) {
	_, lc, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockReservation)).WithArgs(7).
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), false, false))
	mock.ExpectQuery(regexp.QuoteMeta(selectRooms+` AND id <> ? ORDER BY id`)).
		WithArgs("available", 1).
		WillReturnRows(roomRow(3, "203", 2, 2, "double"))
	mock.ExpectQuery(regexp.QuoteMeta(lockRoom)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(selectIntervals)).WithArgs(3).
		WillReturnRows(intervalRows(iv(13, 15)))
	mock.ExpectRollback()

	_, err := lc.Rebind(context.Background(), 42, 7, StayRequest{StartDate: day(10), Duration: 3})
	assert.ErrorIs(t, err, ErrNoRoomAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebindRejectsForeignReservation(t *testing.T) {
	_, lc, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockReservation)).WithArgs(7).
		WillReturnRows(reservationRow(7, 99, 1, day(1), day(4), false, false))
	mock.ExpectRollback()

	_, err := lc.Rebind(context.Background(), 42, 7, StayRequest{StartDate: day(10), Duration: 3})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRemovesReservationAndInterval(t *testing.T) {
	_, lc, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockReservation)).WithArgs(7).
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), false, false))
	mock.ExpectExec(regexp.QuoteMeta(deleteReservation)).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteInterval)).
		WithArgs(1, "2026-09-01", "2026-09-04").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateRoomStatus)).
		WithArgs("available", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, lc.Cancel(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelMissingReservation(t *testing.T) {
	_, lc, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockReservation)).WithArgs(7).
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), false, false))
	mock.ExpectExec(regexp.QuoteMeta(deleteReservation)).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteInterval)).
		WithArgs(1, "2026-09-01", "2026-09-04").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(updateRoomStatus)).
		WithArgs("available", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, lc.Cancel(context.Background(), 7))

	// The second cancel of the same id finds nothing.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockReservation)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := lc.Cancel(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInWithinWindow(t *testing.T) {
	_, lc, mock := newBookingTest(t)
	now := day(2).Add(15 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(checkInCandidate)).
		WithArgs(42, "2026-09-02 15:00:00").
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), false, false))
	mock.ExpectExec(regexp.QuoteMeta(setCheckedIn)).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateRoomStatus)).
		WithArgs("occupied", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := lc.CheckIn(context.Background(), 42, now)
	require.NoError(t, err)
	assert.True(t, res.CheckedIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The check-in window is [start, end): arriving on the checkout date is
// rejected even though an older reservation still matches the query.
func TestCheckInRejectedAtEndDate(t *testing.T) {
	_, lc, mock := newBookingTest(t)
	now := day(4)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(checkInCandidate)).
		WithArgs(42, "2026-09-04 00:00:00").
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), false, false))
	mock.ExpectRollback()

	_, err := lc.CheckIn(context.Background(), 42, now)
	assert.ErrorIs(t, err, ErrCheckInNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInWithoutReservation(t *testing.T) {
	_, lc, mock := newBookingTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(checkInCandidate)).
		WithArgs(42, "2026-09-02 00:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := lc.CheckIn(context.Background(), 42, day(2))
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The check-out window is [start, end], end inclusive: leaving exactly
// on the end date succeeds.
func TestCheckOutOnEndDate(t *testing.T) {
	_, lc, mock := newBookingTest(t)
	now := day(4)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(checkOutCandidate)).
		WithArgs(42, "2026-09-04 00:00:00").
		WillReturnRows(reservationRow(7, 42, 1, day(1), day(4), true, false))
	mock.ExpectExec(regexp.QuoteMeta(setCheckedOut)).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateRoomStatus)).
		WithArgs("available", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := lc.CheckOut(context.Background(), 42, now)
	require.NoError(t, err)
	assert.True(t, res.CheckedOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutBeforeStayBegins(t *testing.T) {
	_, lc, mock := newBookingTest(t)
	now := day(2)

	// The earliest unfinished reservation has not started yet.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(checkOutCandidate)).
		WithArgs(42, "2026-09-02 00:00:00").
		WillReturnRows(reservationRow(7, 42, 1, day(10), day(13), false, false))
	mock.ExpectRollback()

	_, err := lc.CheckOut(context.Background(), 42, now)
	assert.ErrorIs(t, err, ErrCheckOutNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
