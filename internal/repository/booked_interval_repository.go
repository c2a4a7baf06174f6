package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/motel-reservation/internal/model"
)

// dateLayout is how DATE columns are rendered when used as query
// arguments.  Reads come back as time.Time because the connection is
// opened with parseTime=true.
const dateLayout = "2006-01-02"

// BookedIntervalRepo provides access to the room_booked_dates table,
// the list of half-open [start, end) intervals each room is committed
// to.  The non-overlap invariant on this table is enforced by the
// booking engine, which only appends intervals while holding the
// owning room's row lock.
type BookedIntervalRepo struct {
	db *sql.DB
}

// NewBookedIntervalRepo returns a new BookedIntervalRepo bound to the
// given database.
func NewBookedIntervalRepo(db *sql.DB) *BookedIntervalRepo { return &BookedIntervalRepo{db: db} }

// ListByRoomTx returns all booked intervals of one room, ordered by
// start date, within the provided transaction.  Callers that intend to
// append an interval must lock the room row first.  The select is a
// locking read: under REPEATABLE READ a plain select would serve the
// transaction's snapshot and miss an interval committed while waiting
// for the room lock.
func (r *BookedIntervalRepo) ListByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.BookedInterval, error) {
	const q = `SELECT start_date, end_date FROM room_booked_dates WHERE room_id = ? ORDER BY start_date FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntervals(rows)
}

// ListByRoom is the non-transactional read used when serving room
// details.
func (r *BookedIntervalRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.BookedInterval, error) {
	const q = `SELECT start_date, end_date FROM room_booked_dates WHERE room_id = ? ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntervals(rows)
}

// ListByRooms fetches the intervals of several rooms in one query and
// groups them by room id.  Rooms without bookings are absent from the
// map.  Passing an empty slice returns an empty map.
func (r *BookedIntervalRepo) ListByRooms(ctx context.Context, roomIDs []uint64) (map[uint64][]model.BookedInterval, error) {
	out := make(map[uint64][]model.BookedInterval)
	if len(roomIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(roomIDs))
	args := make([]interface{}, 0, len(roomIDs))
	for _, id := range roomIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT room_id, start_date, end_date FROM room_booked_dates WHERE room_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY room_id, start_date`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var roomID uint64
		var iv model.BookedInterval
		if err := rows.Scan(&roomID, &iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out[roomID] = append(out[roomID], iv)
	}
	return out, rows.Err()
}

// InsertTx appends an interval to a room's booked dates within the
// provided transaction.  The caller must already hold the room's row
// lock and have verified non-overlap against the existing intervals.
func (r *BookedIntervalRepo) InsertTx(ctx context.Context, tx *sql.Tx, roomID uint64, iv model.BookedInterval) error {
	const q = `INSERT INTO room_booked_dates (room_id, start_date, end_date) VALUES (?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, roomID, iv.Start.Format(dateLayout), iv.End.Format(dateLayout))
	return err
}

// DeleteExactTx removes the interval matching exactly {start, end} from
// a room.  Removing a pair that is no longer present affects zero rows
// and is not an error.
func (r *BookedIntervalRepo) DeleteExactTx(ctx context.Context, tx *sql.Tx, roomID uint64, iv model.BookedInterval) error {
	const q = `DELETE FROM room_booked_dates WHERE room_id = ? AND start_date = ? AND end_date = ?`
	_, err := tx.ExecContext(ctx, q, roomID, iv.Start.Format(dateLayout), iv.End.Format(dateLayout))
	return err
}

func collectIntervals(rows *sql.Rows) ([]model.BookedInterval, error) {
	out := make([]model.BookedInterval, 0)
	for rows.Next() {
		var iv model.BookedInterval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}
