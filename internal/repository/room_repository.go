package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/motel-reservation/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Rooms hold the static
// attributes of the inventory (number, floor, type, capacity, price)
// plus a status flag.  The booked date intervals owned by a room live
// in the room_booked_dates table and are managed by BookedIntervalRepo.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// RoomFilter restricts a room search.  Zero values mean "no filter"
// for the corresponding attribute.  Capacity and MinCapacity are
// mutually exclusive: the allocator matches capacity exactly while the
// rebind flow accepts any room sleeping at least the requested number.
type RoomFilter struct {
	Type        string // equality match on rooms.room_type
	Floor       int    // equality match on rooms.floor
	Capacity    int    // equality match on rooms.capacity
	MinCapacity int    // rooms.capacity >= MinCapacity
	ExcludeID   uint64 // skip this room id
}

const roomColumns = `id, number, floor, room_type, capacity, price_cents, status, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }, rm *model.Room) error {
	return row.Scan(&rm.ID, &rm.Number, &rm.Floor, &rm.Type, &rm.Capacity,
		&rm.PriceCents, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt)
}

// Create inserts a new room and populates the generated id and
// timestamps on the provided struct.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (number, floor, room_type, capacity, price_cents, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.Number, rm.Floor, rm.Type, rm.Capacity, rm.PriceCents, rm.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	sel := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, sel, rm.ID), rm)
}

// GetByID returns a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	var rm model.Room
	if err := scanRoom(r.db.QueryRowContext(ctx, q, id), &rm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// List returns all rooms ordered by id.  Booked intervals are not
// populated; use BookedIntervalRepo.ListByRooms for that.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := scanRoom(rows, &rm); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// FindAvailableTx returns rooms with status 'available' matching the
// filter, ordered by ascending id so that the first match is stable
// across runs.  The query runs inside the provided transaction because
// callers immediately lock and book one of the candidates.
func (r *RoomRepo) FindAvailableTx(ctx context.Context, tx *sql.Tx, f RoomFilter) ([]model.Room, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + roomColumns + ` FROM rooms WHERE status = ?`)
	args := []interface{}{model.RoomStatusAvailable}
	if f.Type != "" {
		b.WriteString(` AND room_type = ?`)
		args = append(args, f.Type)
	}
	if f.Floor != 0 {
		b.WriteString(` AND floor = ?`)
		args = append(args, f.Floor)
	}
	if f.Capacity != 0 {
		b.WriteString(` AND capacity = ?`)
		args = append(args, f.Capacity)
	}
	if f.MinCapacity != 0 {
		b.WriteString(` AND capacity >= ?`)
		args = append(args, f.MinCapacity)
	}
	if f.ExcludeID != 0 {
		b.WriteString(` AND id <> ?`)
		args = append(args, f.ExcludeID)
	}
	b.WriteString(` ORDER BY id`)
	rows, err := tx.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		var rm model.Room
		if err := scanRoom(rows, &rm); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// FindAvailable is the non-transactional variant used by the public
// availability search, which only reads.
func (r *RoomRepo) FindAvailable(ctx context.Context, f RoomFilter) ([]model.Room, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	rooms, err := r.FindAvailableTx(ctx, tx, f)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// LockTx takes an exclusive row lock on the room for the duration of
// the transaction.  The lock serialises concurrent bookings against the
// same room: the interval overlap check that follows runs under it, so
// at most one conflicting booking can commit.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `SELECT id FROM rooms WHERE id = ? FOR UPDATE`
	var got uint64
	if err := tx.QueryRowContext(ctx, q, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	return nil
}

// SetStatusTx updates a room's status within a transaction.  Updating a
// missing room affects zero rows and is not an error; cancel tolerates
// rooms that were deleted underneath a reservation.
func (r *RoomRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE rooms SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// SetStatus is the non-transactional variant used by admin handlers.
// It returns ErrRoomNotFound when the room does not exist.  Existence is
// checked explicitly because MySQL reports zero affected rows for a
// no-op update, which would be indistinguishable from a missing room.
func (r *RoomRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	var got uint64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = ?`, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET status = ? WHERE id = ?`, status, id)
	return err
}
