package model

import "time"

// Room statuses.  The set is stored as plain strings in the database so
// new statuses can be introduced without a schema change.
const (
	RoomStatusAvailable        = "available"
	RoomStatusOccupied         = "occupied"
	RoomStatusUnderMaintenance = "under-maintenance"
)

// Room describes a single motel room and its static attributes.  A room
// exclusively owns its booked date intervals; those are mutated only by
// the booking engine, never by admin CRUD.
//
// Fields:
//  ID         – primary key identifier.
//  Number     – door number, e.g. "101".
//  Floor      – floor the room is on.
//  Type       – room category ("single", "double", "suite", ...).
//  Capacity   – number of guests the room sleeps.
//  PriceCents – nightly price in cents.
//  Status     – one of the RoomStatus constants.
//  BookedDates – intervals during which the room is committed.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Room struct {
	ID          uint64           `json:"id"`           // rooms.id
	Number      string           `json:"number"`       // rooms.number
	Floor       int              `json:"floor"`        // rooms.floor
	Type        string           `json:"type"`         // rooms.room_type
	Capacity    int              `json:"capacity"`     // rooms.capacity
	PriceCents  uint32           `json:"price_cents"`  // rooms.price_cents
	Status      string           `json:"status"`       // rooms.status
	BookedDates []BookedInterval `json:"booked_dates"` // room_booked_dates rows
	CreatedAt   time.Time        `json:"created_at"`   // rooms.created_at
	UpdatedAt   time.Time        `json:"updated_at"`   // rooms.updated_at
}

// BookedInterval is a half-open date range [Start, End) during which a
// room is committed to a reservation.  Touching endpoints do not
// conflict: the checkout day is available for a new check-in.
type BookedInterval struct {
	Start time.Time `json:"start_date"` // room_booked_dates.start_date
	End   time.Time `json:"end_date"`   // room_booked_dates.end_date
}
