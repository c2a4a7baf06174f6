package model

import "time"

// Reservation records a guest's stay in a specific room for a half-open
// date range [StartDate, EndDate).  While the reservation exists, the
// same interval is present in the room's booked dates; the booking
// engine keeps the two in step inside a single transaction.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – guest who made the reservation.
//  RoomID     – room being reserved.
//  StartDate  – first night of the stay.
//  EndDate    – checkout date (exclusive).
//  CheckedIn  – guest has checked in.
//  CheckedOut – guest has checked out.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    `json:"id"`          // reservations.id
	UserID     uint64    `json:"user_id"`     // reservations.user_id
	RoomID     uint64    `json:"room_id"`     // reservations.room_id
	StartDate  time.Time `json:"start_date"`  // reservations.start_date
	EndDate    time.Time `json:"end_date"`    // reservations.end_date
	CheckedIn  bool      `json:"checked_in"`  // reservations.checked_in
	CheckedOut bool      `json:"checked_out"` // reservations.checked_out
	CreatedAt  time.Time `json:"created_at"`  // reservations.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // reservations.updated_at
}

// Interval returns the reservation's stay as a booked interval.
func (r *Reservation) Interval() BookedInterval {
	return BookedInterval{Start: r.StartDate, End: r.EndDate}
}
