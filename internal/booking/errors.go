// Package booking implements the reservation engine: room allocation,
// interval conflict checking and the reservation lifecycle (rebind,
// cancel, check-in, check-out).  Every mutating operation runs inside a
// single transaction and serialises on the target room's row lock, so
// no room can end up double-booked for overlapping date ranges.
package booking

import "errors"

// ErrNoRoomAvailable is returned when no room matches the requested
// attributes and date range.  Callers may retry with different dates;
// the engine never retries on its own.
var ErrNoRoomAvailable = errors.New("no available rooms found")

// ErrNotOwner is returned when a caller operates on a reservation that
// belongs to another user.  Handlers translate this into HTTP 401.
var ErrNotOwner = errors.New("reservation belongs to another user")

// ErrInvalidStay is returned when a stay request has a non-positive
// duration.
var ErrInvalidStay = errors.New("stay duration must be at least one night")

// ErrCheckInNotAllowed is returned when check-in is attempted outside
// the [start, end) window of the selected reservation.
var ErrCheckInNotAllowed = errors.New("check-in not allowed at this time")

// ErrCheckOutNotAllowed is returned when check-out is attempted outside
// the [start, end] window of the selected reservation.  The inclusive
// end differs from check-in on purpose: guests may check out on the
// checkout day itself.
var ErrCheckOutNotAllowed = errors.New("check-out not allowed at this time")
