// Package repository defines the raw-SQL data access layer together with
// sentinel error values reused across repositories. The sentinels let
// higher layers such as the booking engine and handlers distinguish
// failure scenarios with errors.Is instead of inspecting driver errors.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup or row lock targets an
// id that does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation lookup targets
// an id (or a user scope) with no matching row.
var ErrReservationNotFound = errors.New("reservation not found")
