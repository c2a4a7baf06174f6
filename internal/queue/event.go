// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/motel-reservation/internal/model"
)

// Event kinds carried by ReservationEvent.
const (
	EventConfirmed  = "reservation.confirmed"
	EventCancelled  = "reservation.cancelled"
	EventCheckedIn  = "reservation.checked_in"
	EventCheckedOut = "reservation.checked_out"
)

// ReservationEvent is published whenever a reservation changes state.
// It carries enough information for downstream consumers to log or
// notify without querying the primary database.  Dates use YYYY-MM-DD;
// OccurredAt is RFC3339.
type ReservationEvent struct {
	Event         string `json:"event"`
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	RoomID        uint64 `json:"room_id,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent builds an event of the given kind from a
// reservation record, stamping the current time.
func NewReservationEvent(kind string, res *model.Reservation) ReservationEvent {
	return ReservationEvent{
		Event:         kind,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		StartDate:     res.StartDate.Format("2006-01-02"),
		EndDate:       res.EndDate.Format("2006-01-02"),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
