package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motel-reservation/internal/booking"
	"github.com/iliyamo/motel-reservation/internal/model"
	"github.com/iliyamo/motel-reservation/internal/queue"
	"github.com/iliyamo/motel-reservation/internal/repository"
	publisher "github.com/iliyamo/motel-reservation/internal/service"
)

// GuestHandler exposes the reservation operations available to guests:
// create, list, get, update (rebind), cancel, check-in and check-out.
// JWT authentication and role validation happen in middleware; methods
// return 401 when the user id cannot be extracted from the context.
// All mutations run through the booking engine, which wraps them in a
// transaction.
type GuestHandler struct {
	Allocator       *booking.Allocator
	Lifecycle       *booking.Lifecycle
	ReservationRepo *repository.ReservationRepo
}

// NewGuestHandler constructs a GuestHandler with the provided engine
// components.  All dependencies must be non-nil.
func NewGuestHandler(alloc *booking.Allocator, lc *booking.Lifecycle, resRepo *repository.ReservationRepo) *GuestHandler {
	if alloc == nil || lc == nil || resRepo == nil {
		panic("nil dependency passed to NewGuestHandler")
	}
	return &GuestHandler{Allocator: alloc, Lifecycle: lc, ReservationRepo: resRepo}
}

// stayRequestBody is the JSON shape shared by create and update.
type stayRequestBody struct {
	StartDate string `json:"start_date"`
	Duration  int    `json:"duration"`
	Type      string `json:"type"`
	Floor     int    `json:"floor"`
	Capacity  int    `json:"capacity"`
}

// reservationView is the reservation shape returned to guests.
type reservationView struct {
	ID         uint64 `json:"id"`
	RoomID     uint64 `json:"room_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	CheckedIn  bool   `json:"checked_in"`
	CheckedOut bool   `json:"checked_out"`
}

func viewOf(res *model.Reservation) reservationView {
	return reservationView{
		ID:         res.ID,
		RoomID:     res.RoomID,
		StartDate:  res.StartDate.Format(dateLayout),
		EndDate:    res.EndDate.Format(dateLayout),
		CheckedIn:  res.CheckedIn,
		CheckedOut: res.CheckedOut,
	}
}

// CreateReservation handles POST /v1/reservations.  It allocates the
// first free room matching the requested dates and optional filters,
// returning 201 with the room and dates, 404 when every matching room
// conflicts, and 400 for malformed input.
func (h *GuestHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body stayRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	if body.Duration <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be positive"})
	}

	res, err := h.Allocator.Allocate(c.Request().Context(), userID, booking.StayRequest{
		StartDate: start,
		Duration:  body.Duration,
		Type:      body.Type,
		Floor:     body.Floor,
		Capacity:  body.Capacity,
	})
	if err != nil {
		if errors.Is(err, booking.ErrNoRoomAvailable) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no available rooms found"})
		}
		if errors.Is(err, booking.ErrInvalidStay) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	// Event delivery is best effort; failures are logged by the
	// publisher and never fail the booked request.
	_ = publisher.PublishReservationEvent(c.Request().Context(), queue.NewReservationEvent(queue.EventConfirmed, res))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Reservation created successfully",
		"reservation_info": echo.Map{
			"room_id":    res.RoomID,
			"start_date": res.StartDate.Format(dateLayout),
			"end_date":   res.EndDate.Format(dateLayout),
		},
	})
}

// ListReservations handles GET /v1/my-reservations.  It returns all
// reservations of the current user, newest first; an empty list is a
// 200 with no items.
func (h *GuestHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.ReservationRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	views := make([]reservationView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// GetReservation handles GET /v1/reservations/:id.  The reservation is
// looked up by id and ownership is checked afterwards, so a foreign
// reservation yields 401 rather than 404.
func (h *GuestHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.ReservationRepo.GetByID(c.Request().Context(), resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if res.UserID != userID {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": viewOf(res)})
}

// UpdateReservation handles PUT /v1/reservations/:id.  The stay is
// rebound to a different room for the new dates; the old reservation is
// replaced in the same transaction and its id is not preserved.  404 is
// returned both for a missing reservation and when no candidate room
// fits, leaving the original untouched in the latter case.
func (h *GuestHandler) UpdateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body stayRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	if body.Duration <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be positive"})
	}

	res, err := h.Lifecycle.Rebind(c.Request().Context(), userID, resID, booking.StayRequest{
		StartDate: start,
		Duration:  body.Duration,
		Type:      body.Type,
		Capacity:  body.Capacity,
	})
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		if errors.Is(err, booking.ErrNotOwner) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if errors.Is(err, booking.ErrNoRoomAvailable) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no available rooms matching the criteria"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}

	_ = publisher.PublishReservationEvent(c.Request().Context(), queue.NewReservationEvent(queue.EventConfirmed, res))

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Reservation updated successfully",
		"reservation": viewOf(res),
	})
}

// CancelReservation handles DELETE /v1/reservations/:id.  Cancelling
// removes the reservation, releases the room's interval and frees the
// room.  Repeating the call yields 404.
func (h *GuestHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Lifecycle.Cancel(c.Request().Context(), resID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}

	_ = publisher.PublishReservationEvent(c.Request().Context(), queue.ReservationEvent{
		Event:         queue.EventCancelled,
		ReservationID: resID,
		UserID:        userID,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation cancelled successfully"})
}

// CheckIn handles POST /v1/check-in.  It selects the caller's started
// reservation and marks it checked in; outside the [start, end) window
// the request fails with 400.
func (h *GuestHandler) CheckIn(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Lifecycle.CheckIn(c.Request().Context(), userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		if errors.Is(err, booking.ErrCheckInNotAllowed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check in"})
	}

	_ = publisher.PublishReservationEvent(c.Request().Context(), queue.NewReservationEvent(queue.EventCheckedIn, res))

	return c.JSON(http.StatusOK, echo.Map{"message": "You have checked in!"})
}

// CheckOut handles POST /v1/check-out.  It selects the caller's
// unfinished reservation and marks it checked out; the window is
// [start, end] with the end date included, unlike check-in.
func (h *GuestHandler) CheckOut(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Lifecycle.CheckOut(c.Request().Context(), userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no reservation found for check-out"})
		}
		if errors.Is(err, booking.ErrCheckOutNotAllowed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check out"})
	}

	_ = publisher.PublishReservationEvent(c.Request().Context(), queue.NewReservationEvent(queue.EventCheckedOut, res))

	return c.JSON(http.StatusOK, echo.Map{"message": "You have checked out!"})
}
