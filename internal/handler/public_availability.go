package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motel-reservation/internal/booking"
	"github.com/iliyamo/motel-reservation/internal/model"
	"github.com/iliyamo/motel-reservation/internal/repository"
)

// PublicHandler serves unauthenticated browse endpoints.  Guests can
// check which rooms are free for a date window before registering.
type PublicHandler struct {
	RoomRepo     *repository.RoomRepo
	IntervalRepo *repository.BookedIntervalRepo
}

// NewPublicHandler constructs a PublicHandler.  All dependencies must
// be non-nil.
func NewPublicHandler(roomRepo *repository.RoomRepo, intervalRepo *repository.BookedIntervalRepo) *PublicHandler {
	if roomRepo == nil || intervalRepo == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{RoomRepo: roomRepo, IntervalRepo: intervalRepo}
}

// availableRoomView hides booked dates and timestamps from guests.
type availableRoomView struct {
	ID         uint64 `json:"id"`
	Number     string `json:"number"`
	Floor      int    `json:"floor"`
	Type       string `json:"type"`
	Capacity   int    `json:"capacity"`
	PriceCents uint32 `json:"price_cents"`
}

// GetAvailability handles GET /v1/availability.  Query parameters:
// start (YYYY-MM-DD, required), nights (positive int, required), and
// optional type, floor and capacity equality filters.  A room is listed
// when its status is available and none of its booked intervals overlap
// the window under the half-open rule, so a stay ending on the
// requested start date does not exclude the room.
func (h *PublicHandler) GetAvailability(c echo.Context) error {
	start, err := parseDate(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start"})
	}
	nights, err := strconv.Atoi(c.QueryParam("nights"))
	if err != nil || nights <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nights must be a positive integer"})
	}
	filter := repository.RoomFilter{Type: c.QueryParam("type")}
	if v := c.QueryParam("floor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid floor"})
		}
		filter.Floor = n
	}
	if v := c.QueryParam("capacity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid capacity"})
		}
		filter.Capacity = n
	}

	ctx := c.Request().Context()
	rooms, err := h.RoomRepo.FindAvailable(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	ids := make([]uint64, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	booked, err := h.IntervalRepo.ListByRooms(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booked dates"})
	}

	want := model.BookedInterval{Start: start, End: start.AddDate(0, 0, nights)}
	free := make([]availableRoomView, 0, len(rooms))
	for _, r := range rooms {
		if booking.Overlaps(booked[r.ID], want) {
			continue
		}
		free = append(free, availableRoomView{
			ID:         r.ID,
			Number:     r.Number,
			Floor:      r.Floor,
			Type:       r.Type,
			Capacity:   r.Capacity,
			PriceCents: r.PriceCents,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": free})
}
