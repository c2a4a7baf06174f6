package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motel-reservation/internal/model"
	"github.com/iliyamo/motel-reservation/internal/repository"
)

// AdminHandler exposes room inventory management to administrators.
// Booked intervals are read-only here: only the booking engine mutates
// them.
type AdminHandler struct {
	RoomRepo     *repository.RoomRepo
	IntervalRepo *repository.BookedIntervalRepo
}

// NewAdminHandler constructs an AdminHandler.  All dependencies must be
// non-nil.
func NewAdminHandler(roomRepo *repository.RoomRepo, intervalRepo *repository.BookedIntervalRepo) *AdminHandler {
	if roomRepo == nil || intervalRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{RoomRepo: roomRepo, IntervalRepo: intervalRepo}
}

func validRoomStatus(s string) bool {
	switch s {
	case model.RoomStatusAvailable, model.RoomStatusOccupied, model.RoomStatusUnderMaintenance:
		return true
	}
	return false
}

// CreateRoom handles POST /v1/rooms.  Status defaults to available when
// omitted.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	var body struct {
		Number     string `json:"number"`
		Floor      int    `json:"floor"`
		Type       string `json:"type"`
		Capacity   int    `json:"capacity"`
		PriceCents uint32 `json:"price_cents"`
		Status     string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Number == "" || body.Type == "" || body.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number, type and capacity are required"})
	}
	if body.Status == "" {
		body.Status = model.RoomStatusAvailable
	}
	if !validRoomStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown room status"})
	}
	room := &model.Room{
		Number:     body.Number,
		Floor:      body.Floor,
		Type:       body.Type,
		Capacity:   body.Capacity,
		PriceCents: body.PriceCents,
		Status:     body.Status,
	}
	if err := h.RoomRepo.Create(c.Request().Context(), room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}
	room.BookedDates = []model.BookedInterval{}
	return c.JSON(http.StatusCreated, echo.Map{"room": room})
}

// GetRoom handles GET /v1/rooms/:id.  The room is returned with its
// booked intervals so an administrator can see its commitments.
func (h *AdminHandler) GetRoom(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	room, err := h.RoomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch room"})
	}
	booked, err := h.IntervalRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booked dates"})
	}
	room.BookedDates = booked
	return c.JSON(http.StatusOK, echo.Map{"room": room})
}

// ListRooms handles GET /v1/rooms.  Each room is returned with its
// booked intervals, fetched for all rooms in a single query.
func (h *AdminHandler) ListRooms(c echo.Context) error {
	ctx := c.Request().Context()
	rooms, err := h.RoomRepo.List(ctx)
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
	for i := range rooms {
		if ivs, ok := booked[rooms[i].ID]; ok {
			rooms[i].BookedDates = ivs
		} else {
			rooms[i].BookedDates = []model.BookedInterval{}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// UpdateRoomStatus handles PATCH /v1/rooms/:id/status.  It flips a room
// between available and under-maintenance (or occupied, though the
// engine normally owns that transition).
func (h *AdminHandler) UpdateRoomStatus(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !validRoomStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown room status"})
	}
	if err := h.RoomRepo.SetStatus(c.Request().Context(), roomID, body.Status); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room status"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Room status updated"})
}
