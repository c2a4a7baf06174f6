// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motel-reservation/internal/handler"
	"github.com/iliyamo/motel-reservation/internal/middleware"
)

// RegisterPublic registers routes that require no authentication: the
// health check and the room availability search.  The cache middleware
// is applied only here; authenticated responses are never cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/availability", p.GetAvailability, cache)
}

// RegisterGuest registers guest-scoped endpoints under /v1.  All routes
// require a valid JWT and the GUEST role.  Guests create, list, update
// and cancel their own reservations and perform check-in/check-out.
func RegisterGuest(e *echo.Echo, h *handler.GuestHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("GUEST"),
	)
	g.POST("/reservations", h.CreateReservation)
	g.GET("/my-reservations", h.ListReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.PUT("/reservations/:id", h.UpdateReservation)
	g.DELETE("/reservations/:id", h.CancelReservation)
	g.POST("/check-in", h.CheckIn)
	g.POST("/check-out", h.CheckOut)
}

// RegisterAdmin registers room inventory management under /v1 for the
// ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms", h.ListRooms)
	g.GET("/rooms/:id", h.GetRoom)
	g.PATCH("/rooms/:id/status", h.UpdateRoomStatus)
}
