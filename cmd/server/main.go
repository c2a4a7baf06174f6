package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motel-reservation/internal/booking"
	"github.com/iliyamo/motel-reservation/internal/config"
	"github.com/iliyamo/motel-reservation/internal/database"
	"github.com/iliyamo/motel-reservation/internal/handler"
	"github.com/iliyamo/motel-reservation/internal/middleware"
	"github.com/iliyamo/motel-reservation/internal/queue"
	"github.com/iliyamo/motel-reservation/internal/repository"
	"github.com/iliyamo/motel-reservation/internal/router"
)

func main() {
	// A local .env is optional; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	roomRepo := repository.NewRoomRepo(db)
	intervalRepo := repository.NewBookedIntervalRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	allocator := booking.NewAllocator(db, roomRepo, intervalRepo, reservationRepo)
	lifecycle := booking.NewLifecycle(db, roomRepo, intervalRepo, reservationRepo)

	guestHandler := handler.NewGuestHandler(allocator, lifecycle, reservationRepo)
	adminHandler := handler.NewAdminHandler(roomRepo, intervalRepo)
	publicHandler := handler.NewPublicHandler(roomRepo, intervalRepo)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterPublic(e, publicHandler, cache)
	router.RegisterGuest(e, guestHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// The consumer reconnects forever on its own; it only logs when the
	// broker is down.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
