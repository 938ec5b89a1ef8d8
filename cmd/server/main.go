package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/database"
	"github.com/iliyamo/airline-reservation/internal/handler"
	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/reaper"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	flightRepo := repository.NewFlightRepo(db)
	airportRepo := repository.NewAirportRepo(db)
	sessionRepo := repository.NewSeatSessionRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	extraRepo := repository.NewExtraRepo(db)

	searchHandler := handler.NewSearchHandler(flightRepo, airportRepo, bookingRepo, cfg.SearchWindowDays, cfg.MinTransferMin)
	sessionHandler := handler.NewSessionHandler(sessionRepo, flightRepo, time.Duration(cfg.SeatHoldTTLMin)*time.Minute)
	bookingHandler := handler.NewBookingHandler(bookingRepo, sessionRepo, flightRepo, extraRepo)

	e := echo.New()
	e.HideBanner = true

	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterSearch(e, searchHandler, cfg.JWTSecret, cacheMW)
	router.RegisterSessions(e, sessionHandler, cfg.JWTSecret)
	router.RegisterBookings(e, bookingHandler, cfg.JWTSecret)

	sweeper := reaper.New(sessionRepo, time.Duration(cfg.ReaperIntervalSec)*time.Second)
	sweeper.Start()
	defer sweeper.Stop()

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
