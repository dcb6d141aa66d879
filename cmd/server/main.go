package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/studyroomhq/study-room-reservation/internal/config"
	"github.com/studyroomhq/study-room-reservation/internal/database"
	"github.com/studyroomhq/study-room-reservation/internal/domain"
	"github.com/studyroomhq/study-room-reservation/internal/handler"
	"github.com/studyroomhq/study-room-reservation/internal/logging"
	"github.com/studyroomhq/study-room-reservation/internal/metrics"
	"github.com/studyroomhq/study-room-reservation/internal/queue"
	"github.com/studyroomhq/study-room-reservation/internal/repository"
	"github.com/studyroomhq/study-room-reservation/internal/router"
	"github.com/studyroomhq/study-room-reservation/internal/scheduler"
	"github.com/studyroomhq/study-room-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	reservations := repository.NewReservationRepo(db)
	settings := repository.NewSettingRepo(db)
	rooms := repository.NewRoomRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	cache := service.NewSettingsCache(settings, log)
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cache.Refresh(startCtx); err != nil {
		log.Fatal().Err(err).Msg("settings load failed")
	}
	cancelStart()

	// Events are optional; without a broker the services skip publishing.
	var events domain.EventPublisher
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL, log)
		go queue.StartAuditConsumer(cfg.AMQPURL, log)
	}

	reservationSvc := service.NewReservationService(reservations, cache, events, log, cfg.Location)
	checkinSvc := service.NewCheckinService(reservations, cache, events, log, cfg.Location)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reclaimer := scheduler.NewNoShowReclaimer(reservations, cache, events, log, cfg.Location, cfg.ReclaimInterval)
	go reclaimer.Run(ctx)

	metrics.Register()
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and response cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Rooms:        handler.NewRoomHandler(rooms),
		Settings:     handler.NewSettingsHandler(cache),
		Reservations: handler.NewReservationHandler(reservationSvc),
		Checkin:      handler.NewCheckinHandler(checkinSvc),
		Admin:        handler.NewAdminHandler(reservationSvc, cache),
	}, cfg, rdb)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}
}
