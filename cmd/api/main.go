package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/salon-booking/internal/analytics"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/lock"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/routes"
	ucBooking "github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
	"github.com/BruksfildServices01/salon-booking/internal/worker"
)

func main() {

	cfg := config.Load()
	cfg.ConfigureLogger()

	db := dbpkg.NewDB(cfg)
	metrics.Register()

	// ======================================================
	// INFRA
	// ======================================================
	repo := infraRepo.NewBookingGormRepository(db)

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisURL != "" {
		client, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("failed to configure redis: %v", err)
		}
		if err := client.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("failed to reach redis: %v", err)
		}
		defer client.Close()

		locker = lock.NewRedisLocker(client, cfg.LockTTL)
		logrus.Info("Using redis staff lock")
	}

	dispatcher := analytics.NewDispatcher(analytics.New(db), 0)
	defer dispatcher.Close()

	settings := ucBooking.Settings{
		Location:           cfg.Location(),
		HoldDuration:       cfg.HoldDuration,
		DefaultGranularity: cfg.SlotGranularity,
	}

	// ======================================================
	// USE CASES
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(repo, locker, dispatcher, settings)
	holdManager := ucBooking.NewHoldManager(repo, locker, dispatcher, createBookingUC, settings)

	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(repo, cfg),
		Me:   handlers.NewMeHandler(repo),
		Public: handlers.NewPublicHandler(
			ucBooking.NewGetAvailability(repo, settings),
			ucBooking.NewCheckSlot(repo, settings),
			holdManager,
			createBookingUC,
		),
		Booking: handlers.NewBookingHandler(
			ucBooking.NewCancelBooking(repo, settings),
			ucBooking.NewUpdateBooking(repo, settings),
			ucBooking.NewListBookingsByDate(repo, settings),
			ucBooking.NewListBookingsByMonth(repo, settings),
			settings.Location,
		),
		Schedule: handlers.NewScheduleHandler(
			ucBooking.NewScheduleEditor(repo, locker, settings),
		),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, cfg, h)

	// ======================================================
	// RUN
	// ======================================================
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go worker.NewHoldCleanupWorker(holdManager, cfg.HoldCleanupPeriod).Start(ctx)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		logrus.Infof("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
}
