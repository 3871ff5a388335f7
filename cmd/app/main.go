package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flytau/api"
	"github.com/Domenick1991/flytau/config"
	"github.com/Domenick1991/flytau/internal/bootstrap"
	"github.com/Domenick1991/flytau/internal/cache"
	"github.com/Domenick1991/flytau/internal/kafka"
	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/Domenick1991/flytau/internal/service/booking"
	"github.com/Domenick1991/flytau/internal/service/flights"
	"github.com/Domenick1991/flytau/internal/service/reports"
	"github.com/Domenick1991/flytau/internal/service/schedule"
	"github.com/Domenick1991/flytau/internal/service/seatmap"
	"github.com/Domenick1991/flytau/pkg/logger"
	"github.com/Domenick1991/flytau/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	appMetrics := metrics.NewMetrics("flytau")

	flightRepo := repository.NewFlightRepository(pool)
	aircraftRepo := repository.NewAircraftRepository(pool)
	crewRepo := repository.NewCrewRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	flightService := flights.NewFlightService(
		flightRepo, aircraftRepo, crewRepo, redisCache, producer,
		cfg.Kafka.OrderEventsTopic, logg,
		flights.WithMetrics(appMetrics),
	)
	bookingService := booking.NewBookingService(
		orderRepo, redisCache, producer,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Booking.SeatLockTTLSeconds)*time.Second,
		logg,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(appMetrics),
	)
	scheduleService := schedule.NewService(aircraftRepo, crewRepo)
	seatMapService := seatmap.NewService(flightRepo)
	reportService := reports.NewService(reportRepo)

	maintainer := flights.NewMaintainer(
		flightRepo,
		time.Duration(cfg.Worker.MaintenanceThrottleSeconds)*time.Second,
		logg,
		flights.WithMaintainerMetrics(appMetrics),
	)

	handlers := bootstrap.Handlers{
		Flights:  api.NewFlightHandler(flightService, seatMapService),
		Bookings: api.NewBookingHandler(bookingService),
		Fleet:    api.NewFleetHandler(flightService, scheduleService),
		Reports:  api.NewReportHandler(reportService),
	}

	if err := bootstrap.Run(ctx, cfg, handlers, maintainer); err != nil {
		logg.Fatal("server error", "error", err)
	}
}
