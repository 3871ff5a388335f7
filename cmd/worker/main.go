package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flytau/config"
	"github.com/Domenick1991/flytau/internal/email"
	"github.com/Domenick1991/flytau/internal/kafka"
	"github.com/Domenick1991/flytau/internal/repository"
	"github.com/Domenick1991/flytau/internal/service/flights"
	"github.com/Domenick1991/flytau/pkg/logger"
	"github.com/Domenick1991/flytau/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	flightRepo := repository.NewFlightRepository(pool)
	workerMetrics := metrics.NewMetrics("flytau_worker")

	maintainer := flights.NewMaintainer(
		flightRepo,
		time.Duration(cfg.Worker.SweepIntervalSeconds)*time.Second,
		logg,
		flights.WithMaintainerMetrics(workerMetrics),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(logg)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logg.Warn("decode event failed", "error", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			logg.Warn("consumer stopped", "error", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepIntervalSeconds) * time.Second)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			if err := maintainer.Sweep(ctx); err != nil {
				logg.Error("lifecycle sweep failed", "error", err)
			}
		case s := <-sig:
			logg.Info("shutting down", "signal", s.String())
			return
		}
	}
}
