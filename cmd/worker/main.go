package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightwizard/config"
	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/Domenick1991/flightwizard/internal/email"
	"github.com/Domenick1991/flightwizard/internal/kafka"
	"github.com/Domenick1991/flightwizard/internal/logger"
	"github.com/Domenick1991/flightwizard/internal/storage"
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
	logg := logger.New(cfg.Log, "wizard-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic, logg)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event domain.WizardEvent) error {
			if err := emailSender.Send(ctx, event); err != nil {
				logg.Error("confirmation email failed", "wizard_id", event.WizardID, "error", err)
			}
			return nil
		}); err != nil && ctx.Err() == nil {
			logg.Error("consumer stopped", "error", err)
		}
	}()

	var slots *storage.PGStore
	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		slots = storage.NewPGStore(pool)
	}

	sweep := time.Duration(cfg.Worker.PurgeSweepMinutes) * time.Minute
	if sweep <= 0 {
		sweep = 10 * time.Minute
	}
	purgeTicker := time.NewTicker(sweep)
	defer purgeTicker.Stop()

	for {
		select {
		case <-purgeTicker.C:
			if slots == nil {
				continue
			}
			purged, err := slots.PurgeExpired(ctx, time.Now())
			if err != nil {
				logg.Error("purge expired slots failed", "error", err)
				continue
			}
			if purged > 0 {
				logg.Info("purged expired slots", "count", purged)
			}
		case <-ctx.Done():
			logg.Info("shutting down")
			return
		}
	}
}
