package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightwizard/config"
	"github.com/Domenick1991/flightwizard/internal/bootstrap"
	"github.com/Domenick1991/flightwizard/internal/client"
	"github.com/Domenick1991/flightwizard/internal/kafka"
	"github.com/Domenick1991/flightwizard/internal/logger"
	"github.com/Domenick1991/flightwizard/internal/sample"
	"github.com/Domenick1991/flightwizard/internal/service/flights"
	wizardsvc "github.com/Domenick1991/flightwizard/internal/service/wizard"
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
	logg := logger.New(cfg.Log, "wizard-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, locker, closeStore, err := openStorage(ctx, cfg, logg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeStore()

	var gateway flights.Gateway
	switch cfg.Gateway.Mode {
	case config.GatewayREST:
		gateway = client.New(cfg.Gateway.BaseURL, cfg.Gateway.Timeout())
	default:
		gateway = sample.NewBackend(cfg.Gateway.SampleDelay())
	}
	flightService := flights.NewFlightService(gateway, store, cfg.Gateway.SearchCacheTTL(), logg)
	payments := sample.NewPayments(cfg.Gateway.SampleDelay())

	opts := []wizardsvc.WizardServiceOption{
		wizardsvc.WithLogger(logg),
		wizardsvc.WithTTLs(cfg.Storage.LockTTL(), cfg.Storage.SessionTTL(), cfg.Storage.PendingSearchTTL()),
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.EventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logg.Warn("kafka unavailable, wizard events may be lost", "error", err)
		}
		opts = append(opts, wizardsvc.WithEvents(kafka.NewEventWriter(producer, cfg.Kafka.EventsTopic)))
	}
	wizardService := wizardsvc.NewWizardService(store, locker, flightService, payments, opts...)

	if err := bootstrap.Run(ctx, cfg, wizardService, logg); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logg *slog.Logger) (storage.Store, storage.Locker, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		rs := storage.NewRedisStore(cfg.Redis)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, nil, err
		}
		return rs, rs, func() { rs.Close() }, nil
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, nil, err
		}
		pg := storage.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		logg.Warn("postgres storage uses in-process wizard locks; run a single api instance")
		return pg, storage.NewMemoryStore(), pool.Close, nil
	default:
		mem := storage.NewMemoryStore()
		return mem, mem, func() {}, nil
	}
}
