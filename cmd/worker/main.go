package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/joao-fontenele/record-store-api/internal/catalog"
	"github.com/joao-fontenele/record-store-api/internal/config"
	"github.com/joao-fontenele/record-store-api/internal/messaging"
	"github.com/joao-fontenele/record-store-api/internal/telemetry"
	"github.com/joao-fontenele/record-store-api/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.KafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	consumer := messaging.NewConsumer(strings.Split(cfg.KafkaBrokers, ","), "order.created", "stock-auditor")
	defer func() { _ = consumer.Close() }()

	auditor := worker.NewStockAuditor(catalog.NewRecordRepository(db), cfg.LowStockThreshold, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting stock auditor", "low_stock_threshold", cfg.LowStockThreshold)

	if err := consumer.Consume(ctx, auditor.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
