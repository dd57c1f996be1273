package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/record-store-api/internal/cache"
	"github.com/joao-fontenele/record-store-api/internal/catalog"
	"github.com/joao-fontenele/record-store-api/internal/config"
	"github.com/joao-fontenele/record-store-api/internal/messaging"
	"github.com/joao-fontenele/record-store-api/internal/musicbrainz"
	"github.com/joao-fontenele/record-store-api/internal/orders"
	"github.com/joao-fontenele/record-store-api/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "record-store-api", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("record-store-api", "1.0.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(10 * time.Second)); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
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

	queryCache := newQueryCache(ctx, cfg, logger)

	var producer *messaging.Producer
	if cfg.KafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(cfg.KafkaBrokers, ","), "order.created")
		defer func() { _ = producer.Close() }()
	}

	enricher := musicbrainz.NewClient(cfg.MusicBrainzURL, &http.Client{
		Timeout:   cfg.EnrichTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)

	recordRepo := catalog.NewRecordRepository(db)
	catalogService := catalog.NewService(recordRepo, queryCache, enricher, cfg.CacheTTL, logger)
	catalogHandler := catalog.NewHandler(catalogService, logger)

	orderRepo := orders.NewOrderRepository(db)
	orderService := orders.NewService(orderRepo, recordRepo, logger)
	orderHandler := orders.NewHandler(orderService, producer, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /records", telemetry.WithHTTPRoute(catalogHandler.HandleCreate))
	mux.HandleFunc("GET /records", telemetry.WithHTTPRoute(catalogHandler.HandleList))
	mux.HandleFunc("GET /records/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGet))
	mux.HandleFunc("PUT /records/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdate))
	mux.HandleFunc("DELETE /records/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDelete))
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(orderHandler.HandleCreate))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(orderHandler.HandleList))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: otelhttp.NewHandler(mux, "record-store-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting record store api", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// newQueryCache connects to Redis when REDIS_ADDR is set and the server
// answers a ping; otherwise the process keeps a private in-memory cache
// rather than failing startup over a degraded dependency.
func newQueryCache(ctx context.Context, cfg config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-memory query cache")
		return cache.NewMemory(cfg.CacheCapacity)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory query cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemory(cfg.CacheCapacity)
	}

	logger.Info("using redis query cache", "addr", cfg.RedisAddr)
	return cache.NewRedis(client, cfg.CachePrefix, logger)
}
