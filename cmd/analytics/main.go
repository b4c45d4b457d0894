// Command analytics starts the standalone analytics aggregation service.
//
// It consumes search and catalog events from Kafka, aggregates them in memory
// (path counts, latency percentiles, cache hit rate, zero-result queries,
// catalog builds) and exposes an HTTP API at GET /api/v1/analytics.
// Snapshots are optionally persisted to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-snapshot-interval 1m]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	snapshotInterval := flag.Duration("snapshot-interval", 0, "persist stats to postgres at this interval (0 disables)")
	retention := flag.Duration("snapshot-retention", 7*24*time.Hour, "delete snapshots older than this")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	if len(cfg.Kafka.Brokers) == 0 {
		slog.Error("analytics service needs kafka brokers")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator(nil)
	handle := analytics.HandleEvent(agg)
	consumers := []*kafka.Consumer{
		kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, handle),
		kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CatalogIndexed, handle),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range consumers {
		g.Go(func() error {
			defer c.Close()
			return c.Start(gctx)
		})
	}
	slog.Info("analytics consumers started",
		"search_topic", cfg.Kafka.Topics.SearchEvents,
		"catalog_topic", cfg.Kafka.Topics.CatalogIndexed,
	)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		if gctx.Err() != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "consumers stopped"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumers active"}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analytics.NewHandler(agg).Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	if *snapshotInterval > 0 {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := aggregator.NewStore(db, *retention)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		store.StartPeriodicSave(ctx, agg, *snapshotInterval)
		checker.Register("postgres", health.PingCheck(db.Ping, false))
		mux.HandleFunc("GET /api/v1/analytics/latest", store.Latest)
		mux.HandleFunc("GET /api/v1/analytics/history", store.History)
	}

	var chain http.Handler = mux
	chain = middleware.CORS(cfg.CORS)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	if err := g.Wait(); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("analytics service stopped")
}
