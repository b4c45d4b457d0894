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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/backend"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"backend", cfg.Index.Backend,
		"conjunction", cfg.Search.ParserConjunction,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pair, err := backend.OpenPair(cfg.Index)
	if err != nil {
		slog.Error("failed to open indices", "error", err)
		os.Exit(1)
	}
	defer pair.Close()
	words, _ := pair.Words.DocCount()
	phrases, _ := pair.Phrases.DocCount()
	slog.Info("indices opened",
		"word_path", cfg.Index.WordPath,
		"phrase_path", cfg.Index.PhrasePath,
		"word_entries", words,
		"records", phrases,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics, err := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		if err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
		defer shutdownMetrics(context.Background())
	}

	opts, err := searcher.OptionsFromConfig(cfg.Search)
	if err != nil {
		slog.Error("invalid search options", "error", err)
		os.Exit(1)
	}
	indices := searcher.Indices{Words: pair.Words, Phrases: pair.Phrases}
	if m != nil {
		indices.Words = searcher.Instrument(pair.Words, "words", m.IndexCallsTotal)
		indices.Phrases = searcher.Instrument(pair.Phrases, "phrases", m.IndexCallsTotal)
	}
	orchestrator, err := searcher.New(indices, opts)
	if err != nil {
		slog.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	handlerOpts := []handler.Option{
		handler.WithSampler(tracing.NewSampler(cfg.Tracing.Enabled, cfg.Tracing.SampleRate)),
	}
	if m != nil {
		handlerOpts = append(handlerOpts, handler.WithMetrics(m))
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, using local cache only", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	breakerCfg := resilience.CircuitBreakerConfig{}
	if m != nil {
		breakerCfg.OnStateChange = func(name string, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	var store cache.Store
	if redisClient != nil {
		store = redisClient
	}
	queryCache, err := cache.New(store, cache.Options{
		TTL:            cfg.Redis.CacheTTL,
		Breaker:        resilience.NewCircuitBreaker("redis-cache", breakerCfg),
		ComputeTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		slog.Error("failed to create query cache", "error", err)
		os.Exit(1)
	}
	defer queryCache.Close()
	handlerOpts = append(handlerOpts, handler.WithCache(queryCache))
	slog.Info("search cache enabled", "shared", redisClient != nil, "ttl", cfg.Redis.CacheTTL)

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, kafka.WithAsync())
		defer producer.Close()
		collector := analytics.NewCollector(producer, 10000, 100, 0)
		collector.Start(ctx)
		defer collector.Close()
		handlerOpts = append(handlerOpts, handler.WithTracker(collector))
		slog.Info("search events enabled", "topic", producer.Topic())
	}

	h := handler.New(orchestrator, handler.Options{
		LowercaseQuery: cfg.Search.LowercaseQuery,
		NullOnEmpty:    cfg.Search.NullOnEmpty,
	}, handlerOpts...)

	checker := health.NewChecker()
	checker.Register("word_index", health.PingCheck(func(context.Context) error {
		_, err := pair.Words.DocCount()
		return err
	}, true))
	checker.Register("phrase_index", health.PingCheck(func(context.Context) error {
		_, err := pair.Phrases.DocCount()
		return err
	}, true))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, false))
	}

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
		defer limiter.Stop()
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.CORS(cfg.CORS)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
