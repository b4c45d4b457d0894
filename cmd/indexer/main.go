package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/backend"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/resilience"
)

// sideEffectTimeout bounds the cache flush and the catalog event publish
// that follow a successful build.
const sideEffectTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "indexer",
		Usage: "Build the word and phrase indices from a track catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Value:   "configs/development.yaml",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "index backend (bleve, memory); overrides the config",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "number of record shaping workers; overrides the config",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "csv",
				Usage:     "Index a CSV catalog file",
				ArgsUsage: "<path>",
				Action:    csvCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "id-column",
						Usage: "zero-based column holding the track id",
						Value: -1,
					},
					&cli.IntFlag{
						Name:  "name-column",
						Usage: "zero-based column holding the track name",
						Value: -1,
					},
					&cli.BoolFlag{
						Name:  "header",
						Usage: "treat the first row as a header",
					},
				},
			},
			{
				Name:   "postgres",
				Usage:  "Index tracks selected from PostgreSQL",
				Action: postgresCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "query",
						Usage: "SELECT returning id and name columns; overrides the config",
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("indexer failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if b := c.String("backend"); b != "" {
		cfg.Index.Backend = b
	}
	if w := c.Int("workers"); w > 0 {
		cfg.Ingest.Workers = w
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func csvCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("csv expects exactly one file path", 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	idCol, nameCol := cfg.Ingest.CSVIDColumn, cfg.Ingest.CSVNameColumn
	if c.Int("id-column") >= 0 {
		idCol = c.Int("id-column")
	}
	if c.Int("name-column") >= 0 {
		nameCol = c.Int("name-column")
	}
	header := cfg.Ingest.CSVHeader
	if c.IsSet("header") {
		header = c.Bool("header")
	}

	src := catalog.NewCSVSource(c.Args().First(), idCol, nameCol, header)
	return run(c.Context, cfg, src)
}

func postgresCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	query := cfg.Ingest.PostgresQuery
	if q := c.String("query"); q != "" {
		query = q
	}

	db, err := postgres.New(c.Context, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	return run(c.Context, cfg, catalog.NewPostgresSource(db.DB, query))
}

func run(ctx context.Context, cfg *config.Config, src catalog.Source) error {
	slog.Info("starting catalog build",
		"source", src.Name(),
		"backend", cfg.Index.Backend,
		"word_path", cfg.Index.WordPath,
		"phrase_path", cfg.Index.PhrasePath,
		"workers", cfg.Ingest.Workers,
	)

	staging, err := backend.OpenStaging(cfg.Index)
	if err != nil {
		return fmt.Errorf("opening indices: %w", err)
	}
	defer staging.Discard()

	builder := catalog.NewBuilder(staging.Words, staging.Phrases, catalog.BuilderConfig{
		Workers:   cfg.Ingest.Workers,
		BatchSize: cfg.Ingest.BatchSize,
	})
	summary, err := builder.Build(ctx, src)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}
	if err := staging.Commit(); err != nil {
		return fmt.Errorf("installing indices: %w", err)
	}

	if size, err := dirSize(cfg.Index.WordPath, cfg.Index.PhrasePath); err == nil && size > 0 {
		slog.Info("indices on disk", "size", humanize.Bytes(uint64(size)))
	}

	if cfg.Redis.Enabled {
		invalidateCache(ctx, cfg.Redis)
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topics.CatalogIndexed != "" {
		announce(ctx, cfg.Kafka, summary)
	}
	return nil
}

// invalidateCache drops search outcomes cached against the previous catalog.
// Search services hold the index files open and only see the new catalog
// after a restart; flushing here keeps restarted instances from serving
// stale outcomes out of the shared tier.
func invalidateCache(ctx context.Context, cfg config.RedisConfig) {
	err := resilience.Bound(ctx, "cache-invalidate", sideEffectTimeout, func(ctx context.Context) error {
		client, err := pkgredis.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		n, err := client.FlushByPattern(ctx, "search:*")
		if err != nil {
			return err
		}
		slog.Info("search cache invalidated", "keys", n)
		return nil
	})
	if err != nil {
		slog.Warn("cache invalidation failed", "error", err)
	}
}

func announce(ctx context.Context, cfg config.KafkaConfig, summary *catalog.Summary) {
	producer := kafka.NewProducer(cfg, cfg.Topics.CatalogIndexed)
	defer producer.Close()
	event := summary.Event()
	err := resilience.Bound(ctx, "catalog-announce", sideEffectTimeout, func(ctx context.Context) error {
		return producer.Publish(ctx, kafka.Event{Key: event.ID, Value: event})
	})
	if err != nil {
		slog.Warn("failed to publish catalog event", "error", err)
		return
	}
	slog.Info("catalog event published", "topic", producer.Topic(), "event_id", event.ID)
}

func dirSize(paths ...string) (int64, error) {
	var total int64
	for _, root := range paths {
		if root == "" {
			continue
		}
		err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
