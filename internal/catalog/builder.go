package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/metrics"
)

// Summary reports what a Build wrote.
type Summary struct {
	Source    string
	Records   int
	Words     int
	Skipped   int
	Languages map[Language]int
	Duration  time.Duration
}

// Event converts the summary into the analytics catalog event.
func (s *Summary) Event() analytics.CatalogEvent {
	e := analytics.NewCatalogEvent(s.Source)
	e.Records = s.Records
	e.Words = s.Words
	e.DurationMs = s.Duration.Milliseconds()
	for lang, n := range s.Languages {
		e.Languages[string(lang)] = n
	}
	return e
}

// BuilderConfig tunes a Builder.
type BuilderConfig struct {
	Workers   int
	BatchSize int
	Detector  Detector
	Metrics   *metrics.Metrics
}

// Builder populates the word and phrase indices from a Source. Records are
// shaped on a worker pool and both indices are written concurrently in
// batches.
type Builder struct {
	words     indexer.Writer
	phrases   indexer.Writer
	workers   int
	batchSize int
	detector  Detector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewBuilder(words, phrases indexer.Writer, cfg BuilderConfig) *Builder {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.Detector == nil {
		cfg.Detector = NewDetector()
	}
	return &Builder{
		words:     words,
		phrases:   phrases,
		workers:   cfg.Workers,
		batchSize: cfg.BatchSize,
		detector:  cfg.Detector,
		metrics:   cfg.Metrics,
		logger:    logger.WithComponent("catalog-builder"),
	}
}

// Build reads every record from src into both indices. Malformed records
// are skipped and counted; a repeated identifier aborts the build with an
// error wrapping errors.ErrDuplicateRecord from pkg/errors.
func (b *Builder) Build(ctx context.Context, src Source) (*Summary, error) {
	start := time.Now()
	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	g, ctx := errgroup.WithContext(ctx)
	shaped := make(chan Shaped, b.batchSize)
	wordBatches := make(chan []indexer.Document, 2)
	phraseBatches := make(chan []indexer.Document, 2)
	summary := &Summary{Source: src.Name(), Languages: make(map[Language]int)}
	skipped := 0

	g.Go(func() error {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(shaped)
		}()
		validator := NewValidator()
		return src.Records(ctx, func(rec Record) error {
			if err := validator.Validate(rec); err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					skipped++
					b.logger.Warn("skipping invalid record", "error", err)
					return nil
				}
				return err
			}
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				select {
				case shaped <- Shape(rec, b.detector):
				case <-ctx.Done():
				}
			})
			if err != nil {
				wg.Done()
				return fmt.Errorf("submitting record %q: %w", rec.ID, err)
			}
			return nil
		})
	})

	g.Go(func() error {
		defer close(wordBatches)
		defer close(phraseBatches)
		words := make([]indexer.Document, 0, b.batchSize)
		phrases := make([]indexer.Document, 0, b.batchSize)
		for s := range shaped {
			summary.Records++
			summary.Words += len(s.Words)
			summary.Languages[s.Record.Language]++
			phrases = append(phrases, s.Record.Document())
			words = append(words, s.WordDocuments()...)

			if len(phrases) >= b.batchSize {
				if err := send(ctx, phraseBatches, phrases); err != nil {
					return err
				}
				phrases = make([]indexer.Document, 0, b.batchSize)
			}
			if len(words) >= b.batchSize {
				if err := send(ctx, wordBatches, words); err != nil {
					return err
				}
				words = make([]indexer.Document, 0, b.batchSize)
			}
		}
		if err := send(ctx, phraseBatches, phrases); err != nil {
			return err
		}
		return send(ctx, wordBatches, words)
	})

	g.Go(func() error { return b.drain(ctx, "words", b.words, wordBatches) })
	g.Go(func() error { return b.drain(ctx, "phrases", b.phrases, phraseBatches) })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building indices from %s: %w", src.Name(), err)
	}

	summary.Skipped = skipped
	summary.Duration = time.Since(start)
	b.logger.Info("catalog indexed",
		"source", summary.Source,
		"records", humanize.Comma(int64(summary.Records)),
		"words", humanize.Comma(int64(summary.Words)),
		"skipped", summary.Skipped,
		"took", summary.Duration.Round(time.Millisecond),
	)
	return summary, nil
}

func send(ctx context.Context, ch chan<- []indexer.Document, batch []indexer.Document) error {
	if len(batch) == 0 {
		return nil
	}
	select {
	case ch <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Builder) drain(ctx context.Context, name string, w indexer.Writer, batches <-chan []indexer.Document) error {
	written := 0
	for batch := range batches {
		if err := w.Write(ctx, batch); err != nil {
			return fmt.Errorf("writing %s batch: %w", name, err)
		}
		written += len(batch)
		if b.metrics != nil {
			b.metrics.RecordsIndexedTotal.WithLabelValues(name).Add(float64(len(batch)))
		}
		b.logger.Debug("batch written", "index", name, "docs", len(batch), "total", humanize.Comma(int64(written)))
	}
	return nil
}
