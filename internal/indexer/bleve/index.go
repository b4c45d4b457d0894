// Package bleve implements the indexer contract on top of a bleve index,
// either on disk or memory-only.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

// Index wraps a bleve.Index built from an indexer.Schema.
type Index struct {
	schema indexer.Schema
	fields []string
	logger *slog.Logger

	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

var _ indexer.Store = (*Index)(nil)

// Open opens the index at path, creating it with the schema mapping when it
// does not exist yet. An empty path creates a memory-only index.
func Open(schema indexer.Schema, path string) (*Index, error) {
	m, err := buildMapping(schema)
	if err != nil {
		return nil, fmt.Errorf("building %s mapping: %w", schema.Name, err)
	}

	logger := slog.Default().With("component", "bleve-index", "index", schema.Name)
	var idx bleve.Index
	switch {
	case path == "":
		idx, err = bleve.NewMemOnly(m)
	default:
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			logger.Info("creating index", "path", path)
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s index: %w", schema.Name, err)
	}

	stored := make([]string, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if field.Stored {
			stored = append(stored, field.Name)
		}
	}
	return &Index{
		schema: schema,
		fields: stored,
		logger: logger,
		index:  idx,
	}, nil
}

// Write indexes docs as one bleve batch.
func (i *Index) Write(ctx context.Context, docs []indexer.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return apperrors.ErrIndexClosed
	}

	batch := i.index.NewBatch()
	for _, doc := range docs {
		data := make(map[string]interface{}, len(doc.Fields))
		for k, v := range doc.Fields {
			data[k] = v
		}
		if err := batch.Index(doc.ID, data); err != nil {
			return fmt.Errorf("staging document %s: %w", doc.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("committing batch of %d: %w", len(docs), err)
	}
	return nil
}

// Search evaluates q and returns at most limit hits, best first.
func (i *Index) Search(ctx context.Context, q indexer.Query, limit int) ([]indexer.Hit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", apperrors.ErrInvalidInput, limit)
	}
	if indexer.Unsatisfiable(q) {
		return nil, nil
	}
	compiled, err := compile(q)
	if err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return nil, apperrors.ErrIndexClosed
	}

	req := bleve.NewSearchRequestOptions(compiled, limit, 0, false)
	req.Fields = i.fields
	req.SortBy([]string{"-_score", "_id"})
	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching %s for %s: %w", i.schema.Name, q, err)
	}

	hits := make([]indexer.Hit, 0, len(res.Hits))
	for _, dm := range res.Hits {
		fields := make(map[string]string, len(dm.Fields))
		for k, v := range dm.Fields {
			if s, ok := v.(string); ok {
				fields[k] = s
			}
		}
		hits = append(hits, indexer.Hit{Score: dm.Score, DocID: dm.ID, Fields: fields})
	}
	i.logger.Debug("search complete", "query", q.String(), "hits", len(hits), "took", res.Took)
	return hits, nil
}

// DocCount returns the number of indexed documents.
func (i *Index) DocCount() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return 0, apperrors.ErrIndexClosed
	}
	return i.index.DocCount()
}

// Close closes the underlying bleve index. It is safe to call more than
// once.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	return i.index.Close()
}
