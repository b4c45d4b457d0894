// Package memory is an in-process implementation of the indexer contract:
// positional inverted indexes per field, BM25 scoring and a badger-backed
// document log that is replayed when the engine is reopened.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

// Engine is safe for concurrent readers and a single writer.
type Engine struct {
	schema indexer.Schema
	store  *docStore
	logger *slog.Logger

	mu     sync.RWMutex
	fields map[string]*fieldIndex
	docs   map[string]indexer.Document
	closed bool
}

var _ indexer.Store = (*Engine)(nil)

// Open creates an engine for schema. Documents persisted under dir are
// replayed into memory; an empty dir keeps everything in memory.
func Open(schema indexer.Schema, dir string) (*Engine, error) {
	logger := slog.Default().With("component", "memory-index", "index", schema.Name)
	store, err := openStore(dir, logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		schema: schema,
		store:  store,
		logger: logger,
		fields: make(map[string]*fieldIndex),
		docs:   make(map[string]indexer.Document),
	}
	for _, field := range schema.Fields {
		if field.Indexed {
			e.fields[field.Name] = newFieldIndex(field)
		}
	}

	err = store.each(func(doc indexer.Document) error {
		e.indexLocked(doc)
		return nil
	})
	if err != nil {
		store.close()
		return nil, fmt.Errorf("replaying documents: %w", err)
	}
	if dir != "" {
		logger.Info("index loaded", "dir", dir, "docs", len(e.docs))
	}
	return e, nil
}

// Write persists docs and makes them searchable. A document with an
// existing ID replaces the old one.
func (e *Engine) Write(ctx context.Context, docs []indexer.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return apperrors.ErrIndexClosed
	}
	if err := e.store.put(docs); err != nil {
		return fmt.Errorf("persisting %d documents: %w", len(docs), err)
	}
	for _, doc := range docs {
		e.indexLocked(doc)
	}
	e.logger.Debug("batch indexed", "docs", len(docs), "total", len(e.docs))
	return nil
}

func (e *Engine) indexLocked(doc indexer.Document) {
	if old, exists := e.docs[doc.ID]; exists {
		for name, f := range e.fields {
			f.remove(old.ID, old.Fields[name])
		}
	}
	fields := make(map[string]string, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	for name, f := range e.fields {
		f.add(doc.ID, fields[name])
	}
	e.docs[doc.ID] = indexer.Document{ID: doc.ID, Fields: fields}
}

// Search evaluates q and returns at most limit hits, best first.
func (e *Engine) Search(ctx context.Context, q indexer.Query, limit int) ([]indexer.Hit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", apperrors.ErrInvalidInput, limit)
	}
	if indexer.Unsatisfiable(q) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, apperrors.ErrIndexClosed
	}
	scores, err := e.eval(q)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", q, err)
	}
	return toHits(topK(scores, limit), e.docs, e.schema), nil
}

// DocCount returns the number of live documents.
func (e *Engine) DocCount() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return 0, apperrors.ErrIndexClosed
	}
	return uint64(len(e.docs)), nil
}

// Close releases the document store. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.fields = nil
	e.docs = nil
	return e.store.close()
}
