// Package indexertest provides helpers for testing code built on the
// indexer contract: document builders, a call-counting Index wrapper and a
// behavioural suite every backend must pass.
package indexertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/tokenizer"
)

// Track builds a phrase index document the way catalog ingestion does:
// the searchable name is the lowercased display name.
func Track(id, displayName, lang string) indexer.Document {
	return indexer.Document{
		ID: id,
		Fields: map[string]string{
			indexer.FieldTrackID: id,
			indexer.FieldName:    strings.ToLower(displayName),
			indexer.FieldNameRaw: displayName,
			indexer.FieldLang:    lang,
		},
	}
}

// Words builds one word index document per word occurrence in names.
func Words(names ...string) []indexer.Document {
	var docs []indexer.Document
	for _, name := range names {
		for _, tok := range tokenizer.Words(name) {
			docs = append(docs, indexer.Document{
				ID: fmt.Sprintf("w%06d", len(docs)),
				Fields: map[string]string{
					indexer.FieldToken:      tok.Term,
					indexer.FieldTokenNgram: tok.Term,
				},
			})
		}
	}
	return docs
}

// Call records one Search invocation.
type Call struct {
	Query indexer.Query
	Limit int
}

// Counting wraps an Index and records every Search call.
type Counting struct {
	indexer.Index

	mu    sync.Mutex
	calls []Call
}

// NewCounting wraps idx.
func NewCounting(idx indexer.Index) *Counting {
	return &Counting{Index: idx}
}

func (c *Counting) Search(ctx context.Context, q indexer.Query, limit int) ([]indexer.Hit, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Query: q, Limit: limit})
	c.mu.Unlock()
	return c.Index.Search(ctx, q, limit)
}

// Calls returns a copy of the recorded calls.
func (c *Counting) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Stub is an Index answering every Search with a fixed result. It serves
// fault injection and call-count tests that need no real storage.
type Stub struct {
	Hits []indexer.Hit
	Err  error
	// Respond, when set, takes precedence over Hits and Err.
	Respond func(q indexer.Query, limit int) ([]indexer.Hit, error)
}

func (s *Stub) Search(_ context.Context, q indexer.Query, limit int) ([]indexer.Hit, error) {
	if s.Respond != nil {
		return s.Respond(q, limit)
	}
	return s.Hits, s.Err
}

func (s *Stub) DocCount() (uint64, error) { return uint64(len(s.Hits)), nil }

func (s *Stub) Close() error { return nil }
