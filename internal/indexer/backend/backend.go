// Package backend opens the configured lexical engine for both indices.
package backend

import (
	"errors"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/bleve"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/memory"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
)

const (
	Bleve  = "bleve"
	Memory = "memory"
)

// Open opens one index with schema at path on the named backend. An empty
// path keeps the index in memory.
func Open(name string, schema indexer.Schema, path string) (indexer.Store, error) {
	var (
		store indexer.Store
		err   error
	)
	switch name {
	case Bleve:
		store, err = bleve.Open(schema, path)
	case Memory:
		store, err = memory.Open(schema, path)
	default:
		return nil, fmt.Errorf("unknown index backend %q", name)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Pair is the word and phrase index opened together.
type Pair struct {
	Words   indexer.Store
	Phrases indexer.Store
}

// OpenPair opens both indices described by cfg.
func OpenPair(cfg config.IndexConfig) (*Pair, error) {
	words, err := Open(cfg.Backend, indexer.WordSchema(), cfg.WordPath)
	if err != nil {
		return nil, fmt.Errorf("opening word index: %w", err)
	}
	phrases, err := Open(cfg.Backend, indexer.PhraseSchema(), cfg.PhrasePath)
	if err != nil {
		words.Close()
		return nil, fmt.Errorf("opening phrase index: %w", err)
	}
	return &Pair{Words: words, Phrases: phrases}, nil
}

// Close closes both indices.
func (p *Pair) Close() error {
	return errors.Join(p.Words.Close(), p.Phrases.Close())
}
