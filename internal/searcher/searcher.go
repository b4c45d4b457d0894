// Package searcher resolves search-as-you-type queries against the word and
// phrase indices. The Resolver turns a partial token into completion
// candidates, the Composer builds the compound phrase query and the
// Orchestrator applies the single-token escalation policy.
package searcher

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
)

// Indices holds the two long-lived index handles every request reads from.
type Indices struct {
	Words   indexer.Index
	Phrases indexer.Index
}

func (ix Indices) validate() error {
	if ix.Words == nil || ix.Phrases == nil {
		return fmt.Errorf("searcher: both word and phrase indices are required")
	}
	return nil
}

// Options tunes the query shapes handed to the index engine.
type Options struct {
	SuggestionLimit int
	ResultLimit     int
	FuzzyDistance   int
	Transpositions  bool
	Conjunction     indexer.Conjunction
}

// DefaultOptions returns the limits and fuzzy settings used in production.
func DefaultOptions() Options {
	return Options{
		SuggestionLimit: 10,
		ResultLimit:     50,
		FuzzyDistance:   1,
		Transpositions:  true,
		Conjunction:     indexer.ConjunctionOr,
	}
}

// OptionsFromConfig maps the search section of the service config.
func OptionsFromConfig(cfg config.SearchConfig) (Options, error) {
	conj, err := indexer.ParseConjunction(cfg.ParserConjunction)
	if err != nil {
		return Options{}, err
	}
	return Options{
		SuggestionLimit: cfg.SuggestionLimit,
		ResultLimit:     cfg.ResultLimit,
		FuzzyDistance:   cfg.FuzzyDistance,
		Transpositions:  cfg.FuzzyTranspositions,
		Conjunction:     conj,
	}, nil
}
