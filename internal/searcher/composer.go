package searcher

import (
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

// Composer builds phrase index queries from query tokens and suggestions.
// It never lowercases tokens.
type Composer struct {
	limit int
}

func NewComposer(opts Options) *Composer {
	return &Composer{limit: opts.ResultLimit}
}

// Limit is the number of records a composed query is evaluated for.
func (c *Composer) Limit() int {
	return c.limit
}

// Compose picks the query shape by token count: a single token becomes an
// exact term on the name field, more tokens become the compound query.
// tokens must not be empty.
func (c *Composer) Compose(tokens, suggestions []string) indexer.Query {
	if len(tokens) == 1 {
		return indexer.Term(indexer.FieldName, tokens[0])
	}
	return c.Compound(tokens, suggestions)
}

// Compound requires the tokens as a consecutive in-order phrase AND at least
// one suggestion as an exact term. With no suggestions the disjunction is
// empty and the query matches nothing, so a multi-token query whose last
// token has no completion returns no records even when the phrase exists.
func (c *Composer) Compound(tokens, suggestions []string) indexer.Query {
	either := make([]indexer.Clause, 0, len(suggestions))
	for _, s := range suggestions {
		either = append(either, indexer.ShouldMatch(indexer.Term(indexer.FieldName, s)))
	}
	return indexer.Boolean(
		indexer.MustMatch(indexer.Phrase(indexer.FieldName, tokens)),
		indexer.MustMatch(indexer.Boolean(either...)),
	)
}
