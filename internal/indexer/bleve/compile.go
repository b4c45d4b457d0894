package bleve

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

// compile lowers the indexer query variant onto bleve query objects.
// Callers filter unsatisfiable queries first; compile still maps any it
// meets to a match-none query.
func compile(q indexer.Query) (query.Query, error) {
	if indexer.Unsatisfiable(q) {
		return query.NewMatchNoneQuery(), nil
	}
	switch q := q.(type) {
	case *indexer.TermQuery:
		return termQuery(q.Field, q.Value), nil
	case *indexer.FuzzyQuery:
		return fuzzyQuery(q), nil
	case *indexer.PhraseQuery:
		return query.NewPhraseQuery(q.Terms, q.Field), nil
	case *indexer.ParsedQuery:
		mq := query.NewMatchQuery(q.Text)
		mq.SetField(q.Field)
		if q.Conjunction == indexer.ConjunctionAnd {
			mq.SetOperator(query.MatchQueryOperatorAnd)
		} else {
			mq.SetOperator(query.MatchQueryOperatorOr)
		}
		return mq, nil
	case *indexer.BooleanQuery:
		return booleanQuery(q)
	default:
		return nil, fmt.Errorf("%w: unsupported query %T", apperrors.ErrInvalidInput, q)
	}
}

func termQuery(field, value string) query.Query {
	tq := query.NewTermQuery(value)
	tq.SetField(field)
	return tq
}

// fuzzyQuery uses bleve's Levenshtein automaton. Transpositions are added
// as explicit variants with one adjacent pair swapped, each allowed one
// edit less, which gives the optimal string alignment bound for a single
// swap.
func fuzzyQuery(q *indexer.FuzzyQuery) query.Query {
	base := levenshtein(q.Field, q.Value, q.MaxEdits)
	if !q.Transpositions || q.MaxEdits < 1 {
		return base
	}
	variants := []query.Query{base}
	seen := map[string]struct{}{q.Value: {}}
	runes := []rune(q.Value)
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == runes[i+1] {
			continue
		}
		swapped := make([]rune, len(runes))
		copy(swapped, runes)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		s := string(swapped)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		variants = append(variants, levenshtein(q.Field, s, q.MaxEdits-1))
	}
	if len(variants) == 1 {
		return base
	}
	return query.NewDisjunctionQuery(variants)
}

func levenshtein(field, value string, edits int) query.Query {
	if edits <= 0 {
		return termQuery(field, value)
	}
	fq := query.NewFuzzyQuery(value)
	fq.SetField(field)
	fq.SetFuzziness(edits)
	return fq
}

// booleanQuery keeps the contract semantics: without Must clauses at least
// one Should clause has to match, with them Should clauses only score.
func booleanQuery(q *indexer.BooleanQuery) (query.Query, error) {
	var musts, shoulds []query.Query
	for _, c := range q.Clauses {
		if c.Occur == indexer.Should && indexer.Unsatisfiable(c.Query) {
			continue
		}
		compiled, err := compile(c.Query)
		if err != nil {
			return nil, err
		}
		if c.Occur == indexer.Must {
			musts = append(musts, compiled)
		} else {
			shoulds = append(shoulds, compiled)
		}
	}
	switch {
	case len(musts) == 0:
		return query.NewDisjunctionQuery(shoulds), nil
	case len(shoulds) == 0:
		return query.NewConjunctionQuery(musts), nil
	default:
		return query.NewBooleanQuery(musts, shoulds, nil), nil
	}
}
