package memory

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

func (e *Engine) field(name string) (*fieldIndex, error) {
	f, ok := e.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not indexed in %s", apperrors.ErrInvalidInput, name, e.schema.Name)
	}
	return f, nil
}

// eval returns the matching documents of q with their scores. Callers hold
// at least the read lock.
func (e *Engine) eval(q indexer.Query) (map[string]float64, error) {
	if indexer.Unsatisfiable(q) {
		return map[string]float64{}, nil
	}
	switch q := q.(type) {
	case *indexer.TermQuery:
		return e.evalTerm(q)
	case *indexer.FuzzyQuery:
		return e.evalFuzzy(q)
	case *indexer.PhraseQuery:
		return e.evalPhrase(q)
	case *indexer.ParsedQuery:
		return e.evalParsed(q)
	case *indexer.BooleanQuery:
		return e.evalBoolean(q)
	default:
		return nil, fmt.Errorf("%w: unsupported query %T", apperrors.ErrInvalidInput, q)
	}
}

func (e *Engine) scoreTerm(f *fieldIndex, postings PostingList, into map[string]float64, boost float64) {
	for _, p := range postings {
		into[p.DocID] += boost * bm25(f, len(e.docs), len(postings), p)
	}
}

func (e *Engine) evalTerm(q *indexer.TermQuery) (map[string]float64, error) {
	f, err := e.field(q.Field)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64)
	e.scoreTerm(f, f.lookup(q.Value), scores, 1)
	return scores, nil
}

// evalFuzzy scans the field dictionary. Closer terms get a higher boost and
// a document keeps its best matching term.
func (e *Engine) evalFuzzy(q *indexer.FuzzyQuery) (map[string]float64, error) {
	f, err := e.field(q.Field)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64)
	for term := range f.postings {
		d := editDistance(q.Value, term, q.Transpositions, q.MaxEdits)
		if d > q.MaxEdits {
			continue
		}
		termScores := make(map[string]float64)
		e.scoreTerm(f, f.lookup(term), termScores, 1/float64(1+d))
		for docID, s := range termScores {
			if s > scores[docID] {
				scores[docID] = s
			}
		}
	}
	return scores, nil
}

func (e *Engine) evalPhrase(q *indexer.PhraseQuery) (map[string]float64, error) {
	f, err := e.field(q.Field)
	if err != nil {
		return nil, err
	}
	if !f.spec.Positions {
		return nil, fmt.Errorf("%w: field %q has no positions for phrase queries", apperrors.ErrInvalidInput, q.Field)
	}

	lists := make([]PostingList, len(q.Terms))
	for i, term := range q.Terms {
		lists[i] = f.lookup(term)
		if len(lists[i]) == 0 {
			return map[string]float64{}, nil
		}
	}

	positions := make([]map[string]map[int]struct{}, len(lists))
	for i, l := range lists {
		positions[i] = make(map[string]map[int]struct{}, len(l))
		for _, p := range l {
			set := make(map[int]struct{}, len(p.Positions))
			for _, pos := range p.Positions {
				set[pos] = struct{}{}
			}
			positions[i][p.DocID] = set
		}
	}

	scores := make(map[string]float64)
	for docID := range intersectPostings(lists) {
		if !phraseAt(positions, docID) {
			continue
		}
		for _, l := range lists {
			for _, p := range l {
				if p.DocID == docID {
					scores[docID] += bm25(f, len(e.docs), len(l), p)
					break
				}
			}
		}
	}
	return scores, nil
}

// phraseAt reports whether the terms occur at consecutive positions
// somewhere in docID.
func phraseAt(positions []map[string]map[int]struct{}, docID string) bool {
	for start := range positions[0][docID] {
		matched := true
		for i := 1; i < len(positions); i++ {
			if _, ok := positions[i][docID][start+i]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func (e *Engine) evalParsed(q *indexer.ParsedQuery) (map[string]float64, error) {
	f, err := e.field(q.Field)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	lists := make([]PostingList, 0)
	for _, tok := range analyze(f.spec.Analyzer, q.Text) {
		if _, dup := seen[tok.Term]; dup {
			continue
		}
		seen[tok.Term] = struct{}{}
		postings := f.lookup(tok.Term)
		if len(postings) == 0 {
			if q.Conjunction == indexer.ConjunctionAnd {
				return map[string]float64{}, nil
			}
			continue
		}
		lists = append(lists, postings)
	}

	scores := make(map[string]float64)
	for _, l := range lists {
		e.scoreTerm(f, l, scores, 1)
	}
	if q.Conjunction == indexer.ConjunctionAnd {
		keep := intersectPostings(lists)
		for docID := range scores {
			if _, ok := keep[docID]; !ok {
				delete(scores, docID)
			}
		}
	}
	return scores, nil
}

func (e *Engine) evalBoolean(q *indexer.BooleanQuery) (map[string]float64, error) {
	var must map[string]float64
	should := make(map[string]float64)

	for _, c := range q.Clauses {
		if c.Occur != indexer.Must {
			continue
		}
		s, err := e.eval(c.Query)
		if err != nil {
			return nil, err
		}
		if must == nil {
			must = s
		} else {
			for docID, score := range must {
				if other, ok := s[docID]; ok {
					must[docID] = score + other
				} else {
					delete(must, docID)
				}
			}
		}
		if len(must) == 0 {
			return must, nil
		}
	}

	for _, c := range q.Clauses {
		if c.Occur != indexer.Should {
			continue
		}
		s, err := e.eval(c.Query)
		if err != nil {
			return nil, err
		}
		for docID, score := range s {
			should[docID] += score
		}
	}

	if must == nil {
		return should, nil
	}
	for docID := range must {
		must[docID] += should[docID]
	}
	return must, nil
}
