package indexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Query is a structured lexical query. It is a closed set of variants:
// *TermQuery, *FuzzyQuery, *PhraseQuery, *BooleanQuery and *ParsedQuery.
// Backends switch on the concrete type to evaluate it.
type Query interface {
	fmt.Stringer
	isQuery()
}

// TermQuery matches documents whose field contains Value as an exact
// indexed term. Value is not analyzed.
type TermQuery struct {
	Field string
	Value string
}

// FuzzyQuery matches indexed terms within MaxEdits edits of Value. When
// Transpositions is set, swapping two adjacent characters counts as one
// edit (optimal string alignment) instead of two.
type FuzzyQuery struct {
	Field          string
	Value          string
	MaxEdits       int
	Transpositions bool
}

// PhraseQuery matches documents whose field contains Terms as a
// consecutive in-order sequence. Terms are not analyzed.
type PhraseQuery struct {
	Field string
	Terms []string
}

// Occur says whether a boolean clause is required or optional.
type Occur int

const (
	Must Occur = iota
	Should
)

func (o Occur) String() string {
	if o == Must {
		return "+"
	}
	return ""
}

// Clause is one member of a BooleanQuery.
type Clause struct {
	Occur Occur
	Query Query
}

// BooleanQuery combines clauses. Every Must clause has to match. Should
// clauses only add to the score when a Must clause is present; without any
// Must clause at least one Should clause has to match. A query with no
// clauses matches nothing.
type BooleanQuery struct {
	Clauses []Clause
}

// Conjunction is the operator a parsed query uses between the terms that
// analysis produces from its text.
type Conjunction int

const (
	ConjunctionOr Conjunction = iota
	ConjunctionAnd
)

// ParseConjunction maps "or"/"and" (case-insensitive) to a Conjunction.
func ParseConjunction(s string) (Conjunction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "or":
		return ConjunctionOr, nil
	case "and":
		return ConjunctionAnd, nil
	default:
		return ConjunctionOr, fmt.Errorf("unknown conjunction %q", s)
	}
}

func (c Conjunction) String() string {
	if c == ConjunctionAnd {
		return "and"
	}
	return "or"
}

// ParsedQuery is free text run through the field's analyzer; the resulting
// terms are combined with Conjunction.
type ParsedQuery struct {
	Field       string
	Text        string
	Conjunction Conjunction
}

func (*TermQuery) isQuery()    {}
func (*FuzzyQuery) isQuery()   {}
func (*PhraseQuery) isQuery()  {}
func (*BooleanQuery) isQuery() {}
func (*ParsedQuery) isQuery()  {}

// Term builds an exact-term query.
func Term(field, value string) Query {
	return &TermQuery{Field: field, Value: value}
}

// Fuzzy builds a bounded edit-distance query.
func Fuzzy(field, value string, maxEdits int, transpositions bool) Query {
	return &FuzzyQuery{Field: field, Value: value, MaxEdits: maxEdits, Transpositions: transpositions}
}

// Phrase builds an ordered phrase query. terms is copied.
func Phrase(field string, terms []string) Query {
	return &PhraseQuery{Field: field, Terms: append([]string(nil), terms...)}
}

// Boolean combines clauses into one query.
func Boolean(clauses ...Clause) Query {
	return &BooleanQuery{Clauses: clauses}
}

// MustMatch wraps q as a required clause.
func MustMatch(q Query) Clause {
	return Clause{Occur: Must, Query: q}
}

// ShouldMatch wraps q as an optional clause.
func ShouldMatch(q Query) Clause {
	return Clause{Occur: Should, Query: q}
}

// Parsed builds a free-text query against field.
func Parsed(field, text string, conj Conjunction) Query {
	return &ParsedQuery{Field: field, Text: text, Conjunction: conj}
}

// Unsatisfiable reports whether q cannot match any document whatever the
// index contents. Backends short-circuit such queries without touching
// storage.
func Unsatisfiable(q Query) bool {
	switch q := q.(type) {
	case nil:
		return true
	case *TermQuery:
		return q.Value == ""
	case *FuzzyQuery:
		return false
	case *PhraseQuery:
		if len(q.Terms) == 0 {
			return true
		}
		for _, t := range q.Terms {
			if t == "" {
				return true
			}
		}
		return false
	case *ParsedQuery:
		return strings.TrimSpace(q.Text) == ""
	case *BooleanQuery:
		if len(q.Clauses) == 0 {
			return true
		}
		hasMust := false
		allShouldsDead := true
		for _, c := range q.Clauses {
			dead := Unsatisfiable(c.Query)
			if c.Occur == Must {
				hasMust = true
				if dead {
					return true
				}
				continue
			}
			if !dead {
				allShouldsDead = false
			}
		}
		return !hasMust && allShouldsDead
	default:
		return false
	}
}

func (q *TermQuery) String() string {
	return q.Field + ":" + strconv.Quote(q.Value)
}

func (q *FuzzyQuery) String() string {
	s := fmt.Sprintf("%s:%s~%d", q.Field, strconv.Quote(q.Value), q.MaxEdits)
	if q.Transpositions {
		s += "t"
	}
	return s
}

func (q *PhraseQuery) String() string {
	return q.Field + ":" + strconv.Quote(strings.Join(q.Terms, " "))
}

func (q *BooleanQuery) String() string {
	parts := make([]string, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		parts = append(parts, c.Occur.String()+c.Query.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (q *ParsedQuery) String() string {
	return fmt.Sprintf("%s:parse(%s,%s)", q.Field, strconv.Quote(q.Text), q.Conjunction)
}
