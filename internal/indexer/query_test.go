package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsatisfiable(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"nil", nil, true},
		{"term", Term(FieldName, "high"), false},
		{"empty term", Term(FieldName, ""), true},
		{"fuzzy", Fuzzy(FieldToken, "hgih", 1, true), false},
		{"phrase", Phrase(FieldName, []string{"high", "hopes"}), false},
		{"empty phrase", Phrase(FieldName, nil), true},
		{"phrase with gap", Phrase(FieldName, []string{"high", "", "hopes"}), true},
		{"parsed", Parsed(FieldTokenNgram, "hop", ConjunctionOr), false},
		{"blank parsed", Parsed(FieldTokenNgram, "  ", ConjunctionOr), true},
		{"empty boolean", Boolean(), true},
		{"should only", Boolean(ShouldMatch(Term(FieldName, "a"))), false},
		{"dead shoulds", Boolean(ShouldMatch(Term(FieldName, "")), ShouldMatch(Boolean())), true},
		{"must and live should", Boolean(MustMatch(Term(FieldName, "a")), ShouldMatch(Term(FieldName, ""))), false},
		{
			"phrase and empty or",
			Boolean(MustMatch(Phrase(FieldName, []string{"high", "hopes"})), MustMatch(Boolean())),
			true,
		},
		{
			"phrase and or",
			Boolean(
				MustMatch(Phrase(FieldName, []string{"high", "hopes"})),
				MustMatch(Boolean(ShouldMatch(Term(FieldName, "hopes")), ShouldMatch(Term(FieldName, "hope")))),
			),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unsatisfiable(tt.q))
		})
	}
}

func TestPhraseCopiesTerms(t *testing.T) {
	terms := []string{"high", "hopes"}
	q := Phrase(FieldName, terms).(*PhraseQuery)
	terms[0] = "low"
	assert.Equal(t, []string{"high", "hopes"}, q.Terms)
}

func TestParseConjunction(t *testing.T) {
	c, err := ParseConjunction("AND")
	require.NoError(t, err)
	assert.Equal(t, ConjunctionAnd, c)

	c, err = ParseConjunction("or")
	require.NoError(t, err)
	assert.Equal(t, ConjunctionOr, c)

	_, err = ParseConjunction("xor")
	assert.Error(t, err)
}

func TestQueryString(t *testing.T) {
	q := Boolean(
		MustMatch(Phrase(FieldName, []string{"high", "hopes"})),
		MustMatch(Boolean(ShouldMatch(Term(FieldName, "hopes")))),
	)
	assert.Equal(t, `(+name:"high hopes" +(name:"hopes"))`, q.String())
	assert.Equal(t, `token:"hgih"~1t`, Fuzzy(FieldToken, "hgih", 1, true).String())
	assert.Equal(t, `token_ngram:parse("hop",or)`, Parsed(FieldTokenNgram, "hop", ConjunctionOr).String())
}

func TestSchemas(t *testing.T) {
	f, ok := PhraseSchema().Field(FieldName)
	require.True(t, ok)
	assert.True(t, f.Positions)
	assert.Equal(t, AnalyzerWords, f.Analyzer)

	raw, ok := PhraseSchema().Field(FieldNameRaw)
	require.True(t, ok)
	assert.False(t, raw.Indexed)
	assert.True(t, raw.Stored)

	_, ok = WordSchema().Field(FieldName)
	assert.False(t, ok)
}
