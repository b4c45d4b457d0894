package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

func TestComposeSingleToken(t *testing.T) {
	c := NewComposer(DefaultOptions())
	q := c.Compose([]string{"hopes"}, []string{"hopes", "hope"})

	term, ok := q.(*indexer.TermQuery)
	require.True(t, ok)
	assert.Equal(t, indexer.FieldName, term.Field)
	assert.Equal(t, "hopes", term.Value)
	assert.Equal(t, 50, c.Limit())
}

func TestComposeMultiToken(t *testing.T) {
	c := NewComposer(DefaultOptions())
	q := c.Compose([]string{"high", "hopes"}, []string{"hopes", "hope"})

	assert.Equal(t, `(+name:"high hopes" +(name:"hopes" name:"hope"))`, q.String())
	assert.False(t, indexer.Unsatisfiable(q))
}

func TestComposeKeepsTokensVerbatim(t *testing.T) {
	c := NewComposer(DefaultOptions())
	q := c.Compose([]string{"High", "Hopes"}, []string{"hopes"})
	assert.Equal(t, `(+name:"High Hopes" +(name:"hopes"))`, q.String())
}

func TestComposeEmptySuggestionsMatchesNothing(t *testing.T) {
	c := NewComposer(DefaultOptions())
	for _, tokens := range [][]string{
		{"high", "hopes"},
		{"high", "hopes", "ololo"},
		{"hopes"},
	} {
		assert.True(t, indexer.Unsatisfiable(c.Compound(tokens, nil)), tokens)
	}
}

func TestComposeEmptySuggestionsMatchesNothingOnIndex(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		c := NewComposer(DefaultOptions())
		hits, err := f.phrases.Search(t.Context(), c.Compose([]string{"high", "hopes"}, nil), c.Limit())
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}
