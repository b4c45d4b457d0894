package indexertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

// Opener creates an empty store for schema. The store is closed by the
// suite.
type Opener func(t *testing.T, schema indexer.Schema) indexer.Store

// RunConformance checks the query semantics the search core relies on.
func RunConformance(t *testing.T, open Opener) {
	ctx := context.Background()

	phrases := func(t *testing.T, docs ...indexer.Document) indexer.Store {
		s := open(t, indexer.PhraseSchema())
		t.Cleanup(func() { s.Close() })
		require.NoError(t, s.Write(ctx, docs))
		return s
	}
	words := func(t *testing.T, names ...string) indexer.Store {
		s := open(t, indexer.WordSchema())
		t.Cleanup(func() { s.Close() })
		require.NoError(t, s.Write(ctx, Words(names...)))
		return s
	}
	ids := func(hits []indexer.Hit) []string {
		out := make([]string, len(hits))
		for i, h := range hits {
			out[i] = h.DocID
		}
		return out
	}
	tokens := func(hits []indexer.Hit) []string {
		out := make([]string, len(hits))
		for i, h := range hits {
			out[i] = h.Field(indexer.FieldToken)
		}
		return out
	}

	t.Run("term matches whole words only", func(t *testing.T) {
		s := phrases(t, Track("t1", "High Hopes", "en"), Track("t2", "Hope", "en"))
		hits, err := s.Search(ctx, indexer.Term(indexer.FieldName, "hopes"), 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, ids(hits))

		hits, err = s.Search(ctx, indexer.Term(indexer.FieldName, "hop"), 50)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("stored fields round trip", func(t *testing.T) {
		s := phrases(t, Track("t1", "High Hopes", "en"), Track("t2", "Группа Крови", "ru"))
		hits, err := s.Search(ctx, indexer.Term(indexer.FieldName, "крови"), 50)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "t2", hits[0].Field(indexer.FieldTrackID))
		assert.Equal(t, "группа крови", hits[0].Field(indexer.FieldName))
		assert.Equal(t, "Группа Крови", hits[0].Field(indexer.FieldNameRaw))
		assert.Equal(t, "ru", hits[0].Field(indexer.FieldLang))
	})

	t.Run("phrase requires adjacency and order", func(t *testing.T) {
		s := phrases(t,
			Track("t1", "High Hopes", "en"),
			Track("t2", "Hopes High", "en"),
			Track("t3", "High and Mighty Hopes", "en"),
		)
		hits, err := s.Search(ctx, indexer.Phrase(indexer.FieldName, []string{"high", "hopes"}), 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, ids(hits))
	})

	t.Run("phrase of one term behaves like the term", func(t *testing.T) {
		s := phrases(t, Track("t1", "High Hopes", "en"))
		hits, err := s.Search(ctx, indexer.Phrase(indexer.FieldName, []string{"hopes"}), 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, ids(hits))
	})

	t.Run("fuzzy counts a transposition as one edit", func(t *testing.T) {
		s := words(t, "hopes", "high")
		hits, err := s.Search(ctx, indexer.Fuzzy(indexer.FieldToken, "hpoes", 1, true), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"hopes"}, tokens(hits))

		hits, err = s.Search(ctx, indexer.Fuzzy(indexer.FieldToken, "hpoes", 1, false), 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("fuzzy finds single edits", func(t *testing.T) {
		s := words(t, "hopes", "hope", "ropes", "high")
		hits, err := s.Search(ctx, indexer.Fuzzy(indexer.FieldToken, "hopes", 1, true), 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"hopes", "hope", "ropes"}, tokens(hits))
	})

	t.Run("parsed query on ngrams", func(t *testing.T) {
		s := words(t, "hopes", "high", "hope", "love")
		hits, err := s.Search(ctx, indexer.Parsed(indexer.FieldTokenNgram, "hop", indexer.ConjunctionAnd), 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"hopes", "hope"}, tokens(hits))

		hits, err = s.Search(ctx, indexer.Parsed(indexer.FieldTokenNgram, "Hop", indexer.ConjunctionOr), 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"hopes", "hope", "high", "love"}, tokens(hits))
	})

	t.Run("word entries repeat per occurrence", func(t *testing.T) {
		s := words(t, "love love me do", "love me tender")
		hits, err := s.Search(ctx, indexer.Term(indexer.FieldToken, "love"), 10)
		require.NoError(t, err)
		assert.Len(t, hits, 3)
	})

	t.Run("boolean musts and shoulds", func(t *testing.T) {
		s := phrases(t,
			Track("t1", "High Hopes", "en"),
			Track("t2", "High Road", "en"),
			Track("t3", "Hope", "en"),
		)
		q := indexer.Boolean(
			indexer.MustMatch(indexer.Phrase(indexer.FieldName, []string{"high", "hopes"})),
			indexer.MustMatch(indexer.Boolean(
				indexer.ShouldMatch(indexer.Term(indexer.FieldName, "hopes")),
				indexer.ShouldMatch(indexer.Term(indexer.FieldName, "hope")),
			)),
		)
		hits, err := s.Search(ctx, q, 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, ids(hits))

		hits, err = s.Search(ctx, indexer.Boolean(
			indexer.ShouldMatch(indexer.Term(indexer.FieldName, "road")),
			indexer.ShouldMatch(indexer.Term(indexer.FieldName, "hope")),
		), 50)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"t2", "t3"}, ids(hits))

		hits, err = s.Search(ctx, indexer.Boolean(
			indexer.MustMatch(indexer.Term(indexer.FieldName, "high")),
			indexer.ShouldMatch(indexer.Term(indexer.FieldName, "road")),
		), 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"t2", "t1"}, ids(hits))
	})

	t.Run("empty disjunction matches nothing", func(t *testing.T) {
		s := phrases(t, Track("t1", "High Hopes", "en"))
		q := indexer.Boolean(
			indexer.MustMatch(indexer.Phrase(indexer.FieldName, []string{"high", "hopes"})),
			indexer.MustMatch(indexer.Boolean()),
		)
		hits, err := s.Search(ctx, q, 50)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("limit caps hits", func(t *testing.T) {
		s := phrases(t,
			Track("t1", "Love", "en"),
			Track("t2", "Love", "en"),
			Track("t3", "Love", "en"),
		)
		hits, err := s.Search(ctx, indexer.Term(indexer.FieldName, "love"), 2)
		require.NoError(t, err)
		assert.Len(t, hits, 2)

		n, err := s.DocCount()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), n)
	})
}
