package searcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/indexertest"
)

func TestResolveBlankTokenSkipsIndex(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{})
	r := NewResolver(words, DefaultOptions())

	for _, tok := range []string{"", " ", "\t \n"} {
		got, err := r.Resolve(context.Background(), tok)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Empty(t, words.Calls())
}

func TestResolveDeduplicates(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{
		Hits: hitsForTokens("love", "me", "love", "do", "me", "love"),
	})
	r := NewResolver(words, DefaultOptions())

	got, err := r.Resolve(context.Background(), "lo")
	require.NoError(t, err)
	assert.Equal(t, []string{"love", "me", "do"}, got)
	assert.Len(t, words.Calls(), 1)
}

func TestResolveStructuredLookupFirst(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{Hits: hitsForTokens("hopes")})
	r := NewResolver(words, DefaultOptions())

	_, err := r.Resolve(context.Background(), "  Hop ")
	require.NoError(t, err)

	calls := words.Calls()
	require.Len(t, calls, 1)
	parsed, ok := calls[0].Query.(*indexer.ParsedQuery)
	require.True(t, ok)
	assert.Equal(t, indexer.FieldTokenNgram, parsed.Field)
	assert.Equal(t, "Hop", parsed.Text)
	assert.Equal(t, indexer.ConjunctionOr, parsed.Conjunction)
	assert.Equal(t, 10, calls[0].Limit)
}

func TestResolveFallsBackOnlyOnZeroHits(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{
		Respond: func(q indexer.Query, _ int) ([]indexer.Hit, error) {
			if _, ok := q.(*indexer.FuzzyQuery); ok {
				return hitsForTokens("high"), nil
			}
			return nil, nil
		},
	})
	r := NewResolver(words, DefaultOptions())

	got, err := r.Resolve(context.Background(), "HGIH")
	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, got)

	calls := words.Calls()
	require.Len(t, calls, 2)
	fuzzy, ok := calls[1].Query.(*indexer.FuzzyQuery)
	require.True(t, ok)
	assert.Equal(t, indexer.FieldToken, fuzzy.Field)
	assert.Equal(t, "hgih", fuzzy.Value)
	assert.Equal(t, 1, fuzzy.MaxEdits)
	assert.True(t, fuzzy.Transpositions)
	assert.Equal(t, 10, calls[1].Limit)
}

func TestResolveBothStepsEmpty(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{})
	r := NewResolver(words, DefaultOptions())

	got, err := r.Resolve(context.Background(), "xyz123")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, words.Calls(), 2)
}

func TestResolvePropagatesErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	r := NewResolver(&indexertest.Stub{Err: boom}, DefaultOptions())

	_, err := r.Resolve(context.Background(), "hop")
	assert.ErrorIs(t, err, boom)

	calls := 0
	r = NewResolver(&indexertest.Stub{
		Respond: func(indexer.Query, int) ([]indexer.Hit, error) {
			calls++
			if calls == 2 {
				return nil, boom
			}
			return nil, nil
		},
	}, DefaultOptions())
	_, err = r.Resolve(context.Background(), "hop")
	assert.ErrorIs(t, err, boom)
}

func TestResolveCancelled(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{})
	r := NewResolver(words, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, "hop")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, words.Calls())
}

func TestResolveAgainstCatalog(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		r := NewResolver(f.words, DefaultOptions())

		got, err := r.Resolve(context.Background(), "hopes")
		require.NoError(t, err)
		assert.Contains(t, got, "hopes")
		assert.Contains(t, got, "hope")
		assert.Len(t, f.words.Calls(), 1)

		got, err = r.Resolve(context.Background(), "love")
		require.NoError(t, err)
		count := 0
		for _, s := range got {
			if s == "love" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestResolveTypoWithConjunctionAnd(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		opts := DefaultOptions()
		opts.Conjunction = indexer.ConjunctionAnd
		r := NewResolver(f.words, opts)

		got, err := r.Resolve(context.Background(), "hgih")
		require.NoError(t, err)
		assert.Equal(t, []string{"high"}, got)
		assert.Len(t, f.words.Calls(), 2)
	})
}
