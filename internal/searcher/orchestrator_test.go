package searcher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/indexertest"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/tracing"
)

func newOrchestrator(t *testing.T, indices Indices) *Orchestrator {
	t.Helper()
	o, err := New(indices, DefaultOptions())
	require.NoError(t, err)
	return o
}

func TestNewRequiresBothIndices(t *testing.T) {
	_, err := New(Indices{Words: &indexertest.Stub{}}, DefaultOptions())
	assert.Error(t, err)
	_, err = New(Indices{Phrases: &indexertest.Stub{}}, DefaultOptions())
	assert.Error(t, err)
}

func TestSearchWhitespaceNeverTouchesIndices(t *testing.T) {
	words := indexertest.NewCounting(&indexertest.Stub{})
	phrases := indexertest.NewCounting(&indexertest.Stub{})
	o := newOrchestrator(t, Indices{Words: words, Phrases: phrases})

	for _, raw := range []string{"", " ", "   ", "\t", " \n \t "} {
		out, err := o.Search(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, PathEmpty, out.Path)
		assert.NotNil(t, out.Results)
		assert.Empty(t, out.Results)
	}
	assert.Empty(t, words.Calls())
	assert.Empty(t, phrases.Calls())
}

func TestSearchExactSingleToken(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		out, err := o.Search(context.Background(), "hopes")
		require.NoError(t, err)
		assert.Equal(t, PathExact, out.Path)
		assert.Equal(t, []string{"t1"}, trackIDs(out.Results))
		assert.Empty(t, f.words.Calls())
		assert.Len(t, f.phrases.Calls(), 1)
		assert.Equal(t, 50, f.phrases.Calls()[0].Limit)

		out, err = o.Search(context.Background(), "крови")
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "t3", out.Results[0].TrackID)
		assert.Equal(t, "ru", out.Results[0].Lang)
	})
}

func TestSearchExactTokenFindsEveryRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())
		for _, doc := range catalog {
			for _, tok := range indexertest.Words(doc.Fields[indexer.FieldNameRaw]) {
				out, err := o.Search(context.Background(), tok.Fields[indexer.FieldToken])
				require.NoError(t, err)
				assert.Contains(t, trackIDs(out.Results), doc.ID, tok.Fields[indexer.FieldToken])
			}
		}
	})
}

func TestSearchHighHopes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		out, err := o.Search(context.Background(), "high hopes")
		require.NoError(t, err)
		assert.Equal(t, PathPhrase, out.Path)
		assert.Contains(t, out.Suggestions, "hopes")
		assert.Contains(t, out.Suggestions, "hope")
		assert.Equal(t, []string{"t1"}, trackIDs(out.Results))

		require.Len(t, f.words.Calls(), 1)
		parsed, ok := f.words.Calls()[0].Query.(*indexer.ParsedQuery)
		require.True(t, ok)
		assert.Equal(t, "hopes", parsed.Text)
		assert.Len(t, f.phrases.Calls(), 1)
	})
}

func TestSearchUnknownTrailingToken(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		out, err := o.Search(context.Background(), "high hopes ololo")
		require.NoError(t, err)
		assert.Equal(t, PathPhrase, out.Path)
		assert.Empty(t, out.Results)
	})
}

func TestSearchNoSuggestionsMatchesNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, Indices{
			Words:   indexertest.NewCounting(&indexertest.Stub{}),
			Phrases: f.phrases,
		})

		out, err := o.Search(context.Background(), "high hopes")
		require.NoError(t, err)
		assert.Empty(t, out.Suggestions)
		assert.Empty(t, out.Results)
		require.Len(t, f.phrases.Calls(), 1)
		assert.True(t, indexer.Unsatisfiable(f.phrases.Calls()[0].Query))
	})
}

func TestSearchNoMatchAnywhere(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		out, err := o.Search(context.Background(), "xyz123")
		require.NoError(t, err)
		assert.Equal(t, PathEscalated, out.Path)
		assert.Empty(t, out.Results)
		assert.Empty(t, out.Suggestions)
		assert.Len(t, f.words.Calls(), 2)
		assert.Len(t, f.phrases.Calls(), 2)
	})
}

func TestSearchSingleTokenEscalation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		out, err := o.Search(context.Background(), "hopse")
		require.NoError(t, err)
		assert.Equal(t, PathEscalated, out.Path)
		assert.NotEmpty(t, out.Suggestions)
		// The escalated query still requires the original token as a phrase,
		// which is the exact term that already missed.
		assert.Empty(t, out.Results)

		calls := f.phrases.Calls()
		require.Len(t, calls, 2)
		_, ok := calls[0].Query.(*indexer.TermQuery)
		assert.True(t, ok)
		_, ok = calls[1].Query.(*indexer.BooleanQuery)
		assert.True(t, ok)
	})
}

func TestSearchKeepsEmptyTokens(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		out, err := o.Search(context.Background(), "high ")
		require.NoError(t, err)
		assert.Equal(t, PathPhrase, out.Path)
		assert.Empty(t, out.Results)
		assert.Empty(t, f.words.Calls())

		out, err = o.Search(context.Background(), "high  hopes")
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		phrase := f.phrases.Calls()[1].Query.(*indexer.BooleanQuery).Clauses[0].Query.(*indexer.PhraseQuery)
		assert.Equal(t, []string{"high", "", "hopes"}, phrase.Terms)
	})
}

func TestSearchRoundTripsStoredFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())

		for _, raw := range []string{"hopes", "high hopes"} {
			out, err := o.Search(context.Background(), raw)
			require.NoError(t, err)
			require.NotEmpty(t, out.Results)
			for _, r := range out.Results {
				if r.TrackID == "t1" {
					assert.Equal(t, "High Hopes", r.NameRaw)
					assert.Equal(t, "high hopes", r.Name)
					assert.Equal(t, "en", r.Lang)
					assert.Positive(t, r.Score)
				}
			}
		}
	})
}

func TestSearchPropagatesIndexFaults(t *testing.T) {
	boom := errors.New("segment unreadable")

	o := newOrchestrator(t, Indices{Words: &indexertest.Stub{}, Phrases: &indexertest.Stub{Err: boom}})
	_, err := o.Search(context.Background(), "hopes")
	assert.ErrorIs(t, err, boom)

	o = newOrchestrator(t, Indices{Words: &indexertest.Stub{Err: boom}, Phrases: &indexertest.Stub{}})
	_, err = o.Search(context.Background(), "high hopes")
	assert.ErrorIs(t, err, boom)
	_, err = o.Search(context.Background(), "hopes")
	assert.ErrorIs(t, err, boom)
}

func TestSearchCancelledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	phrases := indexertest.NewCounting(&indexertest.Stub{})
	words := indexertest.NewCounting(&indexertest.Stub{
		Respond: func(indexer.Query, int) ([]indexer.Hit, error) {
			cancel()
			return hitsForTokens("hopes"), nil
		},
	})
	o := newOrchestrator(t, Indices{Words: words, Phrases: phrases})

	_, err := o.Search(ctx, "high hopes")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, words.Calls(), 1)
	assert.Empty(t, phrases.Calls())
}

func TestSearchRecordsChildSpans(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f fixture) {
		o := newOrchestrator(t, f.indices())
		ctx, root := tracing.StartSpan(context.Background(), "search", "trace-1")

		_, err := o.Search(ctx, "high hopes")
		require.NoError(t, err)

		require.Len(t, root.Children, 2)
		assert.Equal(t, "resolve", root.Children[0].Name)
		assert.Equal(t, "evaluate", root.Children[1].Name)
		assert.Equal(t, "trace-1", root.Children[1].TraceID)
	})
}

func TestSearchResultJSON(t *testing.T) {
	r := SearchResult{Score: 0.5, TrackID: "t1", Name: "high hopes", NameRaw: "High Hopes", Lang: "en"}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":"0.5","track_id":"t1","name":"high hopes","name_raw":"High Hopes","lang":"en"}`, string(data))

	var back SearchResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)

	data, err = json.Marshal(SearchResult{Score: 1.25, TrackID: "t9", Name: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":"1.25","track_id":"t9","name":"x"}`, string(data))
}
