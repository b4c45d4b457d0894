package searcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	blevebackend "github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/bleve"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/indexertest"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/memory"
)

var catalog = []indexer.Document{
	indexertest.Track("t1", "High Hopes", "en"),
	indexertest.Track("t2", "Hope", "en"),
	indexertest.Track("t3", "Группа крови", "ru"),
	indexertest.Track("t4", "Love Love Me Do", "en"),
	indexertest.Track("t5", "Love Me Tender", "en"),
}

func catalogNames() []string {
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		names = append(names, d.Fields[indexer.FieldNameRaw])
	}
	return names
}

var backends = map[string]func(indexer.Schema) (indexer.Store, error){
	"bleve": func(s indexer.Schema) (indexer.Store, error) {
		return blevebackend.Open(s, "")
	},
	"memory": func(s indexer.Schema) (indexer.Store, error) {
		return memory.Open(s, "")
	},
}

type fixture struct {
	words   *indexertest.Counting
	phrases *indexertest.Counting
}

func (f fixture) indices() Indices {
	return Indices{Words: f.words, Phrases: f.phrases}
}

func newFixture(t *testing.T, backend string) fixture {
	t.Helper()
	open := backends[backend]
	ctx := context.Background()

	words, err := open(indexer.WordSchema())
	require.NoError(t, err)
	t.Cleanup(func() { words.Close() })
	require.NoError(t, words.Write(ctx, indexertest.Words(catalogNames()...)))

	phrases, err := open(indexer.PhraseSchema())
	require.NoError(t, err)
	t.Cleanup(func() { phrases.Close() })
	require.NoError(t, phrases.Write(ctx, catalog))

	return fixture{
		words:   indexertest.NewCounting(words),
		phrases: indexertest.NewCounting(phrases),
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, f fixture)) {
	for name := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newFixture(t, name))
		})
	}
}

func trackIDs(results []SearchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.TrackID)
	}
	return ids
}

func hitsForTokens(tokens ...string) []indexer.Hit {
	hits := make([]indexer.Hit, 0, len(tokens))
	for i, tok := range tokens {
		hits = append(hits, indexer.Hit{
			Score:  float64(len(tokens) - i),
			Fields: map[string]string{indexer.FieldToken: tok},
		})
	}
	return hits
}
