package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/indexertest"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/config"
)

func TestOpenPairPersists(t *testing.T) {
	for _, name := range []string{Bleve, Memory} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.IndexConfig{
				Backend:    name,
				WordPath:   filepath.Join(dir, "words"),
				PhrasePath: filepath.Join(dir, "phrases"),
			}
			ctx := context.Background()

			pair, err := OpenPair(cfg)
			require.NoError(t, err)
			require.NoError(t, pair.Words.Write(ctx, indexertest.Words("High Hopes")))
			require.NoError(t, pair.Phrases.Write(ctx, []indexer.Document{indexertest.Track("t1", "High Hopes", "en")}))
			require.NoError(t, pair.Close())

			pair, err = OpenPair(cfg)
			require.NoError(t, err)
			defer pair.Close()

			n, err := pair.Words.DocCount()
			require.NoError(t, err)
			assert.Equal(t, uint64(2), n)
			hits, err := pair.Phrases.Search(ctx, indexer.Term(indexer.FieldName, "hopes"), 10)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "t1", hits[0].DocID)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("tantivy", indexer.WordSchema(), "")
	assert.Error(t, err)
}

func TestStagedRebuildReplacesCatalog(t *testing.T) {
	for _, name := range []string{Bleve, Memory} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.IndexConfig{
				Backend:    name,
				WordPath:   filepath.Join(dir, "words"),
				PhrasePath: filepath.Join(dir, "phrases"),
			}
			ctx := context.Background()
			build := func(csv string) {
				t.Helper()
				staging, err := OpenStaging(cfg)
				require.NoError(t, err)
				defer staging.Discard()
				src := catalog.NewCSVReaderSource(strings.NewReader(csv), 0, 1, false)
				_, err = catalog.NewBuilder(staging.Words, staging.Phrases, catalog.BuilderConfig{Workers: 2, BatchSize: 1}).Build(ctx, src)
				require.NoError(t, err)
				require.NoError(t, staging.Commit())
			}

			build("t1,Hotel California\nt2,Yesterday\n")
			build("t1,Hotel\n")

			pair, err := OpenPair(cfg)
			require.NoError(t, err)
			defer pair.Close()

			n, err := pair.Phrases.DocCount()
			require.NoError(t, err)
			assert.Equal(t, uint64(1), n)
			hits, err := pair.Phrases.Search(ctx, indexer.Term(indexer.FieldName, "yesterday"), 10)
			require.NoError(t, err)
			assert.Empty(t, hits)
			hits, err = pair.Words.Search(ctx, indexer.Term(indexer.FieldToken, "california"), 10)
			require.NoError(t, err)
			assert.Empty(t, hits)
			hits, err = pair.Phrases.Search(ctx, indexer.Term(indexer.FieldName, "hotel"), 10)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "t1", hits[0].DocID)

			for _, p := range []string{cfg.WordPath, cfg.PhrasePath} {
				_, err := os.Stat(p + stagingSuffix)
				assert.True(t, os.IsNotExist(err), "staging directory removed")
				_, err = os.Stat(p + retiredSuffix)
				assert.True(t, os.IsNotExist(err), "retired directory removed")
			}
		})
	}
}

func TestStagingDiscardKeepsLiveIndices(t *testing.T) {
	dir := t.TempDir()
	cfg := config.IndexConfig{
		Backend:    Memory,
		WordPath:   filepath.Join(dir, "words"),
		PhrasePath: filepath.Join(dir, "phrases"),
	}
	ctx := context.Background()

	pair, err := OpenPair(cfg)
	require.NoError(t, err)
	require.NoError(t, pair.Phrases.Write(ctx, []indexer.Document{indexertest.Track("t1", "High Hopes", "en")}))
	require.NoError(t, pair.Close())

	staging, err := OpenStaging(cfg)
	require.NoError(t, err)
	require.NoError(t, staging.Phrases.Write(ctx, []indexer.Document{indexertest.Track("t2", "Yesterday", "en")}))
	require.NoError(t, staging.Discard())

	pair, err = OpenPair(cfg)
	require.NoError(t, err)
	defer pair.Close()
	hits, err := pair.Phrases.Search(ctx, indexer.Term(indexer.FieldName, "hopes"), 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	hits, err = pair.Phrases.Search(ctx, indexer.Term(indexer.FieldName, "yesterday"), 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
