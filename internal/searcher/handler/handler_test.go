package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/indexertest"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/memory"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/metrics"
)

func newOrchestrator(t *testing.T) *searcher.Orchestrator {
	t.Helper()
	ctx := context.Background()
	catalog := []indexer.Document{
		indexertest.Track("t1", "High Hopes", "en"),
		indexertest.Track("t2", "Hope", "en"),
	}

	words, err := memory.Open(indexer.WordSchema(), "")
	require.NoError(t, err)
	t.Cleanup(func() { words.Close() })
	require.NoError(t, words.Write(ctx, indexertest.Words("High Hopes", "Hope")))

	phrases, err := memory.Open(indexer.PhraseSchema(), "")
	require.NoError(t, err)
	t.Cleanup(func() { phrases.Close() })
	require.NoError(t, phrases.Write(ctx, catalog))

	o, err := searcher.New(searcher.Indices{Words: words, Phrases: phrases}, searcher.DefaultOptions())
	require.NoError(t, err)
	return o
}

type searcherFunc func(ctx context.Context, raw string) (*searcher.Outcome, error)

func (f searcherFunc) Search(ctx context.Context, raw string) (*searcher.Outcome, error) {
	return f(ctx, raw)
}

type recordingTracker struct {
	mu     sync.Mutex
	events []any
}

func (r *recordingTracker) Track(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchResponseShape(t *testing.T) {
	h := New(newOrchestrator(t), Options{LowercaseQuery: true})

	for _, target := range []string{"/search?query=high+hopes", "/api/v1/search?query=High%20Hopes"} {
		rec := serve(h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Result []map[string]string `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Result, 1)
		got := body.Result[0]
		assert.Equal(t, "t1", got["track_id"])
		assert.Equal(t, "high hopes", got["name"])
		assert.Equal(t, "High Hopes", got["name_raw"])
		assert.Equal(t, "en", got["lang"])
		assert.NotEmpty(t, got["score"])
	}
}

func TestSearchEmptyVariants(t *testing.T) {
	o := newOrchestrator(t)

	rec := serve(New(o, Options{}), "/search?query=xyz123")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":[]}`, rec.Body.String())

	rec = serve(New(o, Options{}), "/search?query=")
	assert.JSONEq(t, `{"result":[]}`, rec.Body.String())

	rec = serve(New(o, Options{NullOnEmpty: true}), "/search?query=%20%20")
	assert.JSONEq(t, `{"result":null}`, rec.Body.String())
}

func TestSearchWithoutLowercasing(t *testing.T) {
	rec := serve(New(newOrchestrator(t), Options{}), "/search?query=Hopes")
	assert.JSONEq(t, `{"result":[]}`, rec.Body.String())
}

func TestSearchFaultsFailTheRequest(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"engine closed", apperrors.ErrIndexClosed, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(searcherFunc(func(context.Context, string) (*searcher.Outcome, error) {
				return nil, tt.err
			}), Options{})
			rec := serve(h, "/search?query=hopes")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "result")
		})
	}
}

func TestSearchTracksAndMeasures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	tracker := &recordingTracker{}
	c, err := cache.New(nil, cache.Options{TTL: time.Minute, LocalCapacity: 100})
	require.NoError(t, err)
	defer c.Close()

	h := New(newOrchestrator(t), Options{LowercaseQuery: true},
		WithCache(c), WithTracker(tracker), WithMetrics(m))

	serve(h, "/search?query=high+hopes")
	c.Wait()
	serve(h, "/search?query=high+hopes")

	require.Len(t, tracker.events, 2)
	first := tracker.events[0].(analytics.SearchEvent)
	assert.Equal(t, "high hopes", first.Query)
	assert.Equal(t, "phrase", first.Path)
	assert.Equal(t, 1, first.Returned)
	assert.False(t, first.CacheHit)
	assert.True(t, tracker.events[1].(analytics.SearchEvent).CacheHit)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("phrase")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
}

func TestCacheEndpoints(t *testing.T) {
	rec := serve(New(newOrchestrator(t), Options{}), "/api/v1/cache/stats")
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	c, err := cache.New(nil, cache.Options{})
	require.NoError(t, err)
	defer c.Close()
	h := New(newOrchestrator(t), Options{}, WithCache(c))

	mux := http.NewServeMux()
	h.Register(mux)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"invalidated"}`, rec.Body.String())
}
