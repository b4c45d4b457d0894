// Package handler exposes the search orchestrator over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/tracing"
)

type Searcher interface {
	Search(ctx context.Context, raw string) (*searcher.Outcome, error)
}

// Tracker receives one analytics event per answered search.
type Tracker interface {
	Track(event any)
}

// Options selects the response variant.
type Options struct {
	// LowercaseQuery lowercases the query text before it reaches the
	// orchestrator, which passes tokens to the phrase index verbatim.
	LowercaseQuery bool
	// NullOnEmpty serializes zero matches as {"result": null}.
	NullOnEmpty bool
}

type Handler struct {
	searcher Searcher
	cache    *cache.QueryCache
	tracker  Tracker
	metrics  *metrics.Metrics
	sampler  tracing.Sampler
	opts     Options
	logger   *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Handler)

func WithCache(c *cache.QueryCache) Option {
	return func(h *Handler) { h.cache = c }
}

func WithTracker(t Tracker) Option {
	return func(h *Handler) { h.tracker = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithSampler(s tracing.Sampler) Option {
	return func(h *Handler) { h.sampler = s }
}

func New(s Searcher, opts Options, options ...Option) *Handler {
	h := &Handler{
		searcher: s,
		opts:     opts,
		logger:   slog.Default().With("component", "search-handler"),
	}
	for _, o := range options {
		o(h)
	}
	return h
}

type response struct {
	Result []searcher.SearchResult `json:"result"`
}

// Search answers GET /search?query=<text> with {"result": [...]}.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("query")
	if h.opts.LowercaseQuery {
		query = strings.ToLower(query)
	}

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	span.SetAttr("query", query)

	var (
		out      *searcher.Outcome
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		out, cacheHit, err = h.cache.GetOrCompute(ctx, query, func(ctx context.Context) (*searcher.Outcome, error) {
			return h.searcher.Search(ctx, query)
		})
	} else {
		out, err = h.searcher.Search(ctx, query)
	}
	span.SetAttr("cache_hit", cacheHit)
	h.sampler.Finish(span)

	elapsed := time.Since(start)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		if h.metrics != nil {
			h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		h.writeError(w, err)
		return
	}

	log.Info("search completed",
		"query", query,
		"path", out.Path,
		"suggestions", len(out.Suggestions),
		"returned", len(out.Results),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	h.observe(out, cacheHit, elapsed)

	if h.tracker != nil {
		event := analytics.NewSearchEvent()
		event.Query = query
		event.Path = string(out.Path)
		event.Suggestions = len(out.Suggestions)
		event.Returned = len(out.Results)
		event.LatencyMs = elapsed.Milliseconds()
		event.CacheHit = cacheHit
		event.RequestID = middleware.GetRequestID(ctx)
		h.tracker.Track(event)
	}

	resp := response{Result: out.Results}
	if len(resp.Result) == 0 {
		resp.Result = []searcher.SearchResult{}
		if h.opts.NullOnEmpty {
			resp.Result = nil
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) observe(out *searcher.Outcome, cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	status := "miss"
	if cacheHit {
		status = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(string(out.Path)).Inc()
	h.metrics.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(out.Results)))
	h.metrics.SuggestionsCount.Observe(float64(len(out.Suggestions)))
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Register mounts the search routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /search", h.Search)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := http.StatusText(status)
	if status == http.StatusInternalServerError {
		message = "search failed"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
