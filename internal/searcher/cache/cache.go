// Package cache memoizes search outcomes keyed on the exact raw query text.
// A bounded in-process cache sits in front of an optional shared Redis tier;
// concurrent misses for the same text are collapsed into one computation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/logger"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the shared tier. *pkgredis.Client satisfies it; a miss must be
// reported with an error for which pkgredis.IsNilError is true.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Options configures a QueryCache.
type Options struct {
	TTL           time.Duration
	LocalCapacity int64
	Breaker       *resilience.CircuitBreaker
	// ComputeTimeout bounds a shared computation, which runs detached from
	// the cancellation of whichever caller started it.
	ComputeTimeout time.Duration
}

type entry struct {
	Query   string            `json:"query"`
	Outcome *searcher.Outcome `json:"outcome"`
}

type QueryCache struct {
	local          *ristretto.Cache[uint64, *entry]
	store          Store
	ttl            time.Duration
	computeTimeout time.Duration
	breaker        *resilience.CircuitBreaker
	group          singleflight.Group
	enc            *zstd.Encoder
	dec            *zstd.Decoder
	logger         *slog.Logger
	hits           atomic.Int64
	misses         atomic.Int64
}

// New builds a QueryCache. store may be nil, in which case only the local
// tier is used.
func New(store Store, opts Options) (*QueryCache, error) {
	if opts.LocalCapacity <= 0 {
		opts.LocalCapacity = 10_000
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.ComputeTimeout <= 0 {
		opts.ComputeTimeout = 10 * time.Second
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{})
	}
	local, err := ristretto.NewCache(&ristretto.Config[uint64, *entry]{
		NumCounters: opts.LocalCapacity * 10,
		MaxCost:     opts.LocalCapacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating local cache: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &QueryCache{
		local:          local,
		store:          store,
		ttl:            opts.TTL,
		computeTimeout: opts.ComputeTimeout,
		breaker:        opts.Breaker,
		enc:            enc,
		dec:            dec,
		logger:         logger.WithComponent("query-cache"),
	}, nil
}

// Get looks raw up in the local tier, then the shared tier. Shared tier
// failures are logged and reported as a miss.
func (c *QueryCache) Get(ctx context.Context, raw string) (*searcher.Outcome, bool) {
	sum := xxhash.Sum64String(raw)
	if e, ok := c.local.Get(sum); ok && e.Query == raw {
		c.hits.Add(1)
		return e.Outcome, true
	}
	if e, ok := c.getShared(ctx, sum, raw); ok {
		c.local.SetWithTTL(sum, e, 1, c.ttl)
		c.hits.Add(1)
		return e.Outcome, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores the outcome for raw in both tiers.
func (c *QueryCache) Set(ctx context.Context, raw string, out *searcher.Outcome) {
	sum := xxhash.Sum64String(raw)
	e := &entry{Query: raw, Outcome: out}
	c.local.SetWithTTL(sum, e, 1, c.ttl)
	c.setShared(ctx, sum, e)
}

// GetOrCompute returns the cached outcome for raw or runs compute once for
// all concurrent callers asking for the same text. compute receives a context
// that keeps the first caller's values but not its cancellation, bounded by
// ComputeTimeout; each caller stops waiting when its own ctx ends. Errors from
// compute are not cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	raw string,
	compute func(ctx context.Context) (*searcher.Outcome, error),
) (*searcher.Outcome, bool, error) {
	if out, ok := c.Get(ctx, raw); ok {
		return out, true, nil
	}
	ch := c.group.DoChan(raw, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.computeTimeout)
		defer cancel()
		out, err := compute(shared)
		if err != nil {
			return nil, err
		}
		c.Set(shared, raw, out)
		return out, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*searcher.Outcome), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate drops every cached outcome, used after the indices are rebuilt.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	c.local.Clear()
	if c.store == nil {
		return nil
	}
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Wait blocks until pending local writes are applied.
func (c *QueryCache) Wait() {
	c.local.Wait()
}

func (c *QueryCache) Close() {
	c.local.Close()
	c.enc.Close()
	c.dec.Close()
}

func (c *QueryCache) getShared(ctx context.Context, sum uint64, raw string) (*entry, bool) {
	if c.store == nil {
		return nil, false
	}
	key := buildKey(sum)
	var data []byte
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			data = nil
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	plain, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		c.logger.Error("cache decompress failed", "key", key, "error", err)
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(plain, &e); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	if e.Query != raw || e.Outcome == nil {
		return nil, false
	}
	return &e, true
}

func (c *QueryCache) setShared(ctx context.Context, sum uint64, e *entry) {
	if c.store == nil {
		return
	}
	key := buildKey(sum)
	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	packed := c.enc.EncodeAll(data, nil)
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, packed, c.ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func buildKey(sum uint64) string {
	return keyPrefix + strconv.FormatUint(sum, 16)
}
