package searcher

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

type instrumented struct {
	indexer.Index
	ok  prometheus.Counter
	err prometheus.Counter
}

// Instrument counts Search calls on idx by outcome under the given index
// label. A nil counter vector returns idx unchanged.
func Instrument(idx indexer.Index, name string, calls *prometheus.CounterVec) indexer.Index {
	if calls == nil {
		return idx
	}
	return &instrumented{
		Index: idx,
		ok:    calls.WithLabelValues(name, "ok"),
		err:   calls.WithLabelValues(name, "error"),
	}
}

func (i *instrumented) Search(ctx context.Context, q indexer.Query, limit int) ([]indexer.Hit, error) {
	hits, err := i.Index.Search(ctx, q, limit)
	if err != nil {
		i.err.Inc()
		return nil, err
	}
	i.ok.Inc()
	return hits, nil
}
