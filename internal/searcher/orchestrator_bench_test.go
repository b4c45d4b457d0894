package searcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/indexertest"
)

var benchWords = []string{
	"love", "me", "tender", "high", "hopes", "night", "city", "lights",
	"blue", "river", "heart", "of", "gold", "dancing", "queen", "дождь",
}

// syntheticCatalog returns n tracks named by three words each.
func syntheticCatalog(n int) []indexer.Document {
	docs := make([]indexer.Document, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s %s",
			benchWords[i%len(benchWords)],
			benchWords[(i/len(benchWords))%len(benchWords)],
			benchWords[(i*7+3)%len(benchWords)],
		)
		docs = append(docs, indexertest.Track(fmt.Sprintf("t%d", i), name, "en"))
	}
	return docs
}

func benchOrchestrator(b *testing.B, backend string, n int) *Orchestrator {
	b.Helper()
	open := backends[backend]
	ctx := context.Background()
	docs := syntheticCatalog(n)

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Fields[indexer.FieldNameRaw])
	}

	words, err := open(indexer.WordSchema())
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { words.Close() })
	if err := words.Write(ctx, indexertest.Words(names...)); err != nil {
		b.Fatal(err)
	}

	phrases, err := open(indexer.PhraseSchema())
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { phrases.Close() })
	if err := phrases.Write(ctx, docs); err != nil {
		b.Fatal(err)
	}

	o, err := New(Indices{Words: words, Phrases: phrases}, DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	return o
}

// BenchmarkSearchKeystrokes replays every prefix of a typed title.
func BenchmarkSearchKeystrokes(b *testing.B) {
	typed := "love me ten"
	prefixes := make([]string, 0, len(typed))
	for i := 1; i <= len(typed); i++ {
		prefixes = append(prefixes, typed[:i])
	}

	for backend := range backends {
		for _, n := range []int{100, 1000} {
			b.Run(fmt.Sprintf("%s/tracks_%d", backend, n), func(b *testing.B) {
				o := benchOrchestrator(b, backend, n)
				ctx := context.Background()
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := o.Search(ctx, prefixes[i%len(prefixes)]); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkSearchEscalation(b *testing.B) {
	for backend := range backends {
		b.Run(backend, func(b *testing.B) {
			o := benchOrchestrator(b, backend, 1000)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := o.Search(ctx, "tendr"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
