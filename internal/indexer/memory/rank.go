package memory

import (
	"container/heap"
	"math"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

const (
	k1 = 1.2
	b  = 0.75
)

// bm25 scores one term occurrence list inside a field.
func bm25(f *fieldIndex, totalDocs int, docFreq int, p Posting) float64 {
	return idf(totalDocs, docFreq) * tfNorm(float64(p.Frequency), float64(f.docLens[p.DocID]), f.avgLen())
}

func idf(totalDocs, docFreq int) float64 {
	n := float64(totalDocs)
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

func tfNorm(termFreq, docLength, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	return (termFreq * (k1 + 1)) / (termFreq + k1*(1-b+b*lengthRatio))
}

type scored struct {
	docID string
	score float64
}

// topK keeps the limit best documents, highest score first and DocID
// ascending on ties.
func topK(scores map[string]float64, limit int) []scored {
	h := &scoredHeap{}
	for docID, score := range scores {
		heap.Push(h, scored{docID: docID, score: score})
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	result := make([]scored, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(scored)
	}
	return result
}

// scoredHeap is a min-heap: the root is the worst kept document.
type scoredHeap []scored

func (h scoredHeap) Len() int { return len(h) }

func (h scoredHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].docID > h[j].docID
}

func (h scoredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredHeap) Push(x any) {
	*h = append(*h, x.(scored))
}

func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func toHits(ranked []scored, docs map[string]indexer.Document, schema indexer.Schema) []indexer.Hit {
	hits := make([]indexer.Hit, 0, len(ranked))
	for _, r := range ranked {
		doc := docs[r.docID]
		fields := make(map[string]string)
		for _, spec := range schema.Fields {
			if !spec.Stored {
				continue
			}
			if v, ok := doc.Fields[spec.Name]; ok {
				fields[spec.Name] = v
			}
		}
		hits = append(hits, indexer.Hit{Score: r.score, DocID: r.docID, Fields: fields})
	}
	return hits
}
