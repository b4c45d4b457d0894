package memory

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/tokenizer"
)

// Posting records where a term occurs inside one document's field.
type Posting struct {
	DocID     string
	Frequency int
	Positions []int
}

// PostingList is kept sorted by DocID.
type PostingList []Posting

// fieldIndex is the inverted index of a single schema field.
type fieldIndex struct {
	spec     indexer.FieldSpec
	postings map[string]map[string]*Posting
	docLens  map[string]int
	totalLen int64
}

func newFieldIndex(spec indexer.FieldSpec) *fieldIndex {
	return &fieldIndex{
		spec:     spec,
		postings: make(map[string]map[string]*Posting),
		docLens:  make(map[string]int),
	}
}

func analyze(a indexer.Analyzer, text string) []tokenizer.Token {
	switch a {
	case indexer.AnalyzerWords:
		return tokenizer.Words(text)
	case indexer.AnalyzerNgram:
		return tokenizer.NGrams(text, indexer.NgramMin, indexer.NgramMax)
	default:
		return tokenizer.Keyword(text)
	}
}

func (f *fieldIndex) add(docID, text string) {
	tokens := analyze(f.spec.Analyzer, text)
	if len(tokens) == 0 {
		return
	}
	termData := make(map[string]*Posting)
	for _, token := range tokens {
		p, exists := termData[token.Term]
		if !exists {
			p = &Posting{DocID: docID, Positions: make([]int, 0, 2)}
			termData[token.Term] = p
		}
		p.Frequency++
		p.Positions = append(p.Positions, token.Position)
	}
	for term, posting := range termData {
		docs, exists := f.postings[term]
		if !exists {
			docs = make(map[string]*Posting)
			f.postings[term] = docs
		}
		docs[docID] = posting
	}
	f.docLens[docID] = len(tokens)
	f.totalLen += int64(len(tokens))
}

func (f *fieldIndex) remove(docID, text string) {
	for _, token := range analyze(f.spec.Analyzer, text) {
		docs, ok := f.postings[token.Term]
		if !ok {
			continue
		}
		delete(docs, docID)
		if len(docs) == 0 {
			delete(f.postings, token.Term)
		}
	}
	f.totalLen -= int64(f.docLens[docID])
	delete(f.docLens, docID)
}

func (f *fieldIndex) lookup(term string) PostingList {
	docs, exists := f.postings[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for _, posting := range docs {
		result = append(result, *posting)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

func (f *fieldIndex) avgLen() float64 {
	if len(f.docLens) == 0 {
		return 0
	}
	return float64(f.totalLen) / float64(len(f.docLens))
}

// intersectPostings returns the doc IDs present in every list.
func intersectPostings(lists []PostingList) map[string]struct{} {
	if len(lists) == 0 {
		return map[string]struct{}{}
	}
	shortest := 0
	for i, l := range lists {
		if len(l) < len(lists[shortest]) {
			shortest = i
		}
	}
	candidates := make(map[string]struct{}, len(lists[shortest]))
	for _, p := range lists[shortest] {
		candidates[p.DocID] = struct{}{}
	}
	for i, postings := range lists {
		if i == shortest {
			continue
		}
		docSet := make(map[string]struct{}, len(postings))
		for _, p := range postings {
			docSet[p.DocID] = struct{}{}
		}
		for docID := range candidates {
			if _, ok := docSet[docID]; !ok {
				delete(candidates, docID)
			}
		}
	}
	return candidates
}
