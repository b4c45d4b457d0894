// Package indexer defines the lexical index contract shared by the search
// core and the catalog builder: the query variant, the document and hit
// shapes, and the Index/Writer interfaces that the bleve and in-memory
// backends implement.
package indexer

import (
	"context"
)

// Hit is one scored document returned by Index.Search.
type Hit struct {
	Score  float64
	DocID  string
	Fields map[string]string
}

// Field returns the stored value of name, or "" when the field is absent.
func (h Hit) Field(name string) string {
	return h.Fields[name]
}

// Document is a unit of ingestion. Field values are raw text; each backend
// analyzes them according to the index Schema.
type Document struct {
	ID     string
	Fields map[string]string
}

// Index evaluates queries. Implementations must be safe for concurrent
// readers and must return hits ordered by descending score, at most limit.
type Index interface {
	Search(ctx context.Context, q Query, limit int) ([]Hit, error)
	DocCount() (uint64, error)
	Close() error
}

// Writer adds documents. A batch is visible to readers only once Write
// returns.
type Writer interface {
	Write(ctx context.Context, docs []Document) error
}

// Store is an index that can also be written, as used during ingestion.
type Store interface {
	Index
	Writer
}
