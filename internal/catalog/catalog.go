// Package catalog turns source track rows into word and phrase index
// documents and drives the batch rebuild of both indices.
package catalog

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer/tokenizer"
)

// Record is one row read from a catalog source.
type Record struct {
	ID   string
	Name string
	// Line is the 1-based source position, used in error messages.
	Line int
}

// Language is the label assigned to a record at ingestion.
type Language string

const (
	LangEnglish Language = "en"
	LangRussian Language = "ru"
	LangUnknown Language = "unknown"
)

// CatalogRecord is the phrase index entry for one track.
type CatalogRecord struct {
	Identifier     string
	SearchableName string
	DisplayName    string
	Language       Language
}

// Document maps the record onto the phrase index schema.
func (r CatalogRecord) Document() indexer.Document {
	return indexer.Document{
		ID: r.Identifier,
		Fields: map[string]string{
			indexer.FieldTrackID: r.Identifier,
			indexer.FieldName:    r.SearchableName,
			indexer.FieldNameRaw: r.DisplayName,
			indexer.FieldLang:    string(r.Language),
		},
	}
}

// WordEntry is one occurrence of a token in the catalog. Repeats are kept.
type WordEntry struct {
	Token string
}

// Document maps the entry onto the word index schema under id.
func (w WordEntry) Document(id string) indexer.Document {
	return indexer.Document{
		ID: id,
		Fields: map[string]string{
			indexer.FieldToken:      w.Token,
			indexer.FieldTokenNgram: w.Token,
		},
	}
}

// Shaped is a record ready for both indices.
type Shaped struct {
	Record CatalogRecord
	Words  []WordEntry
}

// WordDocuments returns one word index document per entry. IDs derive from
// the record identifier so a rebuild overwrites rather than duplicates.
func (s Shaped) WordDocuments() []indexer.Document {
	docs := make([]indexer.Document, 0, len(s.Words))
	for i, w := range s.Words {
		docs = append(docs, w.Document(fmt.Sprintf("%s#%d", s.Record.Identifier, i)))
	}
	return docs
}

// Shape lowercases the name, tags its language and splits it into word
// entries.
func Shape(rec Record, detector Detector) Shaped {
	searchable := strings.ToLower(rec.Name)
	toks := tokenizer.Words(searchable)
	words := make([]WordEntry, 0, len(toks))
	for _, t := range toks {
		words = append(words, WordEntry{Token: t.Term})
	}
	return Shaped{
		Record: CatalogRecord{
			Identifier:     rec.ID,
			SearchableName: searchable,
			DisplayName:    rec.Name,
			Language:       detector.Detect(rec.Name),
		},
		Words: words,
	}
}
