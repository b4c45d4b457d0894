package bleve

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

const (
	wordTokenizer  = "ts_words"
	ngramFilter    = "ts_ngram"
	wordsAnalyzer  = "ts_words"
	ngramAnalyzer  = "ts_ngram"
	wordRunPattern = `[\p{L}\p{N}]+`
)

// buildMapping translates a schema into a static bleve mapping. Word
// boundaries match tokenizer.IsWordRune so both backends split names the
// same way.
func buildMapping(schema indexer.Schema) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	err := im.AddCustomTokenizer(wordTokenizer, map[string]interface{}{
		"type":   regexp.Name,
		"regexp": wordRunPattern,
	})
	if err != nil {
		return nil, fmt.Errorf("adding word tokenizer: %w", err)
	}
	err = im.AddCustomTokenFilter(ngramFilter, map[string]interface{}{
		"type": ngram.Name,
		"min":  float64(indexer.NgramMin),
		"max":  float64(indexer.NgramMax),
	})
	if err != nil {
		return nil, fmt.Errorf("adding ngram filter: %w", err)
	}
	err = im.AddCustomAnalyzer(wordsAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     wordTokenizer,
		"token_filters": []interface{}{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("adding words analyzer: %w", err)
	}
	err = im.AddCustomAnalyzer(ngramAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     wordTokenizer,
		"token_filters": []interface{}{lowercase.Name, ngramFilter},
	})
	if err != nil {
		return nil, fmt.Errorf("adding ngram analyzer: %w", err)
	}

	dm := bleve.NewDocumentStaticMapping()
	for _, field := range schema.Fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzerName(field.Analyzer)
		fm.Index = field.Indexed
		fm.Store = field.Stored
		fm.IncludeTermVectors = field.Positions
		fm.IncludeInAll = false
		fm.DocValues = false
		dm.AddFieldMappingsAt(field.Name, fm)
	}
	im.DefaultMapping = dm
	im.DefaultAnalyzer = keyword.Name
	return im, nil
}

func analyzerName(a indexer.Analyzer) string {
	switch a {
	case indexer.AnalyzerWords:
		return wordsAnalyzer
	case indexer.AnalyzerNgram:
		return ngramAnalyzer
	default:
		return keyword.Name
	}
}
