package indexer

// Word index fields.
const (
	FieldToken      = "token"
	FieldTokenNgram = "token_ngram"
)

// Phrase index fields.
const (
	FieldTrackID = "track_id"
	FieldName    = "name"
	FieldNameRaw = "name_raw"
	FieldLang    = "lang"
)

// Analyzer names the text analysis chain applied to a field at ingestion
// time and to parsed queries against it.
type Analyzer int

const (
	// AnalyzerKeyword indexes the whole value as a single term.
	AnalyzerKeyword Analyzer = iota
	// AnalyzerWords splits on non letter/digit boundaries and lowercases.
	AnalyzerWords
	// AnalyzerNgram is AnalyzerWords followed by 1..5 character n-grams.
	AnalyzerNgram
)

// N-gram bounds used by AnalyzerNgram.
const (
	NgramMin = 1
	NgramMax = 5
)

func (a Analyzer) String() string {
	switch a {
	case AnalyzerKeyword:
		return "keyword"
	case AnalyzerWords:
		return "words"
	case AnalyzerNgram:
		return "ngram"
	default:
		return "unknown"
	}
}

// FieldSpec describes how one field is indexed and stored.
type FieldSpec struct {
	Name     string
	Analyzer Analyzer
	Indexed  bool
	Stored   bool
	// Positions keeps term positions so phrase queries can run on the field.
	Positions bool
}

// Schema is the ordered list of fields of one index.
type Schema struct {
	Name   string
	Fields []FieldSpec
}

// Field looks up a field definition by name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// WordSchema is the layout of the word index: one document per token
// occurrence in the catalog.
func WordSchema() Schema {
	return Schema{
		Name: "words",
		Fields: []FieldSpec{
			{Name: FieldToken, Analyzer: AnalyzerKeyword, Indexed: true, Stored: true},
			{Name: FieldTokenNgram, Analyzer: AnalyzerNgram, Indexed: true},
		},
	}
}

// PhraseSchema is the layout of the phrase index: one document per catalog
// record.
func PhraseSchema() Schema {
	return Schema{
		Name: "phrases",
		Fields: []FieldSpec{
			{Name: FieldTrackID, Analyzer: AnalyzerKeyword, Indexed: true, Stored: true},
			{Name: FieldName, Analyzer: AnalyzerWords, Indexed: true, Stored: true, Positions: true},
			{Name: FieldNameRaw, Analyzer: AnalyzerKeyword, Stored: true},
			{Name: FieldLang, Analyzer: AnalyzerKeyword, Indexed: true, Stored: true},
		},
	}
}
