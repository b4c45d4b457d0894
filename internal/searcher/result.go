package searcher

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

// SearchResult is one matched catalog record. The score is serialized as
// decimal text.
type SearchResult struct {
	Score   float64
	TrackID string
	Name    string
	NameRaw string
	Lang    string
}

type wireResult struct {
	Score   string `json:"score"`
	TrackID string `json:"track_id"`
	Name    string `json:"name"`
	NameRaw string `json:"name_raw,omitempty"`
	Lang    string `json:"lang,omitempty"`
}

func (r SearchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireResult{
		Score:   strconv.FormatFloat(r.Score, 'f', -1, 32),
		TrackID: r.TrackID,
		Name:    r.Name,
		NameRaw: r.NameRaw,
		Lang:    r.Lang,
	})
}

func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	score, err := strconv.ParseFloat(w.Score, 64)
	if err != nil {
		return fmt.Errorf("parsing score %q: %w", w.Score, err)
	}
	*r = SearchResult{Score: score, TrackID: w.TrackID, Name: w.Name, NameRaw: w.NameRaw, Lang: w.Lang}
	return nil
}

func toResults(hits []indexer.Hit) []SearchResult {
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, SearchResult{
			Score:   h.Score,
			TrackID: h.Field(indexer.FieldTrackID),
			Name:    h.Field(indexer.FieldName),
			NameRaw: h.Field(indexer.FieldNameRaw),
			Lang:    h.Field(indexer.FieldLang),
		})
	}
	return out
}
