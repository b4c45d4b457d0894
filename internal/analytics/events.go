package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/kafka"
)

type EventType string

const (
	EventSearch         EventType = "search"
	EventCatalogIndexed EventType = "catalog_indexed"
)

// SearchEvent describes one answered search request.
type SearchEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Path        string    `json:"path"`
	Suggestions int       `json:"suggestions"`
	Returned    int       `json:"returned"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
}

// CatalogEvent is published once both indices have been rebuilt.
type CatalogEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Source     string         `json:"source"`
	Records    int            `json:"records"`
	Words      int            `json:"words"`
	Languages  map[string]int `json:"languages"`
	DurationMs int64          `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewSearchEvent stamps a search event with a fresh ID and the current time.
func NewSearchEvent() SearchEvent {
	return SearchEvent{ID: uuid.NewString(), Type: EventSearch, Timestamp: time.Now().UTC()}
}

// NewCatalogEvent stamps a catalog event with a fresh ID and the current time.
func NewCatalogEvent(source string) CatalogEvent {
	return CatalogEvent{
		ID:        uuid.NewString(),
		Type:      EventCatalogIndexed,
		Source:    source,
		Languages: make(map[string]int),
		Timestamp: time.Now().UTC(),
	}
}

// Decode reads the type tag of an encoded event and unmarshals it into the
// matching struct, returning *SearchEvent or *CatalogEvent.
func Decode(data []byte) (any, error) {
	envelope, err := kafka.DecodeJSON[struct {
		Type EventType `json:"type"`
	}](data)
	if err != nil {
		return nil, fmt.Errorf("decoding event envelope: %w", err)
	}
	switch envelope.Type {
	case EventSearch:
		e, err := kafka.DecodeJSON[SearchEvent](data)
		if err != nil {
			return nil, fmt.Errorf("decoding search event: %w", err)
		}
		return &e, nil
	case EventCatalogIndexed:
		e, err := kafka.DecodeJSON[CatalogEvent](data)
		if err != nil {
			return nil, fmt.Errorf("decoding catalog event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", envelope.Type)
	}
}
