package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

const maxTopQueries = 100

// Handler serves the aggregated search statistics over HTTP.
type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// Stats serves the running statistics. The optional top parameter sets how
// many ranked and zero-result queries are listed, between 1 and 100.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r.URL.Query().Get("top"))
	if err != nil {
		h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, h.aggregator.StatsTop(top))
}

func parseTop(raw string) (int, error) {
	if raw == "" {
		return DefaultTopQueries, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxTopQueries {
		return 0, fmt.Errorf("%w: top must be an integer between 1 and %d", apperrors.ErrInvalidInput, maxTopQueries)
	}
	return n, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
