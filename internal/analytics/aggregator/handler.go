package aggregator

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	defaultHistory = 24
	maxHistory     = 500
)

// Latest serves the most recent persisted snapshot, or 404 before the first
// save.
func (s *Store) Latest(w http.ResponseWriter, r *http.Request) {
	stats, err := s.LatestSnapshot(r.Context())
	if err != nil {
		s.logger.Error("loading latest snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot unavailable"})
		return
	}
	if stats == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshots yet"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// History serves up to ?limit= snapshots, newest first.
func (s *Store) History(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	snapshots, err := s.ListSnapshots(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing snapshots", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshots unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snapshots})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistory, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return min(n, maxHistory), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
