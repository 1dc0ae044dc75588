package handlers

import (
	"net/http"

	"media-broker/internal/broker"
	"media-broker/internal/logging"
)

// StatsResponse combines broker admission state with cache totals.
type StatsResponse struct {
	Broker            broker.Stats `json:"broker"`
	CachedConversions int64        `json:"cachedConversions"`
}

// GetStats returns broker queue statistics and cache totals.
// GET /api/stats
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.db.Count(r.Context())
	if err != nil {
		logging.Error("Failed to count cached conversions: %v", err)
		writeJSONError(w, "failed to read cache statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, StatsResponse{
		Broker:            h.broker.Stats(),
		CachedConversions: count,
	})
}
