// Package api exposes the daemon-mode status server.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/optionwatch/optionwatch/internal/checker"
)

// Tracker records pass results for the status endpoints. Safe for
// concurrent use by the poll loop and HTTP handlers.
type Tracker struct {
	mu        sync.RWMutex
	startedAt time.Time
	passes    int
	last      *checker.PassResult
}

// NewTracker creates a tracker stamped with the process start time.
func NewTracker() *Tracker {
	return &Tracker{startedAt: time.Now()}
}

// Record stores the latest pass result.
func (t *Tracker) Record(result *checker.PassResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.passes++
	t.last = result
}

// Last returns the most recent pass result, nil before the first pass.
func (t *Tracker) Last() *checker.PassResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	tracker *Tracker
}

// NewHandler creates a new Handler
func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetStatus handles GET /status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.tracker.mu.RLock()
	defer h.tracker.mu.RUnlock()

	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(h.tracker.startedAt).Seconds()),
		"passes":         h.tracker.passes,
	}
	if h.tracker.last != nil {
		status["last_outcome"] = h.tracker.last.Outcome()
		status["last_pass"] = map[string]interface{}{
			"started_at":              h.tracker.last.StartedAt,
			"duration_seconds":        h.tracker.last.Duration.Seconds(),
			"positions_checked":       h.tracker.last.PositionsChecked,
			"snapshots_fetched":       h.tracker.last.SnapshotsFetched,
			"alerts_sent":             h.tracker.last.AlertsSent,
			"skipped_already_alerted": h.tracker.last.SkippedAlreadyAlerted,
			"errors":                  len(h.tracker.last.Errors),
		}
	}
	respondJSON(w, http.StatusOK, status)
}

// GetAlerts handles GET /alerts
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	last := h.tracker.Last()
	if last == nil {
		respondJSON(w, http.StatusOK, []checker.AlertDetail{})
		return
	}
	alerts := last.Alerts
	if alerts == nil {
		alerts = []checker.AlertDetail{}
	}
	respondJSON(w, http.StatusOK, alerts)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
