package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SourceMetrics is the per-source slice of the last cycle's outcome.
type SourceMetrics struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
	Error   string `json:"error,omitempty"`
}

// Metrics summarizes the engine's most recent cycle for the /metrics endpoint.
type Metrics struct {
	CyclesCompleted int             `json:"cycles_completed"`
	LastCycleID     int64           `json:"last_cycle_id"`
	LastCycleAt     string          `json:"last_cycle_at,omitempty"`
	MatchCount      int             `json:"match_count"`
	SignalCount     int             `json:"signal_count"`
	RejectedCount   int             `json:"rejected_count"`
	Sources         []SourceMetrics `json:"sources,omitempty"`
}

// GetMetricsFunc is a function type for getting cycle metrics
type GetMetricsFunc func() Metrics

var getMetricsFunc GetMetricsFunc

// SetGetMetricsFunc sets the function to get metrics
func SetGetMetricsFunc(fn GetMetricsFunc) {
	getMetricsFunc = fn
}

// HandleMetrics handles /metrics endpoint
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	var metrics Metrics
	if getMetricsFunc != nil {
		metrics = getMetricsFunc()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode metrics: %v", err), http.StatusInternalServerError)
		return
	}
}
