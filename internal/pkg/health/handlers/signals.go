package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// GetSignalsFunc is a function type for getting the latest ranked signals
type GetSignalsFunc func() []models.Signal

var getSignalsFunc GetSignalsFunc

// SetGetSignalsFunc sets the function to get signals
func SetGetSignalsFunc(fn GetSignalsFunc) {
	getSignalsFunc = fn
}

// HandleSignals handles /signals endpoint.
// Query parameters: limit (max signals to return), min_confidence (filter).
func HandleSignals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var signals []models.Signal
	if getSignalsFunc != nil {
		signals = getSignalsFunc()
	}

	if v := r.URL.Query().Get("min_confidence"); v != "" {
		minConf, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "min_confidence must be an integer", http.StatusBadRequest)
			return
		}
		filtered := signals[:0:0]
		for _, s := range signals {
			if s.Confidence >= minConf {
				filtered = append(filtered, s)
			}
		}
		signals = filtered
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if limit < len(signals) {
			signals = signals[:limit]
		}
	}

	if signals == nil {
		signals = []models.Signal{}
	}

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"signals": signals,
		"meta": map[string]interface{}{
			"count": len(signals),
		},
	}); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode signals: %v", err), http.StatusInternalServerError)
		return
	}
}
