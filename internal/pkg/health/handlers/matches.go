package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// GetMatchesFunc is a function type for getting the latest canonical matches
type GetMatchesFunc func() []models.CanonicalMatchRecord

var getMatchesFunc GetMatchesFunc

// SetGetMatchesFunc sets the function to get matches
func SetGetMatchesFunc(fn GetMatchesFunc) {
	getMatchesFunc = fn
}

// HandleMatches handles /matches endpoint.
// Returns the reconciled matches from the most recent aggregation cycle.
func HandleMatches(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var matches []models.CanonicalMatchRecord
	if getMatchesFunc != nil {
		matches = getMatchesFunc()
	}
	if matches == nil {
		matches = []models.CanonicalMatchRecord{}
	}

	duration := time.Since(startTime)
	w.Header().Set("X-Query-Duration", duration.String())
	w.Header().Set("X-Matches-Count", fmt.Sprintf("%d", len(matches)))

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"matches": matches,
		"meta": map[string]interface{}{
			"count":    len(matches),
			"duration": duration.String(),
		},
	}); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode matches: %v", err), http.StatusInternalServerError)
		return
	}
}
