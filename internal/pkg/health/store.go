package health

import (
	"sync"
	"time"

	"github.com/projetoswmfa/football-api/internal/engine"
	"github.com/projetoswmfa/football-api/internal/pkg/health/handlers"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// cycleStore keeps the most recent cycle result in memory for fast API access.
type cycleStore struct {
	mu     sync.RWMutex
	last   *engine.CycleResult
	cycles int
}

var globalCycleStore = &cycleStore{}

func init() {
	handlers.SetGetMatchesFunc(GetMatches)
	handlers.SetGetSignalsFunc(GetSignals)
	handlers.SetGetMetricsFunc(GetMetrics)
}

// RecordCycle stores the latest cycle result, replacing the previous one.
func RecordCycle(result *engine.CycleResult) {
	if result == nil {
		return
	}
	globalCycleStore.mu.Lock()
	defer globalCycleStore.mu.Unlock()
	globalCycleStore.last = result
	globalCycleStore.cycles++
}

// GetMatches returns the canonical matches from the most recent cycle.
func GetMatches() []models.CanonicalMatchRecord {
	globalCycleStore.mu.RLock()
	defer globalCycleStore.mu.RUnlock()
	if globalCycleStore.last == nil {
		return nil
	}
	out := make([]models.CanonicalMatchRecord, len(globalCycleStore.last.CanonicalMatches))
	copy(out, globalCycleStore.last.CanonicalMatches)
	return out
}

// GetSignals returns the ranked signals from the most recent cycle.
func GetSignals() []models.Signal {
	globalCycleStore.mu.RLock()
	defer globalCycleStore.mu.RUnlock()
	if globalCycleStore.last == nil {
		return nil
	}
	out := make([]models.Signal, len(globalCycleStore.last.Signals))
	copy(out, globalCycleStore.last.Signals)
	return out
}

// GetMetrics returns operational counters from the most recent cycle.
func GetMetrics() handlers.Metrics {
	globalCycleStore.mu.RLock()
	defer globalCycleStore.mu.RUnlock()

	m := handlers.Metrics{CyclesCompleted: globalCycleStore.cycles}
	last := globalCycleStore.last
	if last == nil {
		return m
	}

	m.LastCycleID = last.CycleID
	m.LastCycleAt = last.Timestamp.UTC().Format(time.RFC3339)
	m.MatchCount = len(last.CanonicalMatches)
	m.SignalCount = len(last.Signals)
	m.RejectedCount = last.RejectedCount
	for _, st := range last.SourceStatuses {
		m.Sources = append(m.Sources, handlers.SourceMetrics{
			Source:  string(st.Source),
			Records: st.Records,
			Dropped: st.Dropped,
			Error:   st.Error,
		})
	}
	return m
}
