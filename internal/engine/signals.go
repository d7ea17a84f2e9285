package engine

import (
	"sort"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// RankSignals filters, orders and truncates the cycle's signal candidates.
// Steps, in order: type filter, confidence threshold, stable sort descending
// by confidence (ties keep insertion order), truncate to topK.
// Pure function, no I/O.
func RankSignals(signals []models.Signal, acceptedTypes []models.SignalType, minConfidence, topK int) []models.Signal {
	accepted := make(map[models.SignalType]bool, len(acceptedTypes))
	for _, t := range acceptedTypes {
		accepted[t] = true
	}

	filtered := make([]models.Signal, 0, len(signals))
	for _, s := range signals {
		if !accepted[s.Type] {
			continue
		}
		if s.Confidence < minConfidence {
			continue
		}
		filtered = append(filtered, s)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if topK > 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered
}
