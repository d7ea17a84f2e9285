package notify

import (
	"context"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// CycleMeta accompanies every notification for observability.
type CycleMeta struct {
	CycleID             int64           `json:"cycle_id"`
	Timestamp           time.Time       `json:"timestamp"`
	SourcesContributing []models.Source `json:"sources_contributing"`
	RejectedCount       int             `json:"rejected_count"`
}

// Notifier is the notification collaborator contract. It receives the final
// ranked signal list; formatting and delivery are its own business.
type Notifier interface {
	NotifySignals(ctx context.Context, signals []models.Signal, meta CycleMeta) error

	// Stop flushes pending notifications and releases resources.
	Stop()
}
