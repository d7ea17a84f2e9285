package storage

import (
	"context"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Storage is the persistence collaborator contract. The engine hands records
// over by value once per cycle; upsert semantics belong to the implementation.
type Storage interface {
	// StoreCanonicalMatches upserts the cycle's canonical records.
	StoreCanonicalMatches(ctx context.Context, records []models.CanonicalMatchRecord) error

	// StoreSignals appends the cycle's ranked signals.
	StoreSignals(ctx context.Context, signals []models.Signal) error

	// GetRecentMatches returns the most recently updated canonical records.
	GetRecentMatches(ctx context.Context, limit int) ([]models.CanonicalMatchRecord, error)

	// Close closes the underlying connection.
	Close() error
}
