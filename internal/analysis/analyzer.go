package analysis

import (
	"context"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Analyzer is the AI collaborator contract: one validated canonical match in,
// zero or more confidence-scored signals out. The engine never retries an
// analysis failure; "no signal returned" means "no opportunity this cycle".
type Analyzer interface {
	Analyze(ctx context.Context, match models.CanonicalMatchRecord) ([]models.Signal, error)
}
