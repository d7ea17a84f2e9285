package scrapers

import (
	"context"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// RateLimits declares a provider's request budget.
type RateLimits struct {
	RequestsPerMinute int
	Burst             int
}

// Result is one successful provider response. Malformed individual records
// inside an otherwise valid response are dropped and counted here, never
// fatal to the call.
type Result struct {
	Records []models.MatchRecord
	Dropped int
}

// Scraper is the capability interface every provider adapter implements.
// Adapters normalize provider-specific payloads into MatchRecords; they do
// no rate limiting, retrying or validation themselves.
type Scraper interface {
	// Name returns the provider identity used in records and accounting.
	Name() models.Source

	// Limits returns the provider's declared request budget.
	Limits() RateLimits

	// FetchLive returns matches currently in play.
	FetchLive(ctx context.Context) (Result, error)

	// FetchToday returns all of today's matches regardless of status.
	FetchToday(ctx context.Context) (Result, error)
}
