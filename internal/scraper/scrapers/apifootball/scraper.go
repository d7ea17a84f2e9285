package apifootball

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/fetch"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"
)

const defaultBaseURL = "https://v3.football.api-sports.io"

func init() {
	scrapers.Register("api_football", func(cfg *config.Config) scrapers.Scraper {
		return NewScraper(&cfg.Sources.APIFootball, cfg.Fetch.Timeout)
	})
}

// Scraper reads the API-Football v3 fixtures endpoint. Requires an API key;
// without one every call fails as unreachable and the source simply never
// contributes.
type Scraper struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limits  scrapers.RateLimits
}

func NewScraper(cfg *config.APIFootballConfig, timeout time.Duration) *Scraper {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limits: scrapers.RateLimits{
			RequestsPerMinute: cfg.Limits.RequestsPerMinute,
			Burst:             cfg.Limits.Burst,
		},
	}
}

func (s *Scraper) Name() models.Source {
	return models.SourceAPIFootball
}

func (s *Scraper) Limits() scrapers.RateLimits {
	return s.limits
}

// FetchLive returns all fixtures currently in play.
// GET /fixtures?live=all
func (s *Scraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, "/fixtures?live=all")
}

// FetchToday returns today's fixtures.
// GET /fixtures?date=YYYY-MM-DD
func (s *Scraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, "/fixtures?date="+time.Now().UTC().Format("2006-01-02"))
}

func (s *Scraper) fetch(ctx context.Context, path string) (scrapers.Result, error) {
	if s.apiKey == "" {
		return scrapers.Result{}, fetch.Unreachable(models.SourceAPIFootball, fmt.Errorf("no API key configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return scrapers.Result{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apisports-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return scrapers.Result{}, fetch.Timeout(models.SourceAPIFootball, err)
		}
		return scrapers.Result{}, fetch.Unreachable(models.SourceAPIFootball, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return scrapers.Result{}, fetch.RateLimited(models.SourceAPIFootball)
	}
	if resp.StatusCode != http.StatusOK {
		return scrapers.Result{}, fetch.Unreachable(models.SourceAPIFootball, fmt.Errorf("status %d", resp.StatusCode))
	}

	var payload fixturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return scrapers.Result{}, fetch.Malformed(models.SourceAPIFootball, fmt.Errorf("decode fixtures: %w", err))
	}

	var result scrapers.Result
	for _, fx := range payload.Response {
		record, err := normalize(fx)
		if err != nil {
			result.Dropped++
			slog.Debug("API-Football fixture dropped", "fixture", fx.Fixture.ID, "error", err)
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func normalize(fx fixtureItem) (models.MatchRecord, error) {
	if fx.Teams.Home.Name == "" || fx.Teams.Away.Name == "" {
		return models.MatchRecord{}, fmt.Errorf("missing team names")
	}

	status := mapStatus(fx.Fixture.Status.Short)
	record := models.MatchRecord{
		ExternalID:  fmt.Sprintf("%d", fx.Fixture.ID),
		HomeTeam:    fx.Teams.Home.Name,
		AwayTeam:    fx.Teams.Away.Name,
		Status:      status,
		Competition: fx.League.Name,
		Venue:       fx.Fixture.Venue.Name,
		Source:      models.SourceAPIFootball,
		ObservedAt:  time.Now().UTC(),
	}
	if fx.Goals.Home != nil {
		record.HomeScore = *fx.Goals.Home
	}
	if fx.Goals.Away != nil {
		record.AwayScore = *fx.Goals.Away
	}
	if status.HasMinute() {
		switch {
		case fx.Fixture.Status.Elapsed != nil && *fx.Fixture.Status.Elapsed >= 0 && *fx.Fixture.Status.Elapsed <= 120:
			record.Minute = fx.Fixture.Status.Elapsed
		case status == models.StatusHalftime:
			minute := 45
			record.Minute = &minute
		case status == models.StatusFinished:
			minute := 90
			record.Minute = &minute
		}
	}

	return record, nil
}

// mapStatus maps API-Football short codes onto the shared status enum.
func mapStatus(short string) models.MatchStatus {
	switch short {
	case "NS", "TBD":
		return models.StatusScheduled
	case "1H", "2H", "ET", "P", "LIVE":
		return models.StatusLive
	case "HT", "BT":
		return models.StatusHalftime
	case "FT", "AET", "PEN":
		return models.StatusFinished
	case "PST", "SUSP", "INT":
		return models.StatusPostponed
	case "CANC", "ABD", "AWD", "WO":
		return models.StatusCancelled
	default:
		return models.MatchStatus(strings.ToLower(short))
	}
}
