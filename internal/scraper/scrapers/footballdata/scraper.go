package footballdata

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

const defaultBaseURL = "https://api.football-data.org/v4"

func init() {
	scrapers.Register("football_data", func(cfg *config.Config) scrapers.Scraper {
		return NewScraper(&cfg.Sources.FootballData, cfg.Fetch.Timeout)
	})
}

// Scraper reads the Football-Data.org v4 API. The free tier is tightly
// rate-limited (10 req/min), which the declared limits reflect.
type Scraper struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limits  scrapers.RateLimits
}

func NewScraper(cfg *config.FootballDataConfig, timeout time.Duration) *Scraper {
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
	return models.SourceFootballData
}

func (s *Scraper) Limits() scrapers.RateLimits {
	return s.limits
}

// FetchLive returns matches in play.
// GET /v4/matches?status=IN_PLAY,PAUSED
func (s *Scraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, "/matches?status=IN_PLAY,PAUSED")
}

// FetchToday returns today's matches regardless of status.
// GET /v4/matches?dateFrom=...&dateTo=...
func (s *Scraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	today := time.Now().UTC().Format("2006-01-02")
	return s.fetch(ctx, fmt.Sprintf("/matches?dateFrom=%s&dateTo=%s", today, today))
}

func (s *Scraper) fetch(ctx context.Context, path string) (scrapers.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return scrapers.Result{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Auth-Token", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return scrapers.Result{}, fetch.Timeout(models.SourceFootballData, err)
		}
		return scrapers.Result{}, fetch.Unreachable(models.SourceFootballData, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return scrapers.Result{}, fetch.RateLimited(models.SourceFootballData)
	}
	if resp.StatusCode != http.StatusOK {
		return scrapers.Result{}, fetch.Unreachable(models.SourceFootballData, fmt.Errorf("status %d", resp.StatusCode))
	}

	var payload matchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return scrapers.Result{}, fetch.Malformed(models.SourceFootballData, fmt.Errorf("decode matches: %w", err))
	}

	var result scrapers.Result
	for _, m := range payload.Matches {
		record, err := normalize(m)
		if err != nil {
			result.Dropped++
			slog.Debug("Football-Data match dropped", "match", m.ID, "error", err)
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func normalize(m matchItem) (models.MatchRecord, error) {
	if m.HomeTeam.Name == "" || m.AwayTeam.Name == "" {
		return models.MatchRecord{}, fmt.Errorf("missing team names")
	}

	status := mapStatus(m.Status)
	record := models.MatchRecord{
		ExternalID:  fmt.Sprintf("%d", m.ID),
		HomeTeam:    m.HomeTeam.Name,
		AwayTeam:    m.AwayTeam.Name,
		Status:      status,
		Competition: m.Competition.Name,
		Venue:       m.Venue,
		Source:      models.SourceFootballData,
		ObservedAt:  time.Now().UTC(),
	}
	if m.Score.FullTime.Home != nil {
		record.HomeScore = *m.Score.FullTime.Home
	}
	if m.Score.FullTime.Away != nil {
		record.AwayScore = *m.Score.FullTime.Away
	}
	if status.HasMinute() {
		switch {
		case m.Minute != nil && *m.Minute >= 0 && *m.Minute <= 120:
			record.Minute = m.Minute
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

func mapStatus(s string) models.MatchStatus {
	switch s {
	case "SCHEDULED", "TIMED":
		return models.StatusScheduled
	case "IN_PLAY":
		return models.StatusLive
	case "PAUSED":
		return models.StatusHalftime
	case "FINISHED":
		return models.StatusFinished
	case "POSTPONED", "SUSPENDED":
		return models.StatusPostponed
	case "CANCELLED":
		return models.StatusCancelled
	default:
		return models.MatchStatus(strings.ToLower(s))
	}
}
