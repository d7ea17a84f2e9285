package espn

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"
)

func init() {
	scrapers.Register("espn", func(cfg *config.Config) scrapers.Scraper {
		return NewScraper(&cfg.Sources.ESPN, cfg.Fetch.Timeout)
	})
}

// Scraper reads ESPN's public scoreboard API, one request per configured
// league.
type Scraper struct {
	client  *Client
	leagues []string
	limits  scrapers.RateLimits
}

func NewScraper(cfg *config.ESPNConfig, timeout time.Duration) *Scraper {
	leagues := cfg.Leagues
	if len(leagues) == 0 {
		leagues = []string{"eng.1", "esp.1", "ita.1", "ger.1", "fra.1", "bra.1"}
	}
	return &Scraper{
		client:  NewClient(cfg.BaseURL, timeout),
		leagues: leagues,
		limits: scrapers.RateLimits{
			RequestsPerMinute: cfg.Limits.RequestsPerMinute,
			Burst:             cfg.Limits.Burst,
		},
	}
}

func (s *Scraper) Name() models.Source {
	return models.SourceESPN
}

func (s *Scraper) Limits() scrapers.RateLimits {
	return s.limits
}

func (s *Scraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, "", true)
}

func (s *Scraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, time.Now().UTC().Format("20060102"), false)
}

// fetch walks the configured leagues. A league that fails is skipped; the
// call only fails when every league did.
func (s *Scraper) fetch(ctx context.Context, dates string, liveOnly bool) (scrapers.Result, error) {
	var result scrapers.Result
	var lastErr error
	succeeded := 0

	for _, league := range s.leagues {
		board, err := s.client.GetScoreboard(ctx, league, dates)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			slog.Debug("ESPN league skipped", "league", league, "error", err)
			continue
		}
		succeeded++

		competition := league
		if len(board.Leagues) > 0 && board.Leagues[0].Name != "" {
			competition = board.Leagues[0].Name
		}

		for _, ev := range board.Events {
			status := mapStatus(ev.Status.Type.Name)
			if liveOnly && !status.InPlay() {
				continue
			}
			record, err := s.normalize(ev, competition, status)
			if err != nil {
				result.Dropped++
				slog.Debug("ESPN event dropped", "league", league, "event", ev.ID, "error", err)
				continue
			}
			result.Records = append(result.Records, record)
		}
	}

	if succeeded == 0 && lastErr != nil {
		return scrapers.Result{}, lastErr
	}
	return result, nil
}

func (s *Scraper) normalize(ev event, competition string, status models.MatchStatus) (models.MatchRecord, error) {
	if len(ev.Competitions) == 0 {
		return models.MatchRecord{}, fmt.Errorf("event has no competition block")
	}
	comp := ev.Competitions[0]

	var home, away competitor
	for _, c := range comp.Competitors {
		switch c.HomeAway {
		case "home":
			home = c
		case "away":
			away = c
		}
	}
	if home.Team.DisplayName == "" || away.Team.DisplayName == "" {
		return models.MatchRecord{}, fmt.Errorf("missing competitor teams")
	}

	homeScore, err := parseScore(home.Score)
	if err != nil {
		return models.MatchRecord{}, fmt.Errorf("home score: %w", err)
	}
	awayScore, err := parseScore(away.Score)
	if err != nil {
		return models.MatchRecord{}, fmt.Errorf("away score: %w", err)
	}

	record := models.MatchRecord{
		ExternalID:  ev.ID,
		HomeTeam:    home.Team.DisplayName,
		AwayTeam:    away.Team.DisplayName,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		Status:      status,
		Competition: competition,
		Source:      models.SourceESPN,
		ObservedAt:  time.Now().UTC(),
	}
	if comp.Venue != nil {
		record.Venue = comp.Venue.FullName
	}
	if status.HasMinute() {
		if m, ok := parseClock(ev.Status.DisplayClock); ok {
			record.Minute = &m
		} else if status == models.StatusHalftime {
			m := 45
			record.Minute = &m
		}
	}

	return record, nil
}

func mapStatus(name string) models.MatchStatus {
	switch name {
	case "STATUS_SCHEDULED":
		return models.StatusScheduled
	case "STATUS_IN_PROGRESS", "STATUS_FIRST_HALF", "STATUS_SECOND_HALF":
		return models.StatusLive
	case "STATUS_HALFTIME":
		return models.StatusHalftime
	case "STATUS_FULL_TIME", "STATUS_FINAL":
		return models.StatusFinished
	case "STATUS_POSTPONED":
		return models.StatusPostponed
	case "STATUS_CANCELED":
		return models.StatusCancelled
	default:
		return models.MatchStatus(strings.ToLower(name))
	}
}

func parseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return n, nil
}

// parseClock extracts the minute from ESPN display clocks like "67'" or
// "45'+2".
func parseClock(clock string) (int, bool) {
	clock = strings.TrimSpace(clock)
	digits := 0
	for digits < len(clock) && clock[digits] >= '0' && clock[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(clock[:digits])
	if err != nil || n < 0 || n > 120 {
		return 0, false
	}
	return n, true
}
