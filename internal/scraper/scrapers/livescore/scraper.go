package livescore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/fetch"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"
)

const defaultBaseURL = "https://www.livescore.com/en/football/live/"

// chromeMu serializes all Chrome usage so only one instance runs at a time.
var chromeMu sync.Mutex

func init() {
	scrapers.Register("live_score", func(cfg *config.Config) scrapers.Scraper {
		return NewScraper(&cfg.Sources.LiveScore, cfg.Fetch.Timeout)
	})
}

// Scraper reads the public LiveScore site. The page is JavaScript-rendered,
// so the adapter drives a headless browser and pulls the embedded state blob
// rather than scraping markup.
type Scraper struct {
	baseURL string
	timeout time.Duration
	limits  scrapers.RateLimits
}

func NewScraper(cfg *config.LiveScoreConfig, timeout time.Duration) *Scraper {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		baseURL: baseURL,
		timeout: timeout,
		limits: scrapers.RateLimits{
			RequestsPerMinute: cfg.Limits.RequestsPerMinute,
			Burst:             cfg.Limits.Burst,
		},
	}
}

func (s *Scraper) Name() models.Source {
	return models.SourceLiveScore
}

func (s *Scraper) Limits() scrapers.RateLimits {
	return s.limits
}

func (s *Scraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, true)
}

func (s *Scraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	return s.fetch(ctx, false)
}

func (s *Scraper) fetch(ctx context.Context, liveOnly bool) (scrapers.Result, error) {
	raw, err := s.renderState(ctx)
	if err != nil {
		return scrapers.Result{}, err
	}

	var state nextData
	if err := json.Unmarshal(raw, &state); err != nil {
		return scrapers.Result{}, fetch.Malformed(models.SourceLiveScore, fmt.Errorf("decode page state: %w", err))
	}

	var result scrapers.Result
	for _, stage := range state.Props.PageProps.InitialData.Stages {
		competition := strings.TrimSpace(stage.CompetitionName)
		if stage.CountryName != "" {
			competition = strings.TrimSpace(stage.CountryName + " " + competition)
		}
		for _, ev := range stage.Events {
			record, err := normalize(ev, competition)
			if err != nil {
				result.Dropped++
				slog.Debug("LiveScore event dropped", "event", ev.ID, "error", err)
				continue
			}
			if liveOnly && !record.Status.InPlay() {
				continue
			}
			result.Records = append(result.Records, record)
		}
	}
	return result, nil
}

// renderState loads the page in headless Chrome and evaluates the embedded
// Next.js state. Chrome is shared and slow to start, so access is serialized
// and bounded by the caller's context.
func (s *Scraper) renderState(ctx context.Context) ([]byte, error) {
	chromeMu.Lock()
	defer chromeMu.Unlock()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.timeout)
	defer cancelRun()

	var stateJSON string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(s.baseURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`JSON.stringify(window.__NEXT_DATA__ || null)`, &stateJSON),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fetch.Timeout(models.SourceLiveScore, err)
		}
		return nil, fetch.Unreachable(models.SourceLiveScore, err)
	}
	if stateJSON == "" || stateJSON == "null" {
		return nil, fetch.Malformed(models.SourceLiveScore, fmt.Errorf("page state blob not found"))
	}
	return []byte(stateJSON), nil
}

func normalize(ev eventItem, competition string) (models.MatchRecord, error) {
	if len(ev.HomeTeams) == 0 || len(ev.AwayTeams) == 0 {
		return models.MatchRecord{}, fmt.Errorf("missing team blocks")
	}
	home := strings.TrimSpace(ev.HomeTeams[0].Name)
	away := strings.TrimSpace(ev.AwayTeams[0].Name)
	if home == "" || away == "" {
		return models.MatchRecord{}, fmt.Errorf("missing team names")
	}

	status, minute := mapProgress(ev.Progress)
	record := models.MatchRecord{
		ExternalID:  ev.ID,
		HomeTeam:    home,
		AwayTeam:    away,
		HomeScore:   parseScore(ev.HomeScore),
		AwayScore:   parseScore(ev.AwayScore),
		Status:      status,
		Competition: competition,
		Source:      models.SourceLiveScore,
		ObservedAt:  time.Now().UTC(),
	}
	if minute != nil {
		record.Minute = minute
	}
	return record, nil
}

// mapProgress maps LiveScore progress labels ("45'", "HT", "FT", "NS", ...)
// onto the shared status enum, extracting the minute when present.
func mapProgress(progress string) (models.MatchStatus, *int) {
	p := strings.TrimSpace(progress)
	switch strings.ToUpper(p) {
	case "NS", "":
		return models.StatusScheduled, nil
	case "HT":
		minute := 45
		return models.StatusHalftime, &minute
	case "FT", "AET", "AP":
		minute := 90
		return models.StatusFinished, &minute
	case "POSTP.", "POSTPONED":
		return models.StatusPostponed, nil
	case "CANC.", "CANCELLED", "ABD":
		return models.StatusCancelled, nil
	}

	digits := 0
	for digits < len(p) && p[digits] >= '0' && p[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		if n, err := strconv.Atoi(p[:digits]); err == nil && n >= 0 && n <= 120 {
			return models.StatusLive, &n
		}
	}
	return models.MatchStatus(strings.ToLower(p)), nil
}

func parseScore(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
