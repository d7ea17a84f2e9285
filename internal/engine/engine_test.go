package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/fetch"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/pkg/notify"
	"github.com/projetoswmfa/football-api/internal/pkg/validation"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"
)

type fakeScraper struct {
	name    models.Source
	records []models.MatchRecord
	err     error
}

func (f *fakeScraper) Name() models.Source { return f.name }

func (f *fakeScraper) Limits() scrapers.RateLimits {
	return scrapers.RateLimits{RequestsPerMinute: 600, Burst: 10}
}

func (f *fakeScraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	if f.err != nil {
		return scrapers.Result{}, f.err
	}
	return scrapers.Result{Records: f.records}, nil
}

func (f *fakeScraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	return f.FetchLive(ctx)
}

type fakeAnalyzer struct {
	signals map[string][]models.Signal
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, match models.CanonicalMatchRecord) ([]models.Signal, error) {
	return a.signals[match.MatchKey], nil
}

type fakeStorage struct {
	matches []models.CanonicalMatchRecord
	signals []models.Signal
}

func (s *fakeStorage) StoreCanonicalMatches(ctx context.Context, records []models.CanonicalMatchRecord) error {
	s.matches = append(s.matches, records...)
	return nil
}

func (s *fakeStorage) StoreSignals(ctx context.Context, signals []models.Signal) error {
	s.signals = append(s.signals, signals...)
	return nil
}

func (s *fakeStorage) GetRecentMatches(ctx context.Context, limit int) ([]models.CanonicalMatchRecord, error) {
	return s.matches, nil
}

func (s *fakeStorage) Close() error { return nil }

type fakeNotifier struct {
	signals []models.Signal
	meta    notify.CycleMeta
	calls   int
}

func (n *fakeNotifier) NotifySignals(ctx context.Context, signals []models.Signal, meta notify.CycleMeta) error {
	n.signals = append(n.signals, signals...)
	n.meta = meta
	n.calls++
	return nil
}

func (n *fakeNotifier) Stop() {}

func testValidator() *validation.Validator {
	return validation.NewValidator(&config.ValidationConfig{
		TrustedSources:  []string{"espn", "football_data"},
		BlockedTokens:   []string{"test", "fake"},
		StalenessWindow: 120 * time.Second,
	})
}

func liveRecord(source models.Source, home, away string, homeScore, awayScore, minute int) models.MatchRecord {
	return models.MatchRecord{
		ExternalID: string(source) + "-" + home,
		HomeTeam:   home,
		AwayTeam:   away,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Minute:     intPtr(minute),
		Status:     models.StatusLive,
		Source:     source,
		ObservedAt: time.Now().UTC(),
	}
}

func newTestEngine(t *testing.T, p Params) *Engine {
	t.Helper()
	if p.Validator == nil {
		p.Validator = testValidator()
	}
	if p.CycleDeadline == 0 {
		p.CycleDeadline = 2 * time.Second
	}
	if p.MinuteTolerance == 0 {
		p.MinuteTolerance = 1
	}
	if len(p.AcceptedTypes) == 0 {
		p.AcceptedTypes = allSignalTypes
	}
	eng, err := New(p)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return eng
}

func TestRunCycleFailedSourceDoesNotBlockOthers(t *testing.T) {
	healthy := &fakeScraper{
		name:    models.SourceESPN,
		records: []models.MatchRecord{liveRecord(models.SourceESPN, "Flamengo", "Palmeiras", 2, 1, 67)},
	}
	broken := &fakeScraper{
		name: models.SourceFootballData,
		err:  errors.New("connection refused"),
	}

	eng := newTestEngine(t, Params{
		Fetchers: []*fetch.Fetcher{
			fetch.New(healthy, time.Second),
			fetch.New(broken, time.Second),
		},
		Priority: []models.Source{models.SourceESPN, models.SourceFootballData},
	})

	result, err := eng.RunCycle(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatalf("cycle must not fail on a single broken source: %v", err)
	}
	if len(result.CanonicalMatches) != 1 {
		t.Fatalf("expected 1 canonical match from the healthy source, got %d", len(result.CanonicalMatches))
	}

	var brokenStatus *SourceStatus
	for i := range result.SourceStatuses {
		if result.SourceStatuses[i].Source == models.SourceFootballData {
			brokenStatus = &result.SourceStatuses[i]
		}
	}
	if brokenStatus == nil {
		t.Fatal("broken source missing from statuses")
	}
	if brokenStatus.Error != "unreachable" {
		t.Errorf("expected unreachable error kind, got %q", brokenStatus.Error)
	}

	contributing := result.ContributingSources()
	if len(contributing) != 1 || contributing[0] != models.SourceESPN {
		t.Errorf("contributing sources: got %v", contributing)
	}
}

type stalledScraper struct {
	name models.Source
}

func (s *stalledScraper) Name() models.Source { return s.name }

func (s *stalledScraper) Limits() scrapers.RateLimits {
	return scrapers.RateLimits{RequestsPerMinute: 600, Burst: 10}
}

func (s *stalledScraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	<-ctx.Done()
	return scrapers.Result{}, ctx.Err()
}

func (s *stalledScraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	return s.FetchLive(ctx)
}

func TestRunCycleSlowSourceAccountedAsTimeout(t *testing.T) {
	healthy := &fakeScraper{
		name:    models.SourceESPN,
		records: []models.MatchRecord{liveRecord(models.SourceESPN, "Flamengo", "Palmeiras", 2, 1, 67)},
	}
	stalled := &stalledScraper{name: models.SourceFootballData}

	eng := newTestEngine(t, Params{
		Fetchers: []*fetch.Fetcher{
			fetch.New(healthy, time.Second),
			fetch.New(stalled, 30*time.Millisecond),
		},
		Priority: []models.Source{models.SourceESPN, models.SourceFootballData},
	})

	result, err := eng.RunCycle(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatalf("cycle must not fail on a slow source: %v", err)
	}
	if len(result.CanonicalMatches) != 1 {
		t.Fatalf("expected 1 canonical match from the healthy source, got %d", len(result.CanonicalMatches))
	}

	var stalledStatus *SourceStatus
	for i := range result.SourceStatuses {
		if result.SourceStatuses[i].Source == models.SourceFootballData {
			stalledStatus = &result.SourceStatuses[i]
		}
	}
	if stalledStatus == nil {
		t.Fatal("stalled source missing from statuses")
	}
	if stalledStatus.Error != "timeout" {
		t.Errorf("expected timeout error kind, got %q", stalledStatus.Error)
	}
}

func TestRunCycleEmptyIsSuccess(t *testing.T) {
	quiet := &fakeScraper{name: models.SourceESPN}

	eng := newTestEngine(t, Params{
		Fetchers: []*fetch.Fetcher{fetch.New(quiet, time.Second)},
		Priority: []models.Source{models.SourceESPN},
	})

	result, err := eng.RunCycle(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatalf("empty cycle must succeed: %v", err)
	}
	if len(result.CanonicalMatches) != 0 || len(result.Signals) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.SourceStatuses[0].Error != "" {
		t.Errorf("quiet source must not be an error, got %q", result.SourceStatuses[0].Error)
	}
}

func TestRunCycleRejectsFabricatedRecords(t *testing.T) {
	scraper := &fakeScraper{
		name: models.SourceESPN,
		records: []models.MatchRecord{
			liveRecord(models.SourceESPN, "Flamengo", "Palmeiras", 2, 1, 67),
			liveRecord(models.SourceESPN, "Test Team", "Palmeiras", 1, 0, 30),
		},
	}

	eng := newTestEngine(t, Params{
		Fetchers: []*fetch.Fetcher{fetch.New(scraper, time.Second)},
		Priority: []models.Source{models.SourceESPN},
	})

	result, err := eng.RunCycle(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.CanonicalMatches) != 1 {
		t.Fatalf("expected fabricated record to be dropped, got %d matches", len(result.CanonicalMatches))
	}
	if result.RejectedCount != 1 {
		t.Errorf("expected 1 rejection, got %d", result.RejectedCount)
	}
}

func TestRunCycleFullPipeline(t *testing.T) {
	scraper := &fakeScraper{
		name: models.SourceESPN,
		records: []models.MatchRecord{
			liveRecord(models.SourceESPN, "Flamengo", "Palmeiras", 2, 1, 67),
			liveRecord(models.SourceESPN, "Santos", "Gremio", 0, 0, 12),
		},
	}

	flamengoKey := models.MatchKey("Flamengo", "Palmeiras", time.Now().UTC())
	santosKey := models.MatchKey("Santos", "Gremio", time.Now().UTC())

	analyzer := &fakeAnalyzer{signals: map[string][]models.Signal{
		flamengoKey: {
			{MatchKey: flamengoKey, Type: models.SignalCorners, Confidence: 9},
			{MatchKey: flamengoKey, Type: models.SignalCards, Confidence: 7},
		},
		santosKey: {
			{MatchKey: santosKey, Type: models.SignalBothTeamsScore, Confidence: 8},
		},
	}}
	store := &fakeStorage{}
	notifier := &fakeNotifier{}

	eng := newTestEngine(t, Params{
		Fetchers:          []*fetch.Fetcher{fetch.New(scraper, time.Second)},
		Priority:          []models.Source{models.SourceESPN},
		Analyzer:          analyzer,
		Storage:           store,
		Notifier:          notifier,
		MinConfidence:     7,
		PremiumConfidence: 8,
		TopK:              2,
	})

	result, err := eng.RunCycle(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatal(err)
	}

	// Three candidates above the base threshold; top-K keeps 9 and 8.
	if len(result.Signals) != 2 {
		t.Fatalf("expected 2 ranked signals, got %d: %+v", len(result.Signals), result.Signals)
	}
	if result.Signals[0].Confidence != 9 || result.Signals[1].Confidence != 8 {
		t.Errorf("signals not ranked by confidence: %+v", result.Signals)
	}

	if len(store.matches) != 2 {
		t.Errorf("expected 2 persisted matches, got %d", len(store.matches))
	}
	if len(store.signals) != 2 {
		t.Errorf("expected 2 persisted signals, got %d", len(store.signals))
	}

	if notifier.calls != 1 {
		t.Fatalf("expected one notification batch, got %d", notifier.calls)
	}
	if notifier.meta.CycleID != result.CycleID {
		t.Errorf("notification meta cycle id mismatch: %d vs %d", notifier.meta.CycleID, result.CycleID)
	}
	if len(notifier.meta.SourcesContributing) != 1 {
		t.Errorf("expected one contributing source in meta, got %v", notifier.meta.SourcesContributing)
	}
}

func TestRunCycleBroadcastHoldsPremiumThreshold(t *testing.T) {
	scraper := &fakeScraper{
		name:    models.SourceESPN,
		records: []models.MatchRecord{liveRecord(models.SourceESPN, "Flamengo", "Palmeiras", 2, 1, 67)},
	}

	key := models.MatchKey("Flamengo", "Palmeiras", time.Now().UTC())
	analyzer := &fakeAnalyzer{signals: map[string][]models.Signal{
		key: {
			{MatchKey: key, Type: models.SignalCorners, Confidence: 8},
			{MatchKey: key, Type: models.SignalCards, Confidence: 7},
		},
	}}
	notifier := &fakeNotifier{}

	eng := newTestEngine(t, Params{
		Fetchers:          []*fetch.Fetcher{fetch.New(scraper, time.Second)},
		Priority:          []models.Source{models.SourceESPN},
		Analyzer:          analyzer,
		Notifier:          notifier,
		MinConfidence:     7,
		PremiumConfidence: 8,
		TopK:              3,
	})

	result, err := eng.RunCycle(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatal(err)
	}

	// Base path keeps both; only the confidence-8 signal is broadcast.
	if len(result.Signals) != 2 {
		t.Fatalf("expected 2 signals in the cycle result, got %d", len(result.Signals))
	}
	if len(notifier.signals) != 1 || notifier.signals[0].Confidence != 8 {
		t.Errorf("broadcast should hold the premium threshold, got %+v", notifier.signals)
	}
}

func TestNewRequiresSources(t *testing.T) {
	if _, err := New(Params{Validator: testValidator()}); err == nil {
		t.Fatal("expected error for engine with no sources")
	}
}
