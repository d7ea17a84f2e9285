package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/projetoswmfa/football-api/internal/analysis"
	"github.com/projetoswmfa/football-api/internal/pkg/fetch"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/pkg/notify"
	"github.com/projetoswmfa/football-api/internal/pkg/storage"
	"github.com/projetoswmfa/football-api/internal/pkg/validation"
)

// SourceStatus is the per-source outcome of one fetch cycle.
type SourceStatus struct {
	Source  models.Source `json:"source"`
	Records int           `json:"records"`
	Dropped int           `json:"dropped,omitempty"`
	Error   string        `json:"error,omitempty"` // error kind label, empty on success
}

// CycleResult is everything one cycle produced. A cycle with no canonical
// records is a valid empty result, not a failure: "no live matches right now"
// and "all sources down" look identical without the per-source statuses.
type CycleResult struct {
	CycleID          int64                         `json:"cycle_id"`
	Query            models.Query                  `json:"query"`
	Timestamp        time.Time                     `json:"timestamp"`
	CanonicalMatches []models.CanonicalMatchRecord `json:"canonical_matches"`
	Signals          []models.Signal               `json:"signals"`
	SourceStatuses   []SourceStatus                `json:"source_statuses"`
	RejectedCount    int                           `json:"rejected_count"`
}

// ContributingSources lists the sources that delivered at least one record.
func (r *CycleResult) ContributingSources() []models.Source {
	out := make([]models.Source, 0, len(r.SourceStatuses))
	for _, st := range r.SourceStatuses {
		if st.Error == "" && st.Records > 0 {
			out = append(out, st.Source)
		}
	}
	return out
}

// Params wires an Engine. Analyzer, Storage and Notifier are optional
// collaborators; the engine runs without them.
type Params struct {
	Fetchers          []*fetch.Fetcher
	Priority          []models.Source
	Validator         *validation.Validator
	Analyzer          analysis.Analyzer
	Storage           storage.Storage
	Notifier          notify.Notifier
	CycleDeadline     time.Duration
	MinuteTolerance   int
	AcceptedTypes     []models.SignalType
	MinConfidence     int // base threshold for the cycle result
	PremiumConfidence int // threshold for the automated broadcast path
	TopK              int
}

// Engine drives fetch cycles: fan-out over providers, validation, merge,
// analysis, ranking and hand-off to collaborators. Stateless across cycles
// except for the per-source limiter/breaker state inside the fetchers.
type Engine struct {
	fetchers          []*fetch.Fetcher
	priority          []models.Source
	validator         *validation.Validator
	analyzer          analysis.Analyzer
	storage           storage.Storage
	notifier          notify.Notifier
	cycleDeadline     time.Duration
	minuteTolerance   int
	acceptedTypes     []models.SignalType
	minConfidence     int
	premiumConfidence int
	topK              int

	cycleID atomic.Int64
}

// New builds an Engine. A configuration with no sources is the one fatal
// condition; everything else degrades per cycle.
func New(p Params) (*Engine, error) {
	if len(p.Fetchers) == 0 {
		return nil, fmt.Errorf("engine: no sources configured")
	}
	if p.Validator == nil {
		return nil, fmt.Errorf("engine: validator is required")
	}
	if p.CycleDeadline <= 0 {
		p.CycleDeadline = 5 * time.Second
	}
	if p.TopK <= 0 {
		p.TopK = 2
	}
	if p.MinConfidence <= 0 {
		p.MinConfidence = 7
	}
	if p.PremiumConfidence <= 0 {
		p.PremiumConfidence = 8
	}

	return &Engine{
		fetchers:          p.Fetchers,
		priority:          p.Priority,
		validator:         p.Validator,
		analyzer:          p.Analyzer,
		storage:           p.Storage,
		notifier:          p.Notifier,
		cycleDeadline:     p.CycleDeadline,
		minuteTolerance:   p.MinuteTolerance,
		acceptedTypes:     p.AcceptedTypes,
		minConfidence:     p.MinConfidence,
		premiumConfidence: p.PremiumConfidence,
		topK:              p.TopK,
	}, nil
}

// RunCycle executes one fetch → validate → merge → analyze → rank cycle.
// Provider failures never propagate past this boundary: a failed source is
// excluded from the cycle and accounted in SourceStatuses.
func (e *Engine) RunCycle(ctx context.Context, query models.Query) (*CycleResult, error) {
	cycleID := e.cycleID.Add(1)
	started := time.Now().UTC()

	cycleCtx, cancel := context.WithTimeout(ctx, e.cycleDeadline)
	defer cancel()

	raw, statuses := e.fetchAll(cycleCtx, query)

	if query.Kind == models.QueryByLeague && query.League != "" {
		raw = filterByLeague(raw, query.League)
	}

	valid, rejected := e.validateAll(raw)

	canonical := Reconcile(valid, e.priority, e.minuteTolerance)

	result := &CycleResult{
		CycleID:          cycleID,
		Query:            query,
		Timestamp:        started,
		CanonicalMatches: canonical,
		SourceStatuses:   statuses,
		RejectedCount:    rejected,
	}

	if e.storage != nil && len(canonical) > 0 {
		if err := e.storage.StoreCanonicalMatches(ctx, canonical); err != nil {
			slog.Error("Failed to persist canonical matches", "cycle_id", cycleID, "error", err)
		}
	}

	result.Signals = e.generateSignals(ctx, cycleID, canonical)

	if e.storage != nil && len(result.Signals) > 0 {
		if err := e.storage.StoreSignals(ctx, result.Signals); err != nil {
			slog.Error("Failed to persist signals", "cycle_id", cycleID, "error", err)
		}
	}

	// The automated broadcast path holds signals to the premium threshold;
	// the cycle result keeps everything above the base threshold.
	broadcast := RankSignals(result.Signals, e.acceptedTypes, e.premiumConfidence, e.topK)
	if e.notifier != nil && len(broadcast) > 0 {
		meta := notify.CycleMeta{
			CycleID:             cycleID,
			Timestamp:           started,
			SourcesContributing: result.ContributingSources(),
			RejectedCount:       rejected,
		}
		if err := e.notifier.NotifySignals(ctx, broadcast, meta); err != nil {
			slog.Error("Failed to queue notifications", "cycle_id", cycleID, "error", err)
		}
	}

	slog.Info("Cycle finished",
		"cycle_id", cycleID,
		"query", string(query.Kind),
		"canonical", len(canonical),
		"signals", len(result.Signals),
		"rejected", rejected,
		"duration", time.Since(started))

	return result, nil
}

// fetchAll fans out over all configured providers concurrently and collects
// the union of successful results. No provider can block the cycle past the
// cycle deadline; a cancelled call is accounted as a timeout.
func (e *Engine) fetchAll(ctx context.Context, query models.Query) ([]models.MatchRecord, []SourceStatus) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		records  []models.MatchRecord
		statuses = make([]SourceStatus, len(e.fetchers))
	)

	for i, f := range e.fetchers {
		i, f := i, f
		wg.Add(1)
		go func() {
			defer wg.Done()

			status := SourceStatus{Source: f.Source()}
			result, err := f.Fetch(ctx, query)
			if err != nil {
				status.Error = fetch.KindLabel(err)
				slog.Warn("Source failed, excluded from cycle",
					"source", f.Source(), "kind", status.Error, "error", err)
			} else {
				status.Records = len(result.Records)
				status.Dropped = result.Dropped
			}

			mu.Lock()
			statuses[i] = status
			records = append(records, result.Records...)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return records, statuses
}

// validateAll sanitizes and scores every raw record. Rejections are logged
// with their full reason list, never silently discarded.
func (e *Engine) validateAll(raw []models.MatchRecord) ([]models.MatchRecord, int) {
	now := time.Now().UTC()
	valid := make([]models.MatchRecord, 0, len(raw))
	rejected := 0

	for _, r := range raw {
		validation.SanitizeRecord(&r)
		res := e.validator.Validate(r, now)
		if res.Passed {
			valid = append(valid, r)
			continue
		}
		rejected++
		slog.Info("Record rejected by authenticity validation",
			"source", r.Source,
			"match", r.Name(),
			"score", res.Score,
			"reasons", rejectionDetails(res))
	}

	return valid, rejected
}

func rejectionDetails(res models.ValidationResult) string {
	parts := make([]string, 0, len(res.Reasons))
	for _, reason := range res.Reasons {
		if !reason.OK {
			parts = append(parts, reason.Rule+": "+reason.Detail)
		}
	}
	return strings.Join(parts, "; ")
}

// generateSignals asks the AI collaborator about each canonical match and
// ranks the answers at the base confidence threshold. Analysis failures yield
// no signals for that match, not a cycle error.
func (e *Engine) generateSignals(ctx context.Context, cycleID int64, canonical []models.CanonicalMatchRecord) []models.Signal {
	if e.analyzer == nil || len(canonical) == 0 {
		return nil
	}

	candidates := make([]models.Signal, 0, len(canonical))
	for _, cm := range canonical {
		signals, err := e.analyzer.Analyze(ctx, cm)
		if err != nil {
			slog.Debug("Analysis returned no signals", "cycle_id", cycleID, "match", cm.MatchName, "error", err)
			continue
		}
		candidates = append(candidates, signals...)
	}

	return RankSignals(candidates, e.acceptedTypes, e.minConfidence, e.topK)
}

func filterByLeague(records []models.MatchRecord, league string) []models.MatchRecord {
	needle := strings.ToLower(strings.TrimSpace(league))
	if needle == "" {
		return records
	}
	out := make([]models.MatchRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Competition), needle) {
			out = append(out, r)
		}
	}
	return out
}
