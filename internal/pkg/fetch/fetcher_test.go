package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"
)

type stubScraper struct {
	name   models.Source
	limits scrapers.RateLimits
	calls  int
	fn     func(ctx context.Context) (scrapers.Result, error)
}

func (s *stubScraper) Name() models.Source         { return s.name }
func (s *stubScraper) Limits() scrapers.RateLimits { return s.limits }

func (s *stubScraper) FetchLive(ctx context.Context) (scrapers.Result, error) {
	s.calls++
	return s.fn(ctx)
}

func (s *stubScraper) FetchToday(ctx context.Context) (scrapers.Result, error) {
	return s.FetchLive(ctx)
}

func generousLimits() scrapers.RateLimits {
	return scrapers.RateLimits{RequestsPerMinute: 600, Burst: 10}
}

func TestFetchSuccess(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: generousLimits(),
		fn: func(ctx context.Context) (scrapers.Result, error) {
			return scrapers.Result{Records: []models.MatchRecord{{ExternalID: "1"}}}, nil
		},
	}

	f := New(s, time.Second)
	result, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if s.calls != 1 {
		t.Errorf("expected 1 call, got %d", s.calls)
	}
}

func TestFetchNoRetryOnMalformed(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: generousLimits(),
	}
	s.fn = func(ctx context.Context) (scrapers.Result, error) {
		return scrapers.Result{}, Malformed(s.name, errors.New("unexpected payload"))
	}

	f := New(s, time.Second)
	_, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if s.calls != 1 {
		t.Errorf("malformed responses must not be retried, got %d calls", s.calls)
	}
}

func TestFetchRetriesTransientOnce(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: generousLimits(),
	}
	s.fn = func(ctx context.Context) (scrapers.Result, error) {
		if s.calls == 1 {
			return scrapers.Result{}, Unreachable(s.name, errors.New("connection refused"))
		}
		return scrapers.Result{Records: []models.MatchRecord{{ExternalID: "1"}}}, nil
	}

	f := New(s, time.Second)
	result, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if s.calls != 2 {
		t.Errorf("expected exactly 2 calls (one retry), got %d", s.calls)
	}
}

func TestFetchRetryBudgetExhausted(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: generousLimits(),
	}
	s.fn = func(ctx context.Context) (scrapers.Result, error) {
		return scrapers.Result{}, Unreachable(s.name, errors.New("connection refused"))
	}

	f := New(s, time.Second)
	_, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected unreachable error, got %v", err)
	}
	if s.calls != 2 {
		t.Errorf("expected 2 calls (original plus one retry), got %d", s.calls)
	}
}

func TestFetchFailsFastWhenRateLimited(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: scrapers.RateLimits{RequestsPerMinute: 1, Burst: 1},
		fn: func(ctx context.Context) (scrapers.Result, error) {
			return scrapers.Result{}, nil
		},
	}

	f := New(s, time.Second)
	if _, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive}); err != nil {
		t.Fatalf("first fetch should pass: %v", err)
	}

	_, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	if s.calls != 1 {
		t.Errorf("exhausted budget must fail fast without calling the source, got %d calls", s.calls)
	}
}

func TestFetchSlowSourceClassifiedAsTimeout(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: generousLimits(),
		fn: func(ctx context.Context) (scrapers.Result, error) {
			<-ctx.Done()
			return scrapers.Result{}, ctx.Err()
		},
	}

	f := New(s, 20*time.Millisecond)
	_, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if s.calls != 2 {
		t.Errorf("expected 2 calls (timeouts are retried once), got %d", s.calls)
	}
}

func TestFetchClassifiesRawErrors(t *testing.T) {
	s := &stubScraper{
		name:   models.SourceESPN,
		limits: generousLimits(),
	}
	s.fn = func(ctx context.Context) (scrapers.Result, error) {
		return scrapers.Result{}, errors.New("dial tcp: connection refused")
	}

	f := New(s, time.Second)
	_, err := f.Fetch(context.Background(), models.Query{Kind: models.QueryLive})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("raw adapter errors should classify as unreachable, got %v", err)
	}
}
