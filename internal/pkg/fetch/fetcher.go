package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"
)

// maxRetries bounds retransmission for transient failures. Malformed responses
// are a data problem, not a transient fault, and are never retried.
const maxRetries = 1

// Fetcher wraps one provider adapter with a token-bucket limiter, a circuit
// breaker and a per-call timeout. Limiter and breaker state is the only state
// shared across concurrent cycles; both are internally synchronized.
type Fetcher struct {
	scraper scrapers.Scraper
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// New builds a Fetcher around s using the adapter's declared rate limits.
func New(s scrapers.Scraper, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	limits := s.Limits()
	rpm := limits.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := limits.Burst
	if burst <= 0 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    string(s.Name()),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Source circuit breaker state changed", "source", name, "from", from.String(), "to", to.String())
		},
	})

	return &Fetcher{
		scraper: s,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		breaker: breaker,
		timeout: timeout,
	}
}

// Source returns the wrapped provider's identity.
func (f *Fetcher) Source() models.Source {
	return f.scraper.Name()
}

// Fetch runs one logical query against the provider. It fails fast with
// ErrRateLimited when the source budget is exhausted rather than queueing.
func (f *Fetcher) Fetch(ctx context.Context, query models.Query) (scrapers.Result, error) {
	var call func(context.Context) (scrapers.Result, error)
	switch query.Kind {
	case models.QueryLive:
		call = f.scraper.FetchLive
	case models.QueryToday, models.QueryByLeague:
		call = f.scraper.FetchToday
	default:
		return scrapers.Result{}, fmt.Errorf("unknown query kind: %q", query.Kind)
	}

	source := f.scraper.Name()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if !f.limiter.Allow() {
			return scrapers.Result{}, RateLimited(source)
		}

		result, err := f.execute(ctx, call)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Retry only transient faults, and only while the cycle is alive.
		kind := KindOf(err)
		if kind != ErrTimeout && kind != ErrUnreachable {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < maxRetries {
			slog.Debug("Retrying source fetch", "source", source, "kind", KindLabel(err), "attempt", attempt+1)
		}
	}

	return scrapers.Result{}, lastErr
}

func (f *Fetcher) execute(ctx context.Context, call func(context.Context) (scrapers.Result, error)) (scrapers.Result, error) {
	source := f.scraper.Name()

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	out, err := f.breaker.Execute(func() (interface{}, error) {
		return call(callCtx)
	})
	if err != nil {
		return scrapers.Result{}, f.classify(callCtx, err)
	}

	result, ok := out.(scrapers.Result)
	if !ok {
		return scrapers.Result{}, Malformed(source, fmt.Errorf("unexpected result type %T", out))
	}
	return result, nil
}

// classify maps raw adapter/breaker failures onto the error taxonomy.
// Errors the adapter already classified pass through unchanged.
func (f *Fetcher) classify(callCtx context.Context, err error) error {
	source := f.scraper.Name()

	if KindOf(err) != nil {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Unreachable(source, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
		return Timeout(source, err)
	}
	return Unreachable(source, err)
}
