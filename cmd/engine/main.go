package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/projetoswmfa/football-api/internal/analysis"
	"github.com/projetoswmfa/football-api/internal/engine"
	pkgconfig "github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/fetch"
	"github.com/projetoswmfa/football-api/internal/pkg/health"
	"github.com/projetoswmfa/football-api/internal/pkg/logging"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
	"github.com/projetoswmfa/football-api/internal/pkg/notify"
	"github.com/projetoswmfa/football-api/internal/pkg/storage"
	"github.com/projetoswmfa/football-api/internal/pkg/validation"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"

	// Register all supported source adapters via init().
	_ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/all"
)

const (
	defaultConfigPath = "configs/production.yaml"
)

type config struct {
	configPath string
	runFor     time.Duration
	once       bool
	query      string
	league     string
	source     string // Override sources.priority from config (e.g. "espn")
}

func main() {
	if err := run(); err != nil {
		slog.Error("Engine failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	slog.Info("Starting aggregation engine...")

	cfg := parseFlags()
	slog.Info("Loading config", "path", cfg.configPath)

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, err = logging.SetupLogger(&appConfig.Logging, "engine")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	} else {
		slog.Info("Logging initialized", "service", "engine")
	}

	slog.Info("Config loaded successfully")

	if cfg.source != "" {
		appConfig.Sources.Priority = []string{cfg.source}
	}

	query, err := buildQuery(cfg.query, cfg.league)
	if err != nil {
		return err
	}

	fetchers, priority, err := buildFetchers(appConfig)
	if err != nil {
		return err
	}
	printSelectedSources(priority)

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	validator := validation.NewValidator(&appConfig.Validation)

	params := engine.Params{
		Fetchers:          fetchers,
		Priority:          priority,
		Validator:         validator,
		CycleDeadline:     appConfig.Fetch.CycleDeadline,
		MinuteTolerance:   *appConfig.Reconcile.MinuteTolerance,
		AcceptedTypes:     acceptedTypes(appConfig),
		MinConfidence:     appConfig.Signals.MinConfidence,
		PremiumConfidence: appConfig.Signals.PremiumConfidence,
		TopK:              appConfig.Signals.TopK,
	}

	if appConfig.Gemini.APIKey != "" {
		analyzer, err := analysis.NewGeminiAnalyzer(&appConfig.Gemini)
		if err != nil {
			return fmt.Errorf("failed to create analyzer: %w", err)
		}
		params.Analyzer = analyzer
	} else {
		slog.Warn("GEMINI_API_KEY not set, signal analysis disabled")
	}

	if appConfig.Postgres.DSN != "" {
		store, err := storage.NewPostgresStorage(&appConfig.Postgres)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer store.Close()
		params.Storage = store
	} else {
		slog.Warn("POSTGRES_DSN not set, persistence disabled")
	}

	if appConfig.Telegram.BotToken != "" && appConfig.Telegram.ChatID != 0 {
		notifier, err := notify.NewTelegramNotifier(appConfig.Telegram.BotToken, appConfig.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}
		defer notifier.Stop()
		params.Notifier = notifier
	} else {
		slog.Warn("Telegram credentials not set, notifications disabled")
	}

	eng, err := engine.New(params)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	healthAddr := health.AddrFor(appConfig.Health.Port)
	health.Run(ctx, healthAddr, "engine", appConfig.Health.ReadHeaderTimeout)

	if cfg.once {
		return runOnce(ctx, eng, query)
	}
	return runPeriodic(ctx, eng, query, appConfig.Scheduler.RefreshInterval)
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until SIGINT/SIGTERM")
	flag.BoolVar(&cfg.once, "once", false, "Run a single cycle and exit")
	flag.StringVar(&cfg.query, "query", "live", "Query kind: live, today or by-league")
	flag.StringVar(&cfg.league, "league", "", "League filter for -query=by-league")
	flag.StringVar(&cfg.source, "source", "", "Override sources.priority: run a single source (e.g. 'espn'). Empty = use config")
	flag.Parse()
	return cfg
}

func buildQuery(kind, league string) (models.Query, error) {
	switch models.QueryKind(kind) {
	case models.QueryLive:
		return models.Query{Kind: models.QueryLive}, nil
	case models.QueryToday:
		return models.Query{Kind: models.QueryToday}, nil
	case models.QueryByLeague:
		if league == "" {
			return models.Query{}, fmt.Errorf("-query=by-league requires -league")
		}
		return models.Query{Kind: models.QueryByLeague, League: league}, nil
	default:
		return models.Query{}, fmt.Errorf("unknown query kind %q (expected live, today or by-league)", kind)
	}
}

func buildFetchers(cfg *pkgconfig.Config) ([]*fetch.Fetcher, []models.Source, error) {
	var (
		fetchers []*fetch.Fetcher
		priority []models.Source
		unknown  []string
	)

	for _, name := range cfg.Sources.Priority {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" {
			continue
		}
		factory, ok := scrapers.FactoryByName(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		scraper := factory(cfg)
		fetchers = append(fetchers, fetch.New(scraper, cfg.Fetch.Timeout))
		priority = append(priority, scraper.Name())
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, fmt.Errorf("unknown sources in sources.priority: %v (available: %v)", unknown, scrapers.AvailableNames())
	}
	if len(fetchers) == 0 {
		return nil, nil, fmt.Errorf("no sources selected to run (sources.priority=%v)", cfg.Sources.Priority)
	}

	return fetchers, priority, nil
}

func printSelectedSources(priority []models.Source) {
	names := make([]string, 0, len(priority))
	for _, s := range priority {
		names = append(names, string(s))
	}
	slog.Info("Using sources", "sources", strings.Join(names, ", "))
}

func acceptedTypes(cfg *pkgconfig.Config) []models.SignalType {
	out := make([]models.SignalType, 0, len(cfg.Signals.AcceptedTypes))
	for _, t := range cfg.Signals.AcceptedTypes {
		out = append(out, models.SignalType(strings.ToLower(strings.TrimSpace(t))))
	}
	return out
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping engine...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			close(sigChan)
		}
	}()
}

func runOnce(ctx context.Context, eng *engine.Engine, query models.Query) error {
	result, err := eng.RunCycle(ctx, query)
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}
	health.RecordCycle(result)
	return nil
}

func runPeriodic(ctx context.Context, eng *engine.Engine, query models.Query, interval time.Duration) error {
	slog.Info("Starting periodic cycles", "interval", interval, "query", string(query.Kind))

	// First cycle immediately, then on every tick.
	if result, err := eng.RunCycle(ctx, query); err != nil {
		slog.Error("Cycle failed", "error", err)
	} else {
		health.RecordCycle(result)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine stopped gracefully")
			return nil
		case <-ticker.C:
			result, err := eng.RunCycle(ctx, query)
			if err != nil {
				slog.Error("Cycle failed", "error", err)
				continue
			}
			health.RecordCycle(result)
		}
	}
}
