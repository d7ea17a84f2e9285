package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Sources    SourcesConfig    `yaml:"sources"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Validation ValidationConfig `yaml:"validation"`
	Reconcile  ReconcileConfig  `yaml:"reconcile"`
	Signals    SignalsConfig    `yaml:"signals"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Health     HealthConfig     `yaml:"health"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type SourcesConfig struct {
	// Priority is the provider order used for best-record tie-breaks.
	// Only listed sources participate in fetch cycles.
	Priority     []string           `yaml:"priority"`
	ESPN         ESPNConfig         `yaml:"espn"`
	FootballData FootballDataConfig `yaml:"football_data"`
	APIFootball  APIFootballConfig  `yaml:"api_football"`
	LiveScore    LiveScoreConfig    `yaml:"live_score"`
}

// SourceLimits is the per-source request budget.
type SourceLimits struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type ESPNConfig struct {
	BaseURL string       `yaml:"base_url"`
	Leagues []string     `yaml:"leagues"`
	Limits  SourceLimits `yaml:"limits"`
}

type FootballDataConfig struct {
	BaseURL string       `yaml:"base_url"`
	APIKey  string       `yaml:"api_key"`
	Limits  SourceLimits `yaml:"limits"`
}

type APIFootballConfig struct {
	BaseURL string       `yaml:"base_url"`
	APIKey  string       `yaml:"api_key"`
	Limits  SourceLimits `yaml:"limits"`
}

type LiveScoreConfig struct {
	BaseURL string       `yaml:"base_url"`
	Limits  SourceLimits `yaml:"limits"`
}

type FetchConfig struct {
	// Timeout is the per-call budget for one provider request chain.
	Timeout time.Duration `yaml:"timeout"`
	// CycleDeadline bounds a whole fan-out cycle; outstanding calls are
	// cancelled and accounted as timeouts.
	CycleDeadline time.Duration `yaml:"cycle_deadline"`
}

type ValidationConfig struct {
	TrustedSources  []string      `yaml:"trusted_sources"`
	BlockedTokens   []string      `yaml:"blocked_tokens"`
	StalenessWindow time.Duration `yaml:"staleness_window"`
}

type ReconcileConfig struct {
	// MinuteTolerance is the largest minute discrepancy between sources that
	// is not flagged as a conflict. An explicit 0 demands exact minute
	// agreement; leaving the key unset defaults to 1.
	MinuteTolerance *int `yaml:"minute_tolerance"`
}

type SignalsConfig struct {
	AcceptedTypes     []string `yaml:"accepted_types"`
	MinConfidence     int      `yaml:"min_confidence"`     // base path (on-demand queries)
	PremiumConfidence int      `yaml:"premium_confidence"` // automated broadcast path
	TopK              int      `yaml:"top_k"`
}

type SchedulerConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type HealthConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File enables an additional JSON log sink when set.
	File string `yaml:"file"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if len(c.Sources.Priority) == 0 {
		c.Sources.Priority = []string{"espn", "football_data", "api_football", "live_score"}
	}
	if c.Sources.ESPN.BaseURL == "" {
		c.Sources.ESPN.BaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	}
	if len(c.Sources.ESPN.Leagues) == 0 {
		c.Sources.ESPN.Leagues = []string{
			"bra.1", "eng.1", "esp.1", "ita.1", "ger.1", "fra.1",
			"uefa.champions", "conmebol.libertadores",
		}
	}
	if c.Sources.FootballData.BaseURL == "" {
		c.Sources.FootballData.BaseURL = "https://api.football-data.org/v4"
	}
	if c.Sources.APIFootball.BaseURL == "" {
		c.Sources.APIFootball.BaseURL = "https://v3.football.api-sports.io"
	}
	if c.Sources.LiveScore.BaseURL == "" {
		c.Sources.LiveScore.BaseURL = "https://www.livescore.com/en/football/live/"
	}

	applyLimitDefaults(&c.Sources.ESPN.Limits, 60, 10)
	applyLimitDefaults(&c.Sources.FootballData.Limits, 10, 3)
	applyLimitDefaults(&c.Sources.APIFootball.Limits, 30, 5)
	applyLimitDefaults(&c.Sources.LiveScore.Limits, 6, 2)

	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 3 * time.Second
	}
	if c.Fetch.CycleDeadline <= 0 {
		c.Fetch.CycleDeadline = c.Fetch.Timeout + 2*time.Second
	}

	if len(c.Validation.TrustedSources) == 0 {
		c.Validation.TrustedSources = []string{"espn", "football_data", "api_football", "live_score"}
	}
	if len(c.Validation.BlockedTokens) == 0 {
		c.Validation.BlockedTokens = []string{"test", "fake", "demo", "example", "sample", "mock", "dummy"}
	}
	if c.Validation.StalenessWindow <= 0 {
		c.Validation.StalenessWindow = 120 * time.Second
	}

	if c.Reconcile.MinuteTolerance == nil {
		tolerance := 1
		c.Reconcile.MinuteTolerance = &tolerance
	} else if *c.Reconcile.MinuteTolerance < 0 {
		*c.Reconcile.MinuteTolerance = 0
	}

	if len(c.Signals.AcceptedTypes) == 0 {
		c.Signals.AcceptedTypes = []string{"corners", "cards", "both_teams_score"}
	}
	if c.Signals.MinConfidence <= 0 {
		c.Signals.MinConfidence = 7
	}
	if c.Signals.PremiumConfidence <= 0 {
		c.Signals.PremiumConfidence = 8
	}
	if c.Signals.TopK <= 0 {
		c.Signals.TopK = 2
	}

	if c.Scheduler.RefreshInterval <= 0 {
		c.Scheduler.RefreshInterval = 60 * time.Second
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash"
	}
	if c.Gemini.Timeout <= 0 {
		c.Gemini.Timeout = 20 * time.Second
	}

	if c.Health.Port == 0 {
		c.Health.Port = 8080
	}
	if c.Health.ReadHeaderTimeout <= 0 {
		c.Health.ReadHeaderTimeout = 5 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
}

// applyEnv overrides secrets from the environment so they never have to live
// in the yaml file.
func (c *Config) applyEnv() {
	if v := os.Getenv("FOOTBALL_DATA_API_KEY"); v != "" {
		c.Sources.FootballData.APIKey = v
	}
	if v := os.Getenv("API_FOOTBALL_KEY"); v != "" {
		c.Sources.APIFootball.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
}

func applyLimitDefaults(l *SourceLimits, rpm, burst int) {
	if l.RequestsPerMinute <= 0 {
		l.RequestsPerMinute = rpm
	}
	if l.Burst <= 0 {
		l.Burst = burst
	}
}
