package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "sources:\n  priority: [espn]\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Fetch.Timeout != 3*time.Second {
		t.Errorf("fetch timeout default: got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.CycleDeadline != 5*time.Second {
		t.Errorf("cycle deadline should default to timeout plus margin, got %v", cfg.Fetch.CycleDeadline)
	}
	if cfg.Validation.StalenessWindow != 120*time.Second {
		t.Errorf("staleness window default: got %v", cfg.Validation.StalenessWindow)
	}
	if len(cfg.Validation.BlockedTokens) == 0 {
		t.Error("blocked tokens default missing")
	}
	if cfg.Reconcile.MinuteTolerance == nil || *cfg.Reconcile.MinuteTolerance != 1 {
		t.Errorf("minute tolerance default: got %v", cfg.Reconcile.MinuteTolerance)
	}
	if cfg.Signals.MinConfidence != 7 || cfg.Signals.PremiumConfidence != 8 {
		t.Errorf("confidence defaults: got %d/%d", cfg.Signals.MinConfidence, cfg.Signals.PremiumConfidence)
	}
	if cfg.Signals.TopK != 2 {
		t.Errorf("top_k default: got %d", cfg.Signals.TopK)
	}
	if cfg.Scheduler.RefreshInterval != 60*time.Second {
		t.Errorf("refresh interval default: got %v", cfg.Scheduler.RefreshInterval)
	}
}

func TestLoadCycleDeadlineTracksTimeout(t *testing.T) {
	path := writeConfig(t, "fetch:\n  timeout: 10s\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fetch.CycleDeadline != 12*time.Second {
		t.Errorf("cycle deadline: got %v, want timeout+2s", cfg.Fetch.CycleDeadline)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
sources:
  priority: [football_data, espn]
fetch:
  timeout: 2s
  cycle_deadline: 8s
reconcile:
  minute_tolerance: 3
signals:
  top_k: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Sources.Priority) != 2 || cfg.Sources.Priority[0] != "football_data" {
		t.Errorf("priority: got %v", cfg.Sources.Priority)
	}
	if cfg.Fetch.CycleDeadline != 8*time.Second {
		t.Errorf("explicit cycle deadline overridden: got %v", cfg.Fetch.CycleDeadline)
	}
	if cfg.Reconcile.MinuteTolerance == nil || *cfg.Reconcile.MinuteTolerance != 3 {
		t.Errorf("minute tolerance: got %v", cfg.Reconcile.MinuteTolerance)
	}
	if cfg.Signals.TopK != 5 {
		t.Errorf("top_k: got %d", cfg.Signals.TopK)
	}
}

func TestLoadHonorsExplicitZeroMinuteTolerance(t *testing.T) {
	path := writeConfig(t, "reconcile:\n  minute_tolerance: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Reconcile.MinuteTolerance == nil || *cfg.Reconcile.MinuteTolerance != 0 {
		t.Errorf("explicit zero must survive defaulting, got %v", cfg.Reconcile.MinuteTolerance)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOOTBALL_DATA_API_KEY", "fd-secret")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123456")

	path := writeConfig(t, "sources:\n  football_data:\n    api_key: from-yaml\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sources.FootballData.APIKey != "fd-secret" {
		t.Errorf("env must override yaml, got %q", cfg.Sources.FootballData.APIKey)
	}
	if cfg.Telegram.ChatID != -100123456 {
		t.Errorf("chat id: got %d", cfg.Telegram.ChatID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
