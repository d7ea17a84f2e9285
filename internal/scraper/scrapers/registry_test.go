package scrapers

import (
	"testing"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
)

func TestRegistryLookup(t *testing.T) {
	Register("Test-Source", func(cfg *config.Config) Scraper { return nil })

	if _, ok := FactoryByName("test-source"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := FactoryByName("  TEST-SOURCE  "); !ok {
		t.Error("lookup should trim whitespace")
	}
	if _, ok := FactoryByName("nonexistent"); ok {
		t.Error("unknown names must report not found")
	}

	names := AvailableNames()
	found := false
	for _, n := range names {
		if n == "test-source" {
			found = true
		}
	}
	if !found {
		t.Errorf("registered name missing from %v", names)
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty name")
		}
	}()
	Register("  ", func(cfg *config.Config) Scraper { return nil })
}
