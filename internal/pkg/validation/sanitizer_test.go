package validation

import (
	"testing"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

func TestSanitizeRecord(t *testing.T) {
	record := models.MatchRecord{
		ExternalID:  "  espn-123  ",
		HomeTeam:    "  Atlético \u200b  Mineiro\u0000 ",
		AwayTeam:    "\tBotafogo\n",
		Status:      models.MatchStatus(" LIVE "),
		Competition: "Série  A ",
		Source:      models.Source("ESPN"),
	}

	SanitizeRecord(&record)

	if record.ExternalID != "espn-123" {
		t.Errorf("external id: got %q", record.ExternalID)
	}
	if record.HomeTeam != "Atlético Mineiro" {
		t.Errorf("home team: got %q", record.HomeTeam)
	}
	if record.AwayTeam != "Botafogo" {
		t.Errorf("away team: got %q", record.AwayTeam)
	}
	if record.Status != models.StatusLive {
		t.Errorf("status: got %q", record.Status)
	}
	if record.Competition != "Série A" {
		t.Errorf("competition: got %q", record.Competition)
	}
	if record.Source != models.SourceESPN {
		t.Errorf("source: got %q", record.Source)
	}
}
