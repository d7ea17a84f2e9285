package engine

import (
	"reflect"
	"testing"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

var allSignalTypes = []models.SignalType{
	models.SignalCorners,
	models.SignalCards,
	models.SignalBothTeamsScore,
}

func signal(key string, typ models.SignalType, confidence int) models.Signal {
	return models.Signal{MatchKey: key, Type: typ, Confidence: confidence}
}

func TestRankSignalsThresholdAndTopK(t *testing.T) {
	in := []models.Signal{
		signal("a", models.SignalCorners, 9),
		signal("b", models.SignalCards, 8),
		signal("c", models.SignalCorners, 8),
		signal("d", models.SignalBothTeamsScore, 7),
		signal("e", models.SignalCards, 6),
	}

	out := RankSignals(in, allSignalTypes, 8, 2)

	if len(out) != 2 {
		t.Fatalf("expected top 2 signals, got %d", len(out))
	}
	if out[0].MatchKey != "a" || out[0].Confidence != 9 {
		t.Errorf("first signal: got %+v", out[0])
	}
	// b and c tie at 8; input order breaks the tie.
	if out[1].MatchKey != "b" {
		t.Errorf("tie should preserve input order, got %+v", out[1])
	}
}

func TestRankSignalsStableTies(t *testing.T) {
	in := []models.Signal{
		signal("x", models.SignalCorners, 8),
		signal("y", models.SignalCards, 8),
		signal("z", models.SignalBothTeamsScore, 8),
	}

	out := RankSignals(in, allSignalTypes, 7, 3)

	keys := []string{out[0].MatchKey, out[1].MatchKey, out[2].MatchKey}
	if !reflect.DeepEqual(keys, []string{"x", "y", "z"}) {
		t.Errorf("equal confidences must keep input order, got %v", keys)
	}
}

func TestRankSignalsTypeFilter(t *testing.T) {
	in := []models.Signal{
		signal("a", models.SignalCorners, 9),
		signal("b", models.SignalType("possession"), 10),
		signal("c", models.SignalCards, 8),
	}

	out := RankSignals(in, []models.SignalType{models.SignalCorners, models.SignalCards}, 7, 5)

	if len(out) != 2 {
		t.Fatalf("expected 2 signals after type filter, got %d", len(out))
	}
	for _, s := range out {
		if s.Type != models.SignalCorners && s.Type != models.SignalCards {
			t.Errorf("unexpected type %q survived the filter", s.Type)
		}
	}
}

func TestRankSignalsNoneAboveThreshold(t *testing.T) {
	in := []models.Signal{
		signal("a", models.SignalCorners, 5),
		signal("b", models.SignalCards, 6),
	}

	if out := RankSignals(in, allSignalTypes, 8, 2); len(out) != 0 {
		t.Fatalf("expected no signals, got %v", out)
	}
}

func TestRankSignalsEmptyInput(t *testing.T) {
	if out := RankSignals(nil, allSignalTypes, 7, 2); len(out) != 0 {
		t.Fatalf("expected no signals for empty input, got %v", out)
	}
}
