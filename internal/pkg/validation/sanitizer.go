package validation

import (
	"strings"
	"unicode"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// SanitizeRecord cleans string fields in place before validation: control
// characters stripped, whitespace collapsed. Provider feeds occasionally leak
// tabs and zero-width characters into team names, which would otherwise split
// identical matches across distinct keys.
func SanitizeRecord(record *models.MatchRecord) {
	if record == nil {
		return
	}

	record.ExternalID = strings.TrimSpace(record.ExternalID)
	record.HomeTeam = sanitizeString(record.HomeTeam)
	record.AwayTeam = sanitizeString(record.AwayTeam)
	record.Competition = sanitizeString(record.Competition)
	record.Venue = sanitizeString(record.Venue)
	record.Status = models.MatchStatus(strings.ToLower(strings.TrimSpace(string(record.Status))))
	record.Source = models.Source(strings.ToLower(strings.TrimSpace(string(record.Source))))
}

func sanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\uFEFF' || r == '\u200B' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
