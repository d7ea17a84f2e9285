package models

import (
	"strings"
	"time"
)

// MatchKey builds a stable cross-source match identifier.
//
// Different providers disagree on home/away orientation for neutral-venue
// fixtures, so the team pair is order-independent. Kick-off times also drift
// by a few minutes between feeds, so only the UTC date participates.
// Format: teamA|teamB|date (teams sorted after normalization).
func MatchKey(homeTeam, awayTeam string, observedAt time.Time) string {
	a := NormalizeTeamName(homeTeam)
	b := NormalizeTeamName(awayTeam)
	if b < a {
		a, b = b, a
	}

	day := "unknown-date"
	if !observedAt.IsZero() {
		day = observedAt.UTC().Format("2006-01-02")
	}

	return a + "|" + b + "|" + day
}

// teamNamePrefixes are stripped for grouping so "FC Flamengo" and "Flamengo"
// land on the same key.
var teamNamePrefixes = []string{
	"r.c. ", "rc ", "f.c. ", "fc ", "f.k. ", "fk ", "c.f. ", "cf ",
	"s.c. ", "sc ", "s.s.c. ", "ssc ", "a.c. ", "ac ", "a.s. ", "as ",
	"u.d. ", "ud ", "c.d. ", "cd ", "n.k. ", "nk ", "cr ", "ca ", "se ",
}

// diacriticFolder maps the accented characters that show up in Latin American
// and European team names onto their ASCII bases.
var diacriticFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n", "ý", "y", "š", "s", "ž", "z", "ć", "c", "č", "c",
)

// NormalizeTeamName normalizes a team name for comparison and grouping:
// lower-case, diacritics folded, club prefixes stripped, whitespace collapsed.
func NormalizeTeamName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = diacriticFolder.Replace(s)
	for _, p := range teamNamePrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
