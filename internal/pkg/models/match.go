package models

import (
	"fmt"
	"time"
)

// Source identifies a match-data provider.
type Source string

const (
	SourceESPN         Source = "espn"
	SourceFootballData Source = "football_data"
	SourceAPIFootball  Source = "api_football"
	SourceLiveScore    Source = "live_score"
)

// MatchStatus is the lifecycle status of a match.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusHalftime  MatchStatus = "halftime"
	StatusFinished  MatchStatus = "finished"
	StatusPostponed MatchStatus = "postponed"
	StatusCancelled MatchStatus = "cancelled"
)

// KnownStatus reports whether s is one of the recognized statuses.
func KnownStatus(s MatchStatus) bool {
	switch s {
	case StatusScheduled, StatusLive, StatusHalftime, StatusFinished, StatusPostponed, StatusCancelled:
		return true
	}
	return false
}

// InPlay reports whether the match clock is running (or paused at the break).
func (s MatchStatus) InPlay() bool {
	return s == StatusLive || s == StatusHalftime
}

// HasMinute reports whether a record with this status is expected to carry a minute.
func (s MatchStatus) HasMinute() bool {
	return s == StatusLive || s == StatusHalftime || s == StatusFinished
}

// MatchRecord is the normalized match shape shared by all providers.
// ExternalID is unique per source, not globally.
type MatchRecord struct {
	ExternalID  string      `json:"external_id"`
	HomeTeam    string      `json:"home_team"`
	AwayTeam    string      `json:"away_team"`
	HomeScore   int         `json:"home_score"`
	AwayScore   int         `json:"away_score"`
	Minute      *int        `json:"minute,omitempty"`
	Status      MatchStatus `json:"status"`
	Competition string      `json:"competition"`
	Venue       string      `json:"venue,omitempty"`
	Source      Source      `json:"source"`
	ObservedAt  time.Time   `json:"observed_at"`
}

// Name returns a human-readable "Home vs Away" label.
func (m MatchRecord) Name() string {
	return fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
}

// Key returns the cross-source match key for this record.
func (m MatchRecord) Key() string {
	at := m.ObservedAt
	return MatchKey(m.HomeTeam, m.AwayTeam, at)
}

// CanonicalMatchRecord is the single reconciled view of one real-world match
// for one fetch cycle. Conflicting fields are flagged, never hidden.
type CanonicalMatchRecord struct {
	MatchKey            string      `json:"match_key"`
	MatchName           string      `json:"match_name"`
	Best                MatchRecord `json:"best_record"`
	ContributingSources []Source    `json:"contributing_sources"`
	ConflictFlags       []string    `json:"conflict_flags,omitempty"`
	LastUpdated         time.Time   `json:"last_updated"`
}

// QueryKind selects which logical fetch a cycle performs.
type QueryKind string

const (
	QueryLive     QueryKind = "live"
	QueryToday    QueryKind = "today"
	QueryByLeague QueryKind = "by-league"
)

// Query describes one logical fetch cycle request.
type Query struct {
	Kind   QueryKind `json:"kind"`
	League string    `json:"league,omitempty"` // only for QueryByLeague
}
