package engine

import (
	"sort"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Conflict flag names recorded on canonical records.
const (
	ConflictHomeScore = "home_score"
	ConflictAwayScore = "away_score"
	ConflictMinute    = "minute"
	ConflictStatus    = "status"
)

// Reconcile groups validated records by match key and resolves each group to
// one canonical record. The result is independent of input order: groups are
// keyed, the best record is picked by source priority, and flag/source sets
// are emitted sorted.
func Reconcile(records []models.MatchRecord, priority []models.Source, minuteTolerance int) []models.CanonicalMatchRecord {
	if len(records) == 0 {
		return nil
	}

	rank := make(map[models.Source]int, len(priority))
	for i, s := range priority {
		rank[s] = i
	}

	groups := make(map[string][]models.MatchRecord)
	keys := make([]string, 0)
	for _, r := range records {
		key := r.Key()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], r)
	}
	sort.Strings(keys)

	out := make([]models.CanonicalMatchRecord, 0, len(keys))
	for _, key := range keys {
		out = append(out, mergeGroup(key, groups[key], rank, minuteTolerance))
	}
	return out
}

func mergeGroup(key string, group []models.MatchRecord, rank map[models.Source]int, minuteTolerance int) models.CanonicalMatchRecord {
	// De-duplicate per source first: a provider can report the same match via
	// several league feeds; keep its freshest observation.
	bySource := make(map[models.Source]models.MatchRecord, len(group))
	for _, r := range group {
		prev, ok := bySource[r.Source]
		if !ok || r.ObservedAt.After(prev.ObservedAt) {
			bySource[r.Source] = r
		}
	}

	members := make([]models.MatchRecord, 0, len(bySource))
	for _, r := range bySource {
		members = append(members, r)
	}
	sort.Slice(members, func(i, j int) bool {
		ri, iKnown := rank[members[i].Source]
		rj, jKnown := rank[members[j].Source]
		if iKnown != jKnown {
			return iKnown // configured sources outrank unlisted ones
		}
		if ri != rj {
			return ri < rj
		}
		return members[i].Source < members[j].Source
	})

	best := members[0]

	flags := map[string]bool{}
	sources := make([]models.Source, 0, len(members))
	var lastUpdated time.Time
	for _, m := range members {
		sources = append(sources, m.Source)
		if m.ObservedAt.After(lastUpdated) {
			lastUpdated = m.ObservedAt
		}
		if m.Source == best.Source {
			continue
		}
		if m.HomeScore != best.HomeScore {
			flags[ConflictHomeScore] = true
		}
		if m.AwayScore != best.AwayScore {
			flags[ConflictAwayScore] = true
		}
		if minuteConflict(best.Minute, m.Minute, minuteTolerance) {
			flags[ConflictMinute] = true
		}
		if lifecycleStage(m.Status) != lifecycleStage(best.Status) {
			flags[ConflictStatus] = true
		}
	}

	flagList := make([]string, 0, len(flags))
	for f := range flags {
		flagList = append(flagList, f)
	}
	sort.Strings(flagList)
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	return models.CanonicalMatchRecord{
		MatchKey:            key,
		MatchName:           best.Name(),
		Best:                best,
		ContributingSources: sources,
		ConflictFlags:       flagList,
		LastUpdated:         lastUpdated,
	}
}

func minuteConflict(a, b *int, tolerance int) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	d := *a - *b
	if d < 0 {
		d = -d
	}
	return d > tolerance
}

// lifecycleStage buckets statuses so that e.g. live vs halftime is not a
// conflict but live vs finished is.
func lifecycleStage(s models.MatchStatus) int {
	switch s {
	case models.StatusScheduled, models.StatusPostponed:
		return 0
	case models.StatusLive, models.StatusHalftime:
		return 1
	case models.StatusFinished, models.StatusCancelled:
		return 2
	default:
		return -1
	}
}
