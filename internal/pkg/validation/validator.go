package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Rule names, in scoring order. The order is stable so rejection reasons are
// comparable across runs.
const (
	RuleTrustedSource    = "trusted_source"
	RuleNamePlausibility = "name_plausibility"
	RuleFreshness        = "freshness"
	RuleCompleteness     = "completeness"
)

// MaxScore is the number of authenticity rules. A record passes only at full
// score: partial trust is insufficient, fabricated data gets no benefit of
// the doubt.
const MaxScore = 4

// Validator scores normalized records against the authenticity rules.
// It is a pure function of (record, now, configuration) and safe for
// concurrent use.
type Validator struct {
	trusted         map[models.Source]bool
	blockedTokens   []string
	stalenessWindow time.Duration
}

// NewValidator builds a validator from the validation config section.
func NewValidator(cfg *config.ValidationConfig) *Validator {
	trusted := make(map[models.Source]bool, len(cfg.TrustedSources))
	for _, s := range cfg.TrustedSources {
		trusted[models.Source(strings.ToLower(strings.TrimSpace(s)))] = true
	}

	tokens := make([]string, 0, len(cfg.BlockedTokens))
	for _, tok := range cfg.BlockedTokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	window := cfg.StalenessWindow
	if window <= 0 {
		window = 120 * time.Second
	}

	return &Validator{
		trusted:         trusted,
		blockedTokens:   tokens,
		stalenessWindow: window,
	}
}

// Validate scores one record at the given instant. All four rules always run
// so rejection reasons are complete, not just the first failure.
func (v *Validator) Validate(record models.MatchRecord, now time.Time) models.ValidationResult {
	reasons := []models.ValidationRule{
		v.checkTrustedSource(record),
		v.checkNamePlausibility(record),
		v.checkFreshness(record, now),
		v.checkCompleteness(record),
	}

	score := 0
	for _, r := range reasons {
		if r.OK {
			score++
		}
	}

	return models.ValidationResult{
		Record:  record,
		Score:   score,
		Passed:  score == MaxScore,
		Reasons: reasons,
	}
}

// checkTrustedSource fails closed: unknown sources score zero on this rule.
func (v *Validator) checkTrustedSource(record models.MatchRecord) models.ValidationRule {
	rule := models.ValidationRule{Rule: RuleTrustedSource}
	if v.trusted[record.Source] {
		rule.OK = true
		return rule
	}
	rule.Detail = fmt.Sprintf("source %q is not whitelisted", record.Source)
	return rule
}

func (v *Validator) checkNamePlausibility(record models.MatchRecord) models.ValidationRule {
	rule := models.ValidationRule{Rule: RuleNamePlausibility}
	home := strings.ToLower(record.HomeTeam)
	away := strings.ToLower(record.AwayTeam)
	for _, tok := range v.blockedTokens {
		if strings.Contains(home, tok) {
			rule.Detail = fmt.Sprintf("home team %q matches blocked token %q", record.HomeTeam, tok)
			return rule
		}
		if strings.Contains(away, tok) {
			rule.Detail = fmt.Sprintf("away team %q matches blocked token %q", record.AwayTeam, tok)
			return rule
		}
	}
	rule.OK = true
	return rule
}

func (v *Validator) checkFreshness(record models.MatchRecord, now time.Time) models.ValidationRule {
	rule := models.ValidationRule{Rule: RuleFreshness}
	if record.ObservedAt.IsZero() {
		rule.Detail = "record has no observation timestamp"
		return rule
	}
	age := now.Sub(record.ObservedAt)
	if age < 0 {
		age = -age
	}
	if age > v.stalenessWindow {
		rule.Detail = fmt.Sprintf("observed %s ago, staleness window is %s", age.Round(time.Second), v.stalenessWindow)
		return rule
	}
	rule.OK = true
	return rule
}

// checkCompleteness enforces the MatchRecord invariants for the declared
// status: non-empty identity fields, non-negative scores, and a minute only
// when (and always when) the status calls for one.
func (v *Validator) checkCompleteness(record models.MatchRecord) models.ValidationRule {
	rule := models.ValidationRule{Rule: RuleCompleteness}

	switch {
	case record.ExternalID == "":
		rule.Detail = "missing external_id"
	case record.HomeTeam == "" || record.AwayTeam == "":
		rule.Detail = "missing team name"
	case !models.KnownStatus(record.Status):
		rule.Detail = fmt.Sprintf("unknown status %q", record.Status)
	case record.HomeScore < 0 || record.AwayScore < 0:
		rule.Detail = fmt.Sprintf("negative score %d:%d", record.HomeScore, record.AwayScore)
	case record.Status.InPlay() && record.Minute == nil:
		rule.Detail = fmt.Sprintf("status %q requires a minute", record.Status)
	case !record.Status.HasMinute() && record.Minute != nil:
		rule.Detail = fmt.Sprintf("status %q must not carry a minute", record.Status)
	case record.Minute != nil && (*record.Minute < 0 || *record.Minute > 120):
		rule.Detail = fmt.Sprintf("minute %d out of range", *record.Minute)
	default:
		rule.OK = true
	}

	return rule
}
