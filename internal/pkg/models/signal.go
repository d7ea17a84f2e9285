package models

// SignalType is the betting market a signal refers to.
type SignalType string

const (
	SignalCorners        SignalType = "corners"
	SignalCards          SignalType = "cards"
	SignalBothTeamsScore SignalType = "both_teams_score"
)

// Signal is a betting recommendation produced by the analysis collaborator.
// Confidence is on a 1-10 scale; the ranking pipeline enforces thresholds,
// the signal itself carries no policy.
type Signal struct {
	MatchKey   string     `json:"match_key"`
	Type       SignalType `json:"signal_type"`
	Confidence int        `json:"confidence"`
	Message    string     `json:"message"`
}

// ValidationRule names one authenticity rule outcome.
type ValidationRule struct {
	Rule   string `json:"rule"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// ValidationResult is the immutable outcome of scoring one record against
// the authenticity rules.
type ValidationResult struct {
	Record  MatchRecord      `json:"record"`
	Score   int              `json:"score"`
	Passed  bool             `json:"passed"`
	Reasons []ValidationRule `json:"reasons"`
}
