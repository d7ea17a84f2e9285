package footballdata

// Subset of the Football-Data.org v4 /matches payload this adapter reads.

type matchesResponse struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64       `json:"id"`
	UTCDate     string      `json:"utcDate"`
	Status      string      `json:"status"`
	Minute      *int        `json:"minute"`
	Venue       string      `json:"venue"`
	Competition competition `json:"competition"`
	HomeTeam    teamRef     `json:"homeTeam"`
	AwayTeam    teamRef     `json:"awayTeam"`
	Score       score       `json:"score"`
}

type competition struct {
	Name string `json:"name"`
}

type teamRef struct {
	Name string `json:"name"`
}

type score struct {
	FullTime scorePair `json:"fullTime"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
