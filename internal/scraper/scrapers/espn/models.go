package espn

// Subset of the ESPN scoreboard payload this adapter reads.

type scoreboardResponse struct {
	Leagues []scoreboardLeague `json:"leagues"`
	Events  []event            `json:"events"`
}

type scoreboardLeague struct {
	Name string `json:"name"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Status       eventStatus   `json:"status"`
	Competitions []competition `json:"competitions"`
}

type eventStatus struct {
	DisplayClock string          `json:"displayClock"`
	Type         eventStatusType `json:"type"`
}

type eventStatusType struct {
	Name string `json:"name"`
}

type competition struct {
	Venue       *venue       `json:"venue"`
	Competitors []competitor `json:"competitors"`
}

type venue struct {
	FullName string `json:"fullName"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     team   `json:"team"`
}

type team struct {
	DisplayName string `json:"displayName"`
}
