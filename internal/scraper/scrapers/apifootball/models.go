package apifootball

// Subset of the API-Football v3 /fixtures payload this adapter reads.

type fixturesResponse struct {
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture fixture   `json:"fixture"`
	League  league    `json:"league"`
	Teams   teamsPair `json:"teams"`
	Goals   goals     `json:"goals"`
}

type fixture struct {
	ID     int64         `json:"id"`
	Date   string        `json:"date"`
	Status fixtureStatus `json:"status"`
	Venue  fixtureVenue  `json:"venue"`
}

type fixtureStatus struct {
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

type fixtureVenue struct {
	Name string `json:"name"`
}

type league struct {
	Name string `json:"name"`
}

type teamsPair struct {
	Home teamRef `json:"home"`
	Away teamRef `json:"away"`
}

type teamRef struct {
	Name string `json:"name"`
}

type goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
