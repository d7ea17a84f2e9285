package livescore

// Subset of the Next.js state blob embedded in the LiveScore page.

type nextData struct {
	Props props `json:"props"`
}

type props struct {
	PageProps pageProps `json:"pageProps"`
}

type pageProps struct {
	InitialData initialData `json:"initialData"`
}

type initialData struct {
	Stages []stage `json:"Stages"`
}

type stage struct {
	CompetitionName string      `json:"Snm"`
	CountryName     string      `json:"Cnm"`
	Events          []eventItem `json:"Events"`
}

type eventItem struct {
	ID        string    `json:"Eid"`
	HomeTeams []teamRef `json:"T1"`
	AwayTeams []teamRef `json:"T2"`
	HomeScore string    `json:"Tr1"`
	AwayScore string    `json:"Tr2"`
	Progress  string    `json:"Eps"`
}

type teamRef struct {
	Name string `json:"Nm"`
}
