// Package all imports all available scrapers for side-effect registration.
//
// Import this package from your main to ensure all scrapers are registered:
//
//	import _ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/all"
package all

import (
	_ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/apifootball"
	_ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/espn"
	_ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/footballdata"
	_ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/livescore"
)
