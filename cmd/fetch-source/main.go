package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/scraper/scrapers"

	_ "github.com/projetoswmfa/football-api/internal/scraper/scrapers/all"
)

func main() {
	configPath := flag.String("config", "configs/production.yaml", "Path to config file")
	source := flag.String("source", "espn", "Source to fetch (espn, football_data, api_football, live_score)")
	query := flag.String("query", "live", "Query kind: live or today")
	outputFile := flag.String("output", "", "Output JSON file (default: stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	factory, ok := scrapers.FactoryByName(*source)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown source %q (available: %v)\n", *source, scrapers.AvailableNames())
		os.Exit(1)
	}
	scraper := factory(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Fetching %s (%s)...\n", *source, *query)

	var result scrapers.Result
	switch *query {
	case "live":
		result, err = scraper.FetchLive(ctx)
	case "today":
		result, err = scraper.FetchToday(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown query kind %q (expected live or today)\n", *query)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}

	prettyJSON, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Println(string(prettyJSON))
	} else if err := os.WriteFile(*outputFile, prettyJSON, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write file: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Success: %d records, %d dropped\n", len(result.Records), result.Dropped)
}
