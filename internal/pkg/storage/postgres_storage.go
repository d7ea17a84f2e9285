package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Ensure PostgresStorage implements Storage
var _ Storage = (*PostgresStorage)(nil)

// PostgresStorage persists canonical matches and signals in PostgreSQL.
// Canonical matches are upserted by match key so each cycle refreshes the
// current view; signals are append-only history.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(cfg *config.PostgresConfig) (*PostgresStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL storage initialized")
	return storage, nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS live_matches (
		match_key VARCHAR(500) PRIMARY KEY,
		match_name VARCHAR(500) NOT NULL,
		external_id VARCHAR(100) NOT NULL,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		home_score INTEGER NOT NULL,
		away_score INTEGER NOT NULL,
		minute INTEGER,
		status VARCHAR(50) NOT NULL,
		competition VARCHAR(200) NOT NULL,
		venue VARCHAR(200) NOT NULL DEFAULT '',
		source VARCHAR(50) NOT NULL,
		contributing_sources VARCHAR(500) NOT NULL,
		conflict_flags VARCHAR(500) NOT NULL DEFAULT '',
		last_updated TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_live_matches_status ON live_matches(status);
	CREATE INDEX IF NOT EXISTS idx_live_matches_last_updated ON live_matches(last_updated DESC);

	CREATE TABLE IF NOT EXISTS signals (
		id SERIAL PRIMARY KEY,
		match_key VARCHAR(500) NOT NULL,
		signal_type VARCHAR(50) NOT NULL,
		confidence INTEGER NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_signals_match_key ON signals(match_key);
	CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals(created_at DESC);
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *PostgresStorage) StoreCanonicalMatches(ctx context.Context, records []models.CanonicalMatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
	INSERT INTO live_matches (
		match_key, match_name, external_id, home_team, away_team,
		home_score, away_score, minute, status, competition, venue,
		source, contributing_sources, conflict_flags, last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (match_key) DO UPDATE SET
		match_name = EXCLUDED.match_name,
		external_id = EXCLUDED.external_id,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		minute = EXCLUDED.minute,
		status = EXCLUDED.status,
		competition = EXCLUDED.competition,
		venue = EXCLUDED.venue,
		source = EXCLUDED.source,
		contributing_sources = EXCLUDED.contributing_sources,
		conflict_flags = EXCLUDED.conflict_flags,
		last_updated = EXCLUDED.last_updated`

	for _, r := range records {
		var minute sql.NullInt64
		if r.Best.Minute != nil {
			minute = sql.NullInt64{Int64: int64(*r.Best.Minute), Valid: true}
		}
		_, err := s.db.ExecContext(ctx, query,
			r.MatchKey, r.MatchName, r.Best.ExternalID, r.Best.HomeTeam, r.Best.AwayTeam,
			r.Best.HomeScore, r.Best.AwayScore, minute, string(r.Best.Status),
			r.Best.Competition, r.Best.Venue, string(r.Best.Source),
			joinSources(r.ContributingSources), strings.Join(r.ConflictFlags, ","),
			r.LastUpdated)
		if err != nil {
			return fmt.Errorf("upsert match %s: %w", r.MatchKey, err)
		}
	}
	return nil
}

func (s *PostgresStorage) StoreSignals(ctx context.Context, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	query := `
	INSERT INTO signals (match_key, signal_type, confidence, message)
	VALUES ($1, $2, $3, $4)`

	for _, sig := range signals {
		if _, err := s.db.ExecContext(ctx, query,
			sig.MatchKey, string(sig.Type), sig.Confidence, sig.Message); err != nil {
			return fmt.Errorf("insert signal for %s: %w", sig.MatchKey, err)
		}
	}
	return nil
}

func (s *PostgresStorage) GetRecentMatches(ctx context.Context, limit int) ([]models.CanonicalMatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT match_key, match_name, external_id, home_team, away_team,
	       home_score, away_score, minute, status, competition, venue,
	       source, contributing_sources, conflict_flags, last_updated
	FROM live_matches
	ORDER BY last_updated DESC
	LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	defer rows.Close()

	var out []models.CanonicalMatchRecord
	for rows.Next() {
		var (
			r       models.CanonicalMatchRecord
			minute  sql.NullInt64
			status  string
			source  string
			sources string
			flags   string
		)
		if err := rows.Scan(&r.MatchKey, &r.MatchName, &r.Best.ExternalID,
			&r.Best.HomeTeam, &r.Best.AwayTeam, &r.Best.HomeScore, &r.Best.AwayScore,
			&minute, &status, &r.Best.Competition, &r.Best.Venue, &source,
			&sources, &flags, &r.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		if minute.Valid {
			m := int(minute.Int64)
			r.Best.Minute = &m
		}
		r.Best.Status = models.MatchStatus(status)
		r.Best.Source = models.Source(source)
		r.Best.ObservedAt = r.LastUpdated
		r.ContributingSources = splitSources(sources)
		if flags != "" {
			r.ConflictFlags = strings.Split(flags, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func joinSources(sources []models.Source) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func splitSources(s string) []models.Source {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]models.Source, len(parts))
	for i, p := range parts {
		out[i] = models.Source(p)
	}
	return out
}
