package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/webangle/teardown-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT NOT NULL,
	url_key    TEXT PRIMARY KEY,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_expires_at ON analyses(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, urlKey string) (*model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT result, expires_at FROM analyses WHERE url_key = ?`,
		urlKey,
	)

	var resultJSON string
	var expiresAt time.Time
	err := row.Scan(&resultJSON, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get analysis")
	}

	if !expiresAt.After(time.Now().UTC()) {
		// Lazy eviction on read; the expired row behaves as a miss.
		if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE url_key = ?`, urlKey); err != nil {
			return nil, eris.Wrap(err, "sqlite: evict expired analysis")
		}
		return nil, nil
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
	}
	result.Meta.CacheHit = true
	return &result, nil
}

func (s *SQLiteStore) SetAnalysis(ctx context.Context, urlKey string, result *model.AnalysisResult, ttl time.Duration) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, url_key, result, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (url_key) DO UPDATE SET result = excluded.result, created_at = excluded.created_at, expires_at = excluded.expires_at`,
		uuid.New().String(), urlKey, string(resultJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set analysis")
}

func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, urlKey string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE url_key = ?`, urlKey)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: delete analysis")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analyses WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired analyses")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0) FROM analyses`,
		time.Now().UTC(),
	).Scan(&stats.Total, &stats.Expired)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: cache stats")
	}
	return &stats, nil
}
