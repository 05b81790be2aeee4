package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the optional persistence collaborator: PMC series and athlete
// profile history, kept thin per SPEC_FULL.md §3 ("again the thin,
// explicitly out-of-scope persistence engine, not the metric core").
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and runs
// migrations. Pass "" to use the default location under the user's home
// directory.
func Open(path string) (*DB, error) {
	if path == "" {
		p, err := defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("store: resolving default db path: %w", err)
		}
		path = p
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: creating data directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("store: enabling foreign keys: %w", err)
	}

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}

	return &DB{db: sqlDB}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error { return d.db.Close() }

func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trainload", "data.db"), nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS athlete_profile (
			id TEXT PRIMARY KEY,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS threshold_history (
			athlete_id TEXT NOT NULL REFERENCES athlete_profile(id),
			metric TEXT NOT NULL,
			effective_from TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (athlete_id, metric, effective_from)
		)`,
		`CREATE TABLE IF NOT EXISTS pmc_point (
			athlete_id TEXT NOT NULL REFERENCES athlete_profile(id),
			date TEXT NOT NULL,
			ctl TEXT NOT NULL,
			atl TEXT NOT NULL,
			tsb TEXT NOT NULL,
			PRIMARY KEY (athlete_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS session_summary (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL REFERENCES athlete_profile(id),
			date TEXT NOT NULL,
			sport TEXT NOT NULL,
			duration_s INTEGER NOT NULL,
			tss TEXT,
			np TEXT,
			if_value TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration %q: %w", stmt, err)
		}
	}
	return nil
}
