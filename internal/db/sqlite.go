package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens or creates the SQLite database at path, enables WAL and applies
// the schema. Parent directories are created if they do not exist.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := initSchema(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return sqlDB, nil
}

func initSchema(sqlDB *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		one_liner TEXT NOT NULL DEFAULT '',
		long_description TEXT NOT NULL DEFAULT '',
		batch TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		stage TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT '',
		industries TEXT NOT NULL DEFAULT '[]',
		regions TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		launched_at INTEGER,
		team_size INTEGER,
		is_hiring INTEGER NOT NULL DEFAULT 0,
		nonprofit INTEGER NOT NULL DEFAULT 0,
		top_company INTEGER NOT NULL DEFAULT 0,
		search_text TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_companies_batch ON companies(batch);
	CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
	CREATE INDEX IF NOT EXISTS idx_companies_launched_at ON companies(launched_at);

	CREATE TABLE IF NOT EXISTS embeddings (
		company_id INTEGER PRIMARY KEY,
		vector TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS pages (
		company_id INTEGER PRIMARY KEY,
		url TEXT NOT NULL DEFAULT '',
		markdown TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
	);
	`
	_, err := sqlDB.Exec(schema)
	return err
}
