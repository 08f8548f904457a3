package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/wonny/stocksignal/pkg/logger"
)

// Store is the SQLite-backed price store
// ⭐ SSOT: 로컬 SQLite 저장소
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	path   string
}

// Open opens (or creates) the database at path and migrates the schema.
// ":memory:" is accepted for throwaway stores.
func Open(ctx context.Context, path string, log *logger.Logger) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer, one connection reused for the whole run
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	s := &Store{
		db:     db,
		logger: log.WithField("module", "store.sqlite"),
		path:   path,
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.logger.WithField("path", path).Debug("sqlite store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_prices (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL,
			market     TEXT NOT NULL,
			date       TEXT NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     INTEGER,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(code, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_prices_code_date ON stock_prices(code, date DESC)`,

		`CREATE TABLE IF NOT EXISTS evaluations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL,
			date       TEXT NOT NULL,
			evaluator  TEXT NOT NULL,
			score      REAL,
			details    TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(code, date, evaluator)
		)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			market     TEXT NOT NULL,
			date       TEXT NOT NULL,
			content    TEXT,
			format     TEXT NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(market, date, format)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close releases the database handle
func (s *Store) Close() error {
	s.logger.Debug("closing sqlite store")
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}
