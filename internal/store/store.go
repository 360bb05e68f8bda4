package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and hands out repositories bound to it.
type Store struct {
	db *sql.DB
	repos
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, repos: repos{c: db}}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction. The Repos passed to fn are bound to
// the transaction; fn's error rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(repos{c: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// conn is satisfied by both *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repos implements Repos on top of a conn.
type repos struct {
	c conn
}

func (r repos) CatalogRepo() CatalogRepo   { return &catalogRepo{c: r.c} }
func (r repos) UserRepo() UserRepo         { return &userRepo{c: r.c} }
func (r repos) ProgressRepo() ProgressRepo { return &progressRepo{c: r.c} }
func (r repos) HistoryRepo() HistoryRepo   { return &historyRepo{c: r.c} }
func (r repos) SettingsRepo() SettingsRepo { return &settingsRepo{c: r.c} }
func (r repos) MockRepo() MockRepo         { return &mockRepo{c: r.c} }

// builder returns a SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// querier is implemented by every ent SQL builder.
type querier interface {
	Query() (string, []any)
}

func exec(ctx context.Context, c conn, q querier) (sql.Result, error) {
	stmt, args := q.Query()
	return c.ExecContext(ctx, stmt, args...)
}

func query(ctx context.Context, c conn, q querier) (*sql.Rows, error) {
	stmt, args := q.Query()
	return c.QueryContext(ctx, stmt, args...)
}

func queryRow(ctx context.Context, c conn, q querier) *sql.Row {
	stmt, args := q.Query()
	return c.QueryRowContext(ctx, stmt, args...)
}

// applyPragmas configures SQLite for a single-writer workload.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. KAKOMON_DB environment variable
// 2. $XDG_DATA_HOME/kakomon/kakomon.db
// 3. ~/.local/share/kakomon/kakomon.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("KAKOMON_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "kakomon", "kakomon.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
