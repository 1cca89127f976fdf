package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver names a supported database backend.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

// ParseDriver accepts the driver names used in flags and env vars.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

func (d Driver) sqlName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Driver) dialect() string {
	if d == Postgres {
		return dialect.Postgres
	}
	return dialect.SQLite
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db     *sql.DB
	driver Driver
	seq    *sequenceCounter
	now    func() time.Time
}

// Open connects to dsn with the given driver, applies the SQLite pragmas
// when relevant and creates the schema.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	if driver != SQLite && driver != Postgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver.sqlName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == SQLite {
		// One connection keeps pragmas applied and serializes writers.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{
		db:     db,
		driver: driver,
		seq:    &sequenceCounter{},
		now:    time.Now,
	}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver reports the backend the store was opened with.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WalletRepo returns a WalletRepo backed by this store.
func (s *Store) WalletRepo() WalletRepo {
	return &walletRepo{s: s}
}

// SettingsRepo returns a SettingsRepo backed by this store.
func (s *Store) SettingsRepo() SettingsRepo {
	return &settingsRepo{s: s}
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.driver.dialect())
}

// desc renders "<column> DESC" quoted for the store's dialect.
func (s *Store) desc(column string) string {
	return s.builder().String(func(b *entsql.Builder) {
		b.Ident(column).WriteString(" DESC")
	})
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. NALANDA_DB environment variable
// 2. $XDG_DATA_HOME/nalanda/nalanda.db
// 3. ~/.local/share/nalanda/nalanda.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("NALANDA_DB"); p != "" {
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

	p := filepath.Join(dataHome, "nalanda", "nalanda.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
