package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names the SQL engine behind a ledger connection.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// Config holds the Postgres connection settings.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// NewPostgresDB opens and pings a Postgres pool.
func NewPostgresDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(string(Postgres), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// NewSQLiteDB opens a sqlite ledger file; ":memory:" keeps it in memory.
func NewSQLiteDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(SQLite), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return db, nil
}

var schema = map[Dialect][]string{
	Postgres: {
		`CREATE TABLE IF NOT EXISTS output_files (
			id BIGSERIAL PRIMARY KEY,
			project TEXT NOT NULL,
			batch INTEGER NOT NULL,
			file_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			path TEXT NOT NULL,
			encrypted_path TEXT NOT NULL DEFAULT '',
			split_by TEXT NOT NULL DEFAULT '',
			split_value TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (project, filename)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_output_files_project ON output_files(project)`,
	},
	SQLite: {
		`CREATE TABLE IF NOT EXISTS output_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			batch INTEGER NOT NULL,
			file_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			path TEXT NOT NULL,
			encrypted_path TEXT NOT NULL DEFAULT '',
			split_by TEXT NOT NULL DEFAULT '',
			split_value TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (project, filename)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_output_files_project ON output_files(project)`,
	},
}

// Migrate creates the ledger schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := schema[dialect]
	if !ok {
		return fmt.Errorf("migrate: unknown dialect %q", dialect)
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
