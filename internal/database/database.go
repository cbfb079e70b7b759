package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
	"github.com/rs/zerolog"

	"shareit/internal/config"
	"shareit/internal/models"
)

// DB is the relational store. Queries are written with ? placeholders and
// rebound for PostgreSQL.
type DB struct {
	*sql.DB
	driver string
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// Open connects to the configured driver and applies migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresDB(ctx, cfg.Postgres, logger)
	case config.DriverSQLite, "":
		return NewDB(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDB opens (creating if needed) a SQLite database at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	inMemory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	db := newDB(sqlDB, config.DriverSQLite, path, logger)
	if err := db.init(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	db.logger.Info().Str("path", path).Msg("database initialized")
	return db, nil
}

// NewPostgresDB opens a PostgreSQL database through the pgx stdlib driver.
func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig, logger *zerolog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxConnections)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db := newDB(sqlDB, config.DriverPostgres, "", logger)
	if err := db.init(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	db.logger.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("database initialized")
	return db, nil
}

func newDB(sqlDB *sql.DB, driver, path string, logger *zerolog.Logger) *DB {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "database").Str("driver", driver).Logger()
	}
	return &DB{
		DB:     sqlDB,
		driver: driver,
		path:   path,
		logger: l,
		now:    func() time.Time { return models.Normalize(time.Now()) },
	}
}

func (db *DB) init(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (db *DB) Driver() string { return db.driver }

// Path is the SQLite file path; empty for PostgreSQL.
func (db *DB) Path() string { return db.path }

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.rebind(query), args...)
}

// Tx is a transaction with the same placeholder handling as DB.
type Tx struct {
	*sql.Tx
	db *DB
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.Tx.ExecContext(ctx, tx.db.rebind(query), args...)
}

func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, tx.db.rebind(query), args...)
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(&Tx{Tx: sqlTx, db: db}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) rebind(query string) string {
	if db.driver != config.DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// pageClause renders LIMIT/OFFSET for p. SQLite needs a LIMIT before OFFSET.
func (db *DB) pageClause(p models.Page) (string, []any) {
	switch {
	case p.Bounded():
		return " LIMIT ? OFFSET ?", []any{p.Size, p.From}
	case p.From > 0 && db.driver == config.DriverPostgres:
		return " OFFSET ?", []any{p.From}
	case p.From > 0:
		return " LIMIT -1 OFFSET ?", []any{p.From}
	default:
		return "", nil
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
