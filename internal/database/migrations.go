package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/config"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// Column types differ per dialect; {{pk}} and {{ts}} are substituted at apply time.
var migrations = []migration{
	{
		version: 1,
		name:    "users",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id {{pk}},
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				created_at {{ts}} NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		},
	},
	{
		version: 2,
		name:    "requests",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS requests (
				id {{pk}},
				description TEXT NOT NULL,
				requester_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created {{ts}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests(requester_id)`,
		},
	},
	{
		version: 3,
		name:    "items",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS items (
				id {{pk}},
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				available BOOLEAN NOT NULL,
				owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				request_id BIGINT REFERENCES requests(id) ON DELETE SET NULL,
				created_at {{ts}} NOT NULL,
				updated_at {{ts}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id)`,
			`CREATE INDEX IF NOT EXISTS idx_items_request ON items(request_id)`,
		},
	},
	{
		version: 4,
		name:    "bookings",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS bookings (
				id {{pk}},
				start_at {{ts}} NOT NULL,
				end_at {{ts}} NOT NULL,
				status TEXT NOT NULL,
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				booker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at {{ts}} NOT NULL,
				updated_at {{ts}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_item ON bookings(item_id, start_at)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_booker ON bookings(booker_id, start_at)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		},
	},
	{
		version: 5,
		name:    "comments",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS comments (
				id {{pk}},
				text TEXT NOT NULL,
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created {{ts}} NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id, created)`,
		},
	},
	{
		version: 6,
		name:    "outbox",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS outbox (
				id {{pk}},
				event_id TEXT NOT NULL,
				event_type TEXT NOT NULL,
				aggregate_id BIGINT NOT NULL,
				payload TEXT NOT NULL,
				status TEXT NOT NULL,
				retry_count INTEGER NOT NULL DEFAULT 0,
				last_error TEXT,
				created_at {{ts}} NOT NULL,
				processed_at {{ts}},
				next_retry_at {{ts}}
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_outbox_event_id ON outbox(event_id)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, next_retry_at)`,
		},
	},
}

// Migrate applies pending migrations in order and records them in schema_migrations.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, db.dialect(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at {{ts}} NOT NULL
	)`)); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := db.WithTx(ctx, func(tx *Tx) error {
			for _, stmt := range m.stmts {
				if _, err := tx.ExecContext(ctx, db.dialect(stmt)); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, db.now())
			return err
		})
		if err != nil {
			return err
		}
		db.logger.Info().Int("version", m.version).Str("name", m.name).Msg("migration applied")
	}
	return nil
}

// SchemaVersion reports the highest applied migration.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}

func (db *DB) dialect(stmt string) string {
	pk, ts := "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	if db.driver == config.DriverPostgres {
		pk, ts = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}
	return strings.NewReplacer("{{pk}}", pk, "{{ts}}", ts).Replace(stmt)
}
