package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is written once with {{int}} and {{float}} placeholders so both
// dialects share one table definition.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS wallets (
		user_id TEXT PRIMARY KEY,
		coins {{int}} NOT NULL DEFAULT 0,
		gold {{int}} NOT NULL DEFAULT 0,
		diamonds {{int}} NOT NULL DEFAULT 0,
		updated_at {{int}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wallet_events (
		id TEXT PRIMARY KEY,
		sequence {{int}} NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		ref TEXT NOT NULL,
		coins {{int}} NOT NULL DEFAULT 0,
		gold {{int}} NOT NULL DEFAULT 0,
		diamonds {{int}} NOT NULL DEFAULT 0,
		balance_coins {{int}} NOT NULL DEFAULT 0,
		balance_gold {{int}} NOT NULL DEFAULT 0,
		balance_diamonds {{int}} NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT '',
		created_at {{int}} NOT NULL,
		UNIQUE (user_id, kind, ref)
	)`,
	`CREATE INDEX IF NOT EXISTS wallet_events_user_sequence ON wallet_events (user_id, sequence)`,
	`CREATE TABLE IF NOT EXISTS economy_settings (
		key TEXT PRIMARY KEY,
		value {{float}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val {{int}} NOT NULL DEFAULT 1
	)`,
	`INSERT INTO global_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`,
}

func migrate(ctx context.Context, db *sql.DB, driver Driver) error {
	types := strings.NewReplacer("{{int}}", "INTEGER", "{{float}}", "REAL")
	if driver == Postgres {
		types = strings.NewReplacer("{{int}}", "BIGINT", "{{float}}", "DOUBLE PRECISION")
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
