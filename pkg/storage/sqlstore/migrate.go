package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

func schema(d Dialect) []string {
	ts := d.timestampType()
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	provider      TEXT NOT NULL DEFAULT 'local',
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	federated_id  TEXT UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	avatar_url    TEXT NOT NULL DEFAULT '',
	created_at    %[1]s NOT NULL,
	updated_at    %[1]s NOT NULL
)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	date        %[1]s NOT NULL,
	venue       TEXT NOT NULL DEFAULT '',
	price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	image       TEXT NOT NULL DEFAULT '',
	created_at  %[1]s NOT NULL,
	updated_at  %[1]s NOT NULL
)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bookings (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	created_at %[1]s NOT NULL,
	UNIQUE (user_id, event_id)
)`, ts),
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events (date)`,
	}
}

// Migrate creates the schema if it does not exist. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for i, stmt := range schema(d) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
