package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL database using the DSN from the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	// Ensure a DSN is set before attempting to open the database.
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	postgresDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// Modest pool settings; this service runs a handful of handlers, not a
	// fleet of workers.
	postgresDB.SetMaxOpenConns(10)
	postgresDB.SetMaxIdleConns(5)
	postgresDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := postgresDB.PingContext(ctx); err != nil {
		_ = postgresDB.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	driver := DB{db: postgresDB, profile: profile}

	return &driver, nil
}

// placeholder returns the positional parameter marker for PostgreSQL.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	// Check if the database is initialized by checking if the inner_profile table exists.
	var exists bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = 'inner_profile')").Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}

// latestSchema is the complete schema for a fresh database.
const latestSchema = `
CREATE TABLE IF NOT EXISTS migration_history (
	version TEXT NOT NULL PRIMARY KEY,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE TABLE IF NOT EXISTS inner_profile (
	user_key TEXT NOT NULL PRIMARY KEY,
	payload TEXT NOT NULL DEFAULT '{}',
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE TABLE IF NOT EXISTS pairing (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	key_hash TEXT NOT NULL,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	last_seen_ts BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS suggestion_event (
	id BIGSERIAL PRIMARY KEY,
	user_key TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	source_tool TEXT NOT NULL,
	target_tool TEXT NOT NULL,
	theme_count INTEGER NOT NULL DEFAULT 0,
	accepted BOOLEAN NOT NULL DEFAULT FALSE,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
);

CREATE INDEX IF NOT EXISTS idx_suggestion_event_user_key ON suggestion_event (user_key);
CREATE INDEX IF NOT EXISTS idx_suggestion_event_created_ts ON suggestion_event (created_ts);
`

func (d *DB) ApplyLatestSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	return nil
}
