package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/store"
)

// UpsertInnerProfile inserts or replaces the stored profile for a user.
func (d *DB) UpsertInnerProfile(ctx context.Context, upsert *store.UpsertInnerProfile) (*store.InnerProfile, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO inner_profile (user_key, payload, created_ts, updated_ts)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `)
		ON CONFLICT (user_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_key, payload, created_ts, updated_ts`

	var innerProfile store.InnerProfile
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserKey,
		upsert.Payload,
		now,
		now,
	).Scan(
		&innerProfile.UserKey,
		&innerProfile.Payload,
		&innerProfile.CreatedTs,
		&innerProfile.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert inner profile")
	}
	return &innerProfile, nil
}

// GetInnerProfile returns the stored profile, or nil when the user has none.
func (d *DB) GetInnerProfile(ctx context.Context, find *store.FindInnerProfile) (*store.InnerProfile, error) {
	if find.UserKey == nil {
		return nil, errors.New("user key required")
	}

	query := `SELECT user_key, payload, created_ts, updated_ts FROM inner_profile WHERE user_key = ` + placeholder(1)

	var innerProfile store.InnerProfile
	err := d.db.QueryRowContext(ctx, query, *find.UserKey).Scan(
		&innerProfile.UserKey,
		&innerProfile.Payload,
		&innerProfile.CreatedTs,
		&innerProfile.UpdatedTs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get inner profile")
	}
	return &innerProfile, nil
}

// DeleteInnerProfile removes the stored profile for a user. Deleting a user
// that has no profile is not an error.
func (d *DB) DeleteInnerProfile(ctx context.Context, delete *store.DeleteInnerProfile) error {
	stmt := `DELETE FROM inner_profile WHERE user_key = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.UserKey); err != nil {
		return errors.Wrap(err, "failed to delete inner profile")
	}
	return nil
}
