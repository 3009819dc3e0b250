package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/store"
)

func (d *DB) FindMigrationHistoryList(ctx context.Context, _ *store.FindMigrationHistory) ([]*store.MigrationHistory, error) {
	query := `SELECT version, created_ts FROM migration_history ORDER BY created_ts DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list migration history")
	}
	defer rows.Close()

	var histories []*store.MigrationHistory
	for rows.Next() {
		var history store.MigrationHistory
		if err := rows.Scan(&history.Version, &history.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan migration history")
		}
		histories = append(histories, &history)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return histories, nil
}

func (d *DB) UpsertMigrationHistory(ctx context.Context, upsert *store.UpsertMigrationHistory) (*store.MigrationHistory, error) {
	stmt := `INSERT INTO migration_history (version)
		VALUES (` + placeholder(1) + `)
		ON CONFLICT (version) DO UPDATE SET version = EXCLUDED.version
		RETURNING version, created_ts`

	var history store.MigrationHistory
	if err := d.db.QueryRowContext(ctx, stmt, upsert.Version).Scan(&history.Version, &history.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to upsert migration history")
	}
	return &history, nil
}
