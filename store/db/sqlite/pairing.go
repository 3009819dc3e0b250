package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/store"
)

// CreatePairing creates a new pairing entry.
func (d *DB) CreatePairing(ctx context.Context, create *store.CreatePairing) (*store.Pairing, error) {
	now := time.Now().Unix()

	stmt := `
		INSERT INTO pairing (name, key_hash, created_ts)
		VALUES (?, ?, ?)
		RETURNING id, name, key_hash, created_ts, last_seen_ts
	`
	var pairing store.Pairing
	err := d.db.QueryRowContext(ctx, stmt, create.Name, create.KeyHash, now).Scan(
		&pairing.ID,
		&pairing.Name,
		&pairing.KeyHash,
		&pairing.CreatedTs,
		&pairing.LastSeenTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pairing")
	}
	return &pairing, nil
}

// GetPairing returns a pairing by ID or name, or nil when none matches.
func (d *DB) GetPairing(ctx context.Context, find *store.FindPairing) (*store.Pairing, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Name != nil {
		where, args = append(where, "name = ?"), append(args, *find.Name)
	}
	if len(where) == 1 {
		return nil, errors.New("pairing id or name required")
	}

	query := `SELECT id, name, key_hash, created_ts, last_seen_ts FROM pairing WHERE ` + where[0]
	for _, condition := range where[1:] {
		query += " AND " + condition
	}

	var pairing store.Pairing
	err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&pairing.ID,
		&pairing.Name,
		&pairing.KeyHash,
		&pairing.CreatedTs,
		&pairing.LastSeenTs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pairing")
	}
	return &pairing, nil
}

// ListPairings lists pairing entries.
func (d *DB) ListPairings(ctx context.Context, find *store.FindPairing) ([]*store.Pairing, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Name != nil {
		where, args = append(where, "name = ?"), append(args, *find.Name)
	}

	query := `SELECT id, name, key_hash, created_ts, last_seen_ts FROM pairing WHERE ` + where[0]
	for _, condition := range where[1:] {
		query += " AND " + condition
	}
	query += " ORDER BY created_ts ASC"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pairings")
	}
	defer rows.Close()

	var pairings []*store.Pairing
	for rows.Next() {
		var pairing store.Pairing
		err := rows.Scan(
			&pairing.ID,
			&pairing.Name,
			&pairing.KeyHash,
			&pairing.CreatedTs,
			&pairing.LastSeenTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan pairing")
		}
		pairings = append(pairings, &pairing)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pairings, nil
}

// UpdatePairingLastSeen records when a pairing last authenticated.
func (d *DB) UpdatePairingLastSeen(ctx context.Context, id int32, lastSeenTs int64) error {
	stmt := `UPDATE pairing SET last_seen_ts = ? WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, lastSeenTs, id); err != nil {
		return errors.Wrap(err, "failed to update pairing last seen")
	}
	return nil
}

// DeletePairing deletes a pairing entry.
func (d *DB) DeletePairing(ctx context.Context, delete *store.DeletePairing) error {
	stmt := `DELETE FROM pairing WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete pairing")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
