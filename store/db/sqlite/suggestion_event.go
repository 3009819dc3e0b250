package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/store"
)

// CreateSuggestionEvent records a suggestion handed to a client.
func (d *DB) CreateSuggestionEvent(ctx context.Context, create *store.SuggestionEvent) (*store.SuggestionEvent, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO suggestion_event (user_key, session_id, source_tool, target_tool, theme_count, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := d.db.QueryRowContext(ctx, stmt,
		create.UserKey,
		create.SessionID,
		create.SourceTool,
		create.TargetTool,
		create.ThemeCount,
		create.CreatedTs,
	).Scan(&create.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create suggestion event")
	}
	return create, nil
}

func suggestionEventFilter(find *store.FindSuggestionEvent) (string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserKey != nil {
		where, args = append(where, "user_key = ?"), append(args, *find.UserKey)
	}
	if find.SourceTool != nil {
		where, args = append(where, "source_tool = ?"), append(args, *find.SourceTool)
	}
	if find.TargetTool != nil {
		where, args = append(where, "target_tool = ?"), append(args, *find.TargetTool)
	}
	if find.Accepted != nil {
		where, args = append(where, "accepted = ?"), append(args, *find.Accepted)
	}
	if find.Since != nil {
		where, args = append(where, "created_ts >= ?"), append(args, *find.Since)
	}

	clause := where[0]
	for _, condition := range where[1:] {
		clause += " AND " + condition
	}
	return clause, args
}

// ListSuggestionEvents lists suggestion events, newest first.
func (d *DB) ListSuggestionEvents(ctx context.Context, find *store.FindSuggestionEvent) ([]*store.SuggestionEvent, error) {
	clause, args := suggestionEventFilter(find)

	query := `SELECT id, user_key, session_id, source_tool, target_tool, theme_count, accepted, created_ts
		FROM suggestion_event
		WHERE ` + clause + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}
	if find.Offset != nil {
		query += " OFFSET ?"
		args = append(args, *find.Offset)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list suggestion events")
	}
	defer rows.Close()

	var events []*store.SuggestionEvent
	for rows.Next() {
		var event store.SuggestionEvent
		err := rows.Scan(
			&event.ID,
			&event.UserKey,
			&event.SessionID,
			&event.SourceTool,
			&event.TargetTool,
			&event.ThemeCount,
			&event.Accepted,
			&event.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan suggestion event")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// AcceptSuggestionEvent marks an event accepted if it belongs to the
// given user. Returns nil when no row matches.
func (d *DB) AcceptSuggestionEvent(ctx context.Context, accept *store.AcceptSuggestionEvent) (*store.SuggestionEvent, error) {
	stmt := `
		UPDATE suggestion_event
		SET accepted = 1
		WHERE id = ? AND user_key = ?
		RETURNING id, user_key, session_id, source_tool, target_tool, theme_count, accepted, created_ts
	`
	var event store.SuggestionEvent
	err := d.db.QueryRowContext(ctx, stmt, accept.ID, accept.UserKey).Scan(
		&event.ID,
		&event.UserKey,
		&event.SessionID,
		&event.SourceTool,
		&event.TargetTool,
		&event.ThemeCount,
		&event.Accepted,
		&event.CreatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to accept suggestion event")
	}
	return &event, nil
}

// CountSuggestionEvents counts suggestion events matching the filter.
func (d *DB) CountSuggestionEvents(ctx context.Context, find *store.FindSuggestionEvent) (int64, error) {
	clause, args := suggestionEventFilter(find)

	query := `SELECT COUNT(*) FROM suggestion_event WHERE ` + clause

	var count int64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count suggestion events")
	}
	return count, nil
}

// DeleteSuggestionEvents removes all suggestion events for a user.
func (d *DB) DeleteSuggestionEvents(ctx context.Context, delete *store.DeleteSuggestionEvent) error {
	stmt := `DELETE FROM suggestion_event WHERE user_key = ?`
	if _, err := d.db.ExecContext(ctx, stmt, delete.UserKey); err != nil {
		return errors.Wrap(err, "failed to delete suggestion events")
	}
	return nil
}
