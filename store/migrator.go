package store

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/internal/version"
)

// Migrate ensures the database schema is up to date.
//
// A fresh database gets the latest schema in one shot and is stamped with
// the current version. An existing database has its stamp compared at minor
// version granularity; incremental DDL lands here once a release needs it.
func (s *Store) Migrate(ctx context.Context) error {
	currentVersion := version.GetCurrentVersion(s.profile.Mode)

	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	if !initialized {
		if err := s.driver.ApplyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if _, err := s.driver.UpsertMigrationHistory(ctx, &UpsertMigrationHistory{
			Version: currentVersion,
		}); err != nil {
			return errors.Wrap(err, "failed to record initial migration history")
		}
		slog.Info("database initialized", slog.String("version", currentVersion))
		return nil
	}

	histories, err := s.driver.FindMigrationHistoryList(ctx, &FindMigrationHistory{})
	if err != nil {
		return errors.Wrap(err, "failed to find migration history")
	}
	if len(histories) == 0 {
		// Schema exists but was never stamped, e.g. a database created by a
		// pre-release build. Stamp it now.
		_, err := s.driver.UpsertMigrationHistory(ctx, &UpsertMigrationHistory{Version: currentVersion})
		return errors.Wrap(err, "failed to record migration history")
	}

	versions := make([]string, 0, len(histories))
	for _, history := range histories {
		versions = append(versions, history.Version)
	}
	sort.Sort(version.SortVersion(versions))
	latest := versions[len(versions)-1]

	// Schema only changes between minor versions; patch releases share it.
	if version.IsVersionGreaterThan(version.GetMinorVersion(currentVersion), version.GetMinorVersion(latest)) {
		if _, err := s.driver.UpsertMigrationHistory(ctx, &UpsertMigrationHistory{Version: currentVersion}); err != nil {
			return errors.Wrap(err, "failed to record migration history")
		}
		slog.Info("database schema stamped", slog.String("from", latest), slog.String("to", currentVersion))
	}

	return nil
}
