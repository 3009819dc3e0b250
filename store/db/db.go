// Package db exposes the supported database driver implementations behind a
// single constructor.
package db

import (
	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/store"
	"github.com/hisr2024/MindVibe-sub009/store/db/postgres"
	"github.com/hisr2024/MindVibe-sub009/store/db/sqlite"
)

// NewDBDriver creates a store driver based on the profile's database driver
// setting.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
