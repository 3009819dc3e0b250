package store

// MigrationHistory records a schema version this database has been stamped
// with.
type MigrationHistory struct {
	Version   string
	CreatedTs int64
}

// FindMigrationHistory specifies the conditions for finding migration history.
type FindMigrationHistory struct {
}

// UpsertMigrationHistory specifies the data for upserting migration history.
type UpsertMigrationHistory struct {
	Version string
}
