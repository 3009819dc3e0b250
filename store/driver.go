package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	ApplyLatestSchema(ctx context.Context) error

	FindMigrationHistoryList(ctx context.Context, find *FindMigrationHistory) ([]*MigrationHistory, error)
	UpsertMigrationHistory(ctx context.Context, upsert *UpsertMigrationHistory) (*MigrationHistory, error)

	UpsertInnerProfile(ctx context.Context, upsert *UpsertInnerProfile) (*InnerProfile, error)
	GetInnerProfile(ctx context.Context, find *FindInnerProfile) (*InnerProfile, error)
	DeleteInnerProfile(ctx context.Context, delete *DeleteInnerProfile) error

	CreatePairing(ctx context.Context, create *CreatePairing) (*Pairing, error)
	GetPairing(ctx context.Context, find *FindPairing) (*Pairing, error)
	ListPairings(ctx context.Context, find *FindPairing) ([]*Pairing, error)
	UpdatePairingLastSeen(ctx context.Context, id int32, lastSeenTs int64) error
	DeletePairing(ctx context.Context, delete *DeletePairing) error

	CreateSuggestionEvent(ctx context.Context, create *SuggestionEvent) (*SuggestionEvent, error)
	AcceptSuggestionEvent(ctx context.Context, accept *AcceptSuggestionEvent) (*SuggestionEvent, error)
	ListSuggestionEvents(ctx context.Context, find *FindSuggestionEvent) ([]*SuggestionEvent, error)
	CountSuggestionEvents(ctx context.Context, find *FindSuggestionEvent) (int64, error)
	DeleteSuggestionEvents(ctx context.Context, delete *DeleteSuggestionEvent) error
}
