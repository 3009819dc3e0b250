package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/store"
	"github.com/hisr2024/MindVibe-sub009/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	testProfile := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "mindvibe_test.db"),
	}

	driver, err := sqlite.NewDB(testProfile)
	require.NoError(t, err)

	testStore := store.New(driver, testProfile)
	require.NoError(t, testStore.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = testStore.Close()
	})
	return testStore
}

func stringPtr(s string) *string { return &s }

func TestStoreInnerProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	got, err := testStore.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	assert.Nil(t, got, "unknown user should yield nil, not an error")

	stored, err := testStore.UpsertInnerProfile(ctx, &store.UpsertInnerProfile{
		UserKey: "user-a",
		Payload: `{"sessionCount":1}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-a", stored.UserKey)
	assert.Greater(t, stored.CreatedTs, int64(0))

	got, err = testStore.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"sessionCount":1}`, got.Payload)

	stored, err = testStore.UpsertInnerProfile(ctx, &store.UpsertInnerProfile{
		UserKey: "user-a",
		Payload: `{"sessionCount":2}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"sessionCount":2}`, stored.Payload)

	got, err = testStore.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"sessionCount":2}`, got.Payload)

	require.NoError(t, testStore.DeleteInnerProfile(ctx, &store.DeleteInnerProfile{UserKey: "user-a"}))

	got, err = testStore.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op, not an error.
	require.NoError(t, testStore.DeleteInnerProfile(ctx, &store.DeleteInnerProfile{UserKey: "user-a"}))
}

func TestStoreInnerProfileServedFromCache(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	_, err := testStore.UpsertInnerProfile(ctx, &store.UpsertInnerProfile{
		UserKey: "cached-user",
		Payload: `{"steadiness":0.5}`,
	})
	require.NoError(t, err)

	// Remove the row behind the store's back; the cached copy should still
	// be served until it expires or is invalidated.
	err = testStore.GetDriver().DeleteInnerProfile(ctx, &store.DeleteInnerProfile{UserKey: "cached-user"})
	require.NoError(t, err)

	got, err := testStore.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: stringPtr("cached-user")})
	require.NoError(t, err)
	require.NotNil(t, got, "expected the cached profile to be served")
	assert.Equal(t, `{"steadiness":0.5}`, got.Payload)

	// A delete through the store invalidates the cache.
	require.NoError(t, testStore.DeleteInnerProfile(ctx, &store.DeleteInnerProfile{UserKey: "cached-user"}))
	got, err = testStore.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: stringPtr("cached-user")})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStorePairingLifecycle(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	created, err := testStore.CreatePairing(ctx, &store.CreatePairing{
		Name:    "web-app",
		KeyHash: "$2a$10$fakehashfakehashfakehash",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), created.ID)
	assert.Equal(t, int64(0), created.LastSeenTs)
	assert.Greater(t, created.CreatedTs, int64(0))

	got, err := testStore.GetPairing(ctx, &store.FindPairing{Name: stringPtr("web-app")})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	missing, err := testStore.GetPairing(ctx, &store.FindPairing{Name: stringPtr("nope")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = testStore.CreatePairing(ctx, &store.CreatePairing{Name: "cli", KeyHash: "$2a$10$other"})
	require.NoError(t, err)

	pairings, err := testStore.ListPairings(ctx, &store.FindPairing{})
	require.NoError(t, err)
	assert.Len(t, pairings, 2)

	require.NoError(t, testStore.UpdatePairingLastSeen(ctx, created.ID, 1700000000))
	fromDB, err := testStore.GetDriver().GetPairing(ctx, &store.FindPairing{ID: &created.ID})
	require.NoError(t, err)
	require.NotNil(t, fromDB)
	assert.Equal(t, int64(1700000000), fromDB.LastSeenTs)

	require.NoError(t, testStore.DeletePairing(ctx, &store.DeletePairing{ID: created.ID}))
	gone, err := testStore.GetDriver().GetPairing(ctx, &store.FindPairing{ID: &created.ID})
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = testStore.DeletePairing(ctx, &store.DeletePairing{ID: created.ID})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStoreDuplicatePairingNameRejected(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	_, err := testStore.CreatePairing(ctx, &store.CreatePairing{Name: "web-app", KeyHash: "h1"})
	require.NoError(t, err)

	_, err = testStore.CreatePairing(ctx, &store.CreatePairing{Name: "web-app", KeyHash: "h2"})
	assert.Error(t, err, "pairing names are unique")
}

func TestStoreSuggestionEvents(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	seed := []*store.SuggestionEvent{
		{UserKey: "user-a", SessionID: "s1", SourceTool: "kiaan", TargetTool: "journey", ThemeCount: 2, CreatedTs: 100},
		{UserKey: "user-a", SessionID: "s2", SourceTool: "compass", TargetTool: "viyoga", CreatedTs: 200},
		{UserKey: "user-b", SessionID: "s3", SourceTool: "kiaan", TargetTool: "journey", ThemeCount: 3, CreatedTs: 300},
	}
	for _, event := range seed {
		created, err := testStore.CreateSuggestionEvent(ctx, event)
		require.NoError(t, err)
		assert.Greater(t, created.ID, int64(0))
	}

	events, err := testStore.ListSuggestionEvents(ctx, &store.FindSuggestionEvent{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "compass", events[0].SourceTool, "newest event first")
	assert.Equal(t, "kiaan", events[1].SourceTool)

	count, err := testStore.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{SourceTool: stringPtr("kiaan")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	since := int64(150)
	count, err = testStore.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{Since: &since})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	limit := 1
	events, err = testStore.ListSuggestionEvents(ctx, &store.FindSuggestionEvent{Limit: &limit})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(300), events[0].CreatedTs)

	require.NoError(t, testStore.DeleteSuggestionEvents(ctx, &store.DeleteSuggestionEvent{UserKey: "user-a"}))
	count, err = testStore.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = testStore.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{UserKey: stringPtr("user-b")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStoreAcceptSuggestionEvent(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	created, err := testStore.CreateSuggestionEvent(ctx, &store.SuggestionEvent{
		UserKey: "user-a", SessionID: "s1", SourceTool: "kiaan", TargetTool: "journey", ThemeCount: 2, CreatedTs: 100,
	})
	require.NoError(t, err)
	assert.False(t, created.Accepted)

	// Someone else's key must not flip the flag.
	event, err := testStore.AcceptSuggestionEvent(ctx, &store.AcceptSuggestionEvent{ID: created.ID, UserKey: "user-b"})
	require.NoError(t, err)
	assert.Nil(t, event)

	event, err = testStore.AcceptSuggestionEvent(ctx, &store.AcceptSuggestionEvent{ID: created.ID, UserKey: "user-a"})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.True(t, event.Accepted)
	assert.Equal(t, created.ID, event.ID)

	// Accepting again stays accepted.
	event, err = testStore.AcceptSuggestionEvent(ctx, &store.AcceptSuggestionEvent{ID: created.ID, UserKey: "user-a"})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.True(t, event.Accepted)

	event, err = testStore.AcceptSuggestionEvent(ctx, &store.AcceptSuggestionEvent{ID: created.ID + 999, UserKey: "user-a"})
	require.NoError(t, err)
	assert.Nil(t, event)

	acceptedOnly := true
	count, err := testStore.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{Accepted: &acceptedOnly})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	notAccepted := false
	count, err = testStore.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{Accepted: &notAccepted})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	events, err := testStore.ListSuggestionEvents(ctx, &store.FindSuggestionEvent{UserKey: stringPtr("user-a")})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Accepted)
}

func TestStoreMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	testStore := newTestStore(t)

	// newTestStore already migrated once.
	require.NoError(t, testStore.Migrate(ctx))
	require.NoError(t, testStore.Migrate(ctx))

	histories, err := testStore.GetDriver().FindMigrationHistoryList(ctx, &store.FindMigrationHistory{})
	require.NoError(t, err)
	assert.Len(t, histories, 1, "repeated migrations of the same version must not add stamps")
}
