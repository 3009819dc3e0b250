package store

import (
	"context"
	"time"

	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	innerProfileCache *cache.Cache // cache for inner profiles, keyed by user key
	pairingCache      *cache.Cache // cache for pairings, keyed by name
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:            driver,
		profile:           profile,
		cacheConfig:       cacheConfig,
		innerProfileCache: cache.New(cacheConfig),
		pairingCache:      cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.innerProfileCache.Close()
	s.pairingCache.Close()

	return s.driver.Close()
}

func (s *Store) UpsertInnerProfile(ctx context.Context, upsert *UpsertInnerProfile) (*InnerProfile, error) {
	stored, err := s.driver.UpsertInnerProfile(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.innerProfileCache.Set(stored.UserKey, stored)
	return stored, nil
}

// GetInnerProfile returns the stored profile, or nil when the user has none
// yet.
func (s *Store) GetInnerProfile(ctx context.Context, find *FindInnerProfile) (*InnerProfile, error) {
	if find.UserKey != nil {
		if cached, ok := s.innerProfileCache.Get(*find.UserKey); ok {
			return cached.(*InnerProfile), nil
		}
	}

	stored, err := s.driver.GetInnerProfile(ctx, find)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		s.innerProfileCache.Set(stored.UserKey, stored)
	}
	return stored, nil
}

func (s *Store) DeleteInnerProfile(ctx context.Context, delete *DeleteInnerProfile) error {
	if err := s.driver.DeleteInnerProfile(ctx, delete); err != nil {
		return err
	}
	s.innerProfileCache.Delete(delete.UserKey)
	return nil
}

func (s *Store) CreatePairing(ctx context.Context, create *CreatePairing) (*Pairing, error) {
	stored, err := s.driver.CreatePairing(ctx, create)
	if err != nil {
		return nil, err
	}
	s.pairingCache.Set(stored.Name, stored)
	return stored, nil
}

// GetPairing returns the pairing, or nil when none matches.
func (s *Store) GetPairing(ctx context.Context, find *FindPairing) (*Pairing, error) {
	if find.Name != nil && find.ID == nil {
		if cached, ok := s.pairingCache.Get(*find.Name); ok {
			return cached.(*Pairing), nil
		}
	}

	stored, err := s.driver.GetPairing(ctx, find)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		s.pairingCache.Set(stored.Name, stored)
	}
	return stored, nil
}

func (s *Store) ListPairings(ctx context.Context, find *FindPairing) ([]*Pairing, error) {
	return s.driver.ListPairings(ctx, find)
}

func (s *Store) UpdatePairingLastSeen(ctx context.Context, id int32, lastSeenTs int64) error {
	// The cached copy keeps a stale last-seen timestamp until it expires.
	// Auth decisions never read it, so that is acceptable.
	return s.driver.UpdatePairingLastSeen(ctx, id, lastSeenTs)
}

func (s *Store) DeletePairing(ctx context.Context, delete *DeletePairing) error {
	stored, err := s.driver.GetPairing(ctx, &FindPairing{ID: &delete.ID})
	if err != nil {
		return err
	}
	if err := s.driver.DeletePairing(ctx, delete); err != nil {
		return err
	}
	if stored != nil {
		s.pairingCache.Delete(stored.Name)
	}
	return nil
}

func (s *Store) CreateSuggestionEvent(ctx context.Context, create *SuggestionEvent) (*SuggestionEvent, error) {
	return s.driver.CreateSuggestionEvent(ctx, create)
}

// AcceptSuggestionEvent marks the event accepted. It returns nil when no
// event matches the id and owner.
func (s *Store) AcceptSuggestionEvent(ctx context.Context, accept *AcceptSuggestionEvent) (*SuggestionEvent, error) {
	return s.driver.AcceptSuggestionEvent(ctx, accept)
}

func (s *Store) ListSuggestionEvents(ctx context.Context, find *FindSuggestionEvent) ([]*SuggestionEvent, error) {
	return s.driver.ListSuggestionEvents(ctx, find)
}

func (s *Store) CountSuggestionEvents(ctx context.Context, find *FindSuggestionEvent) (int64, error) {
	return s.driver.CountSuggestionEvents(ctx, find)
}

func (s *Store) DeleteSuggestionEvents(ctx context.Context, delete *DeleteSuggestionEvent) error {
	return s.driver.DeleteSuggestionEvents(ctx, delete)
}
