package trips

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zenese/server/internal/travel/model"
	logx "github.com/zenese/server/pkg/logger"
)

// TripsKey is the single fixed key the whole collection is serialized under.
const TripsKey = "zenese:tracked-trips"

// BlobStore is the persistent blob collaborator: opaque bytes per key.
// Read reports absence as (nil, nil).
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Store owns the tracked-trip collection. Every read-modify-write sequence
// (Add, Delete, Apply) holds one mutex for its full critical section, so the
// dialogue controller confirming a trip and the refresh orchestrator saving
// results cannot lose each other's updates.
type Store struct {
	mu    sync.Mutex
	blobs BlobStore
	key   string
}

func NewStore(blobs BlobStore) *Store {
	return &Store{blobs: blobs, key: TripsKey}
}

// LoadAll returns the persisted collection. An absent blob or one that fails
// to decode is an empty collection, never an error; decode failures are
// logged. Transport failures from the blob collaborator do propagate.
func (s *Store) LoadAll(ctx context.Context) ([]model.TrackedTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) ([]model.TrackedTrip, error) {
	data, err := s.blobs.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read tracked trips: %w", err)
	}
	if len(data) == 0 {
		return []model.TrackedTrip{}, nil
	}

	var trips []model.TrackedTrip
	if err := json.Unmarshal(data, &trips); err != nil {
		logx.Warn().Err(err).Str("key", s.key).Msg("stored trips blob unreadable, treating as empty")
		return []model.TrackedTrip{}, nil
	}
	return trips, nil
}

// SaveAll overwrites the persisted collection as one atomic unit.
func (s *Store) SaveAll(ctx context.Context, trips []model.TrackedTrip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, trips)
}

func (s *Store) saveLocked(ctx context.Context, trips []model.TrackedTrip) error {
	data, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("marshal tracked trips: %w", err)
	}
	if err := s.blobs.Write(ctx, s.key, data); err != nil {
		return fmt.Errorf("write tracked trips: %w", err)
	}
	return nil
}

// Add appends a trip to the collection.
func (s *Store) Add(ctx context.Context, trip model.TrackedTrip) error {
	return s.Apply(ctx, func(current []model.TrackedTrip) []model.TrackedTrip {
		return append(current, trip)
	})
}

// Delete removes the trip with the given ID; deleting an unknown ID is a no-op.
func (s *Store) Delete(ctx context.Context, tripID string) error {
	return s.Apply(ctx, func(current []model.TrackedTrip) []model.TrackedTrip {
		kept := current[:0]
		for _, t := range current {
			if t.ID != tripID {
				kept = append(kept, t)
			}
		}
		return kept
	})
}

// Apply runs fn over the freshly loaded collection and persists the result,
// all inside the store's critical section.
func (s *Store) Apply(ctx context.Context, fn func([]model.TrackedTrip) []model.TrackedTrip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	return s.saveLocked(ctx, fn(current))
}
