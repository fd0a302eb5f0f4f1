package trips

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenese/server/internal/travel/model"
)

// memBlobStore is an in-memory BlobStore fake counting writes.
type memBlobStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
	err    error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{data: map[string][]byte{}}
}

func (m *memBlobStore) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data[key], nil
}

func (m *memBlobStore) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.data[key] = data
	return nil
}

func (m *memBlobStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func sampleTrip(id string) model.TrackedTrip {
	return model.TrackedTrip{
		ID:          id,
		Origin:      "SFO",
		Destination: "LAX",
		StartDate:   time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC),
		PriceHistory: []model.PriceDataPoint{
			{Date: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), Price: 157.50},
		},
	}
}

func TestLoadAllEmpty(t *testing.T) {
	store := NewStore(newMemBlobStore())

	trips, err := store.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestLoadAllDecodeFailureIsEmptyNotFatal(t *testing.T) {
	blobs := newMemBlobStore()
	blobs.data[TripsKey] = []byte("{not json")
	store := NewStore(blobs)

	trips, err := store.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestLoadAllPropagatesTransportError(t *testing.T) {
	blobs := newMemBlobStore()
	blobs.err = errors.New("connection refused")
	store := NewStore(blobs)

	_, err := store.LoadAll(context.Background())

	assert.Error(t, err)
}

func TestAddThenLoadRoundTrip(t *testing.T) {
	store := NewStore(newMemBlobStore())
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, sampleTrip("a")))
	require.NoError(t, store.Add(ctx, sampleTrip("b")))

	trips, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "a", trips[0].ID)
	assert.Equal(t, "b", trips[1].ID)
	require.Len(t, trips[0].PriceHistory, 1)
	assert.Equal(t, 157.50, trips[0].PriceHistory[0].Price)
}

func TestDelete(t *testing.T) {
	store := NewStore(newMemBlobStore())
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, sampleTrip("a")))
	require.NoError(t, store.Add(ctx, sampleTrip("b")))

	require.NoError(t, store.Delete(ctx, "a"))

	trips, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "b", trips[0].ID)

	// unknown id is a no-op
	require.NoError(t, store.Delete(ctx, "missing"))
	trips, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func TestApplyPersistsOnce(t *testing.T) {
	blobs := newMemBlobStore()
	store := NewStore(blobs)
	ctx := context.Background()
	require.NoError(t, store.SaveAll(ctx, []model.TrackedTrip{sampleTrip("a")}))
	before := blobs.writeCount()

	err := store.Apply(ctx, func(current []model.TrackedTrip) []model.TrackedTrip {
		current[0].PriceHistory = append(current[0].PriceHistory, model.PriceDataPoint{
			Date:  time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
			Price: 149,
		})
		return current
	})

	require.NoError(t, err)
	assert.Equal(t, before+1, blobs.writeCount())

	trips, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Len(t, trips[0].PriceHistory, 2)
}
