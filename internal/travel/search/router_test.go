package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/zenese/server/internal/core/error"
	"github.com/zenese/server/internal/travel/model"
)

type fakeSearcher struct {
	offers []model.FlightOffer
	err    error
	calls  int
}

func (f *fakeSearcher) Search(_ context.Context, _ model.SearchRequest) ([]model.FlightOffer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

type fakeQuotaCounter struct {
	mu    sync.Mutex
	used  map[string]int
	fails bool
}

func newFakeQuotaCounter() *fakeQuotaCounter {
	return &fakeQuotaCounter{used: map[string]int{}}
}

func (f *fakeQuotaCounter) Used(_ context.Context, key string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails {
		return 0, errors.New("counter unavailable")
	}
	return f.used[key], nil
}

func (f *fakeQuotaCounter) Record(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.used[key]++
	return nil
}

func (f *fakeQuotaCounter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.used {
		n += v
	}
	return n
}

func someRequest() model.SearchRequest {
	return model.SearchRequest{Origin: "SFO", Destination: "LAX", StartDate: "2025-11-17", EndDate: "2025-11-20"}
}

func TestParseProviders(t *testing.T) {
	specs, err := ParseProviders("amadeus:1:2000, duffel:2:1500, skyscanner:3:1000")
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, ProviderSpec{Name: "amadeus", Priority: 1, MonthlyQuota: 2000}, specs[0])
	assert.Equal(t, "skyscanner", specs[2].Name)

	_, err = ParseProviders("amadeus:one:2000")
	assert.Error(t, err)

	_, err = ParseProviders("")
	assert.Error(t, err)
}

func TestRouterPrefersLowestPriority(t *testing.T) {
	primary := &fakeSearcher{offers: []model.FlightOffer{{Price: 100, Airline: "UA"}}}
	secondary := &fakeSearcher{offers: []model.FlightOffer{{Price: 200, Airline: "AA"}}}
	quotas := newFakeQuotaCounter()

	// given out of order on purpose
	r := NewRouter([]Provider{
		{Name: "duffel", Priority: 2, MonthlyQuota: 10, Searcher: secondary},
		{Name: "amadeus", Priority: 1, MonthlyQuota: 10, Searcher: primary},
	}, quotas, nil)

	offers, err := r.Search(context.Background(), someRequest())

	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "UA", offers[0].Airline)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
	assert.Equal(t, 1, quotas.total(), "usage recorded once after the successful call")
}

func TestRouterFailsOverOnError(t *testing.T) {
	primary := &fakeSearcher{err: errors.New("upstream 500")}
	secondary := &fakeSearcher{offers: []model.FlightOffer{{Price: 200, Airline: "AA"}}}
	quotas := newFakeQuotaCounter()

	r := NewRouter([]Provider{
		{Name: "amadeus", Priority: 1, MonthlyQuota: 10, Searcher: primary},
		{Name: "duffel", Priority: 2, MonthlyQuota: 10, Searcher: secondary},
	}, quotas, nil)

	offers, err := r.Search(context.Background(), someRequest())

	require.NoError(t, err)
	assert.Equal(t, "AA", offers[0].Airline)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, 1, quotas.total(), "failed call does not consume quota")
}

func TestRouterSkipsExhaustedQuota(t *testing.T) {
	primary := &fakeSearcher{offers: []model.FlightOffer{{Price: 100, Airline: "UA"}}}
	secondary := &fakeSearcher{offers: []model.FlightOffer{{Price: 200, Airline: "AA"}}}
	quotas := newFakeQuotaCounter()

	r := NewRouter([]Provider{
		{Name: "amadeus", Priority: 1, MonthlyQuota: 2, Searcher: primary},
		{Name: "duffel", Priority: 2, MonthlyQuota: 10, Searcher: secondary},
	}, quotas, nil)
	quotas.used[r.usageKey("amadeus")] = 2

	offers, err := r.Search(context.Background(), someRequest())

	require.NoError(t, err)
	assert.Equal(t, "AA", offers[0].Airline)
	assert.Zero(t, primary.calls, "exhausted provider is never called")
}

func TestRouterAllExhausted(t *testing.T) {
	primary := &fakeSearcher{err: errors.New("upstream 500")}
	quotas := newFakeQuotaCounter()

	r := NewRouter([]Provider{
		{Name: "amadeus", Priority: 1, MonthlyQuota: 0, Searcher: &fakeSearcher{}},
		{Name: "duffel", Priority: 2, MonthlyQuota: 10, Searcher: primary},
	}, quotas, nil)

	_, err := r.Search(context.Background(), someRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrProvidersExhausted))
}

func TestRouterUnreadableCounterCountsAsZero(t *testing.T) {
	primary := &fakeSearcher{offers: []model.FlightOffer{{Price: 100, Airline: "UA"}}}
	quotas := newFakeQuotaCounter()
	quotas.fails = true

	r := NewRouter([]Provider{
		{Name: "amadeus", Priority: 1, MonthlyQuota: 10, Searcher: primary},
	}, quotas, nil)

	offers, err := r.Search(context.Background(), someRequest())

	require.NoError(t, err)
	assert.Len(t, offers, 1)
}
