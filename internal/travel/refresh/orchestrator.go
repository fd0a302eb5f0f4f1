package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zenese/server/internal/travel/model"
	"github.com/zenese/server/internal/travel/search"
	"github.com/zenese/server/internal/travel/trips"
	logx "github.com/zenese/server/pkg/logger"
	"github.com/zenese/server/pkg/metrics"
)

// ErrRefreshInFlight is returned when RefreshAll is invoked while a previous
// run has not settled. Overlapping runs would both read the same stale
// snapshot and overwrite each other's results.
var ErrRefreshInFlight = errors.New("price refresh already in flight")

// Orchestrator re-quotes every tracked trip. Per-trip searches run
// concurrently and settle independently; one trip failing never aborts the
// others, and the collection is persisted exactly once after all calls settle.
type Orchestrator struct {
	store    *trips.Store
	searcher search.Searcher
	metrics  *metrics.Metrics // optional

	mu  sync.Mutex // TryLock guard: at most one run in flight
	now func() time.Time
}

// NewOrchestrator builds the orchestrator; metrics may be nil.
func NewOrchestrator(store *trips.Store, searcher search.Searcher, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		store:    store,
		searcher: searcher,
		metrics:  m,
		now:      time.Now,
	}
}

// RefreshAll reads the trip collection once, issues one search per trip
// concurrently, and applies every successful quote as a new price point in a
// single persisted write. An empty collection completes immediately with no
// network activity and no save. A cancelled context persists nothing.
func (o *Orchestrator) RefreshAll(ctx context.Context) error {
	if !o.mu.TryLock() {
		return ErrRefreshInFlight
	}
	defer o.mu.Unlock()

	started := o.now()

	snapshot, err := o.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(snapshot) == 0 {
		logx.Debug().Msg("no tracked trips to refresh")
		return nil
	}

	logx.Info().Int("trips", len(snapshot)).Msg("refreshing tracked trip prices")

	results := make([]*model.PriceDataPoint, len(snapshot))
	var wg sync.WaitGroup
	for i, trip := range snapshot {
		wg.Add(1)
		go func(i int, trip model.TrackedTrip) {
			defer wg.Done()

			offers, err := o.searcher.Search(ctx, trip.Request())
			if err != nil {
				logx.Warn().Err(err).
					Str("trip_id", trip.ID).
					Str("origin", trip.Origin).
					Str("destination", trip.Destination).
					Msg("price refresh failed for trip")
				if o.metrics != nil {
					o.metrics.RefreshErrors.Inc()
				}
				return
			}
			if len(offers) == 0 {
				logx.Warn().
					Str("trip_id", trip.ID).
					Msg("price refresh returned no offers for trip")
				return
			}

			results[i] = &model.PriceDataPoint{Date: o.now(), Price: offers[0].Price}
			logx.Debug().
				Str("trip_id", trip.ID).
				Float64("price", offers[0].Price).
				Msg("refreshed trip price")
		}(i, trip)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	points := make(map[string]model.PriceDataPoint, len(snapshot))
	for i, p := range results {
		if p != nil {
			points[snapshot[i].ID] = *p
		}
	}

	// One write for the whole run. Points are applied by trip ID inside the
	// store's critical section, so trips confirmed or deleted while the
	// searches were in flight are not clobbered by a stale overwrite.
	tracked := 0
	err = o.store.Apply(ctx, func(current []model.TrackedTrip) []model.TrackedTrip {
		for i := range current {
			if p, ok := points[current[i].ID]; ok {
				current[i].PriceHistory = append(current[i].PriceHistory, p)
			}
		}
		tracked = len(current)
		return current
	})
	if err != nil {
		return err
	}

	if o.metrics != nil {
		o.metrics.RefreshRuns.Inc()
		o.metrics.RefreshDuration.Observe(o.now().Sub(started).Seconds())
		o.metrics.TrackedTrips.Set(float64(tracked))
	}
	logx.Info().
		Int("trips", len(snapshot)).
		Int("updated", len(points)).
		Msg("price refresh settled and saved")
	return nil
}
