package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// PriceTrend is the qualitative direction of the two latest observed prices.
type PriceTrend string

const (
	TrendUp     PriceTrend = "up"
	TrendDown   PriceTrend = "down"
	TrendStable PriceTrend = "stable"
)

// PriceDataPoint is a single price observation. It is immutable once created
// and only ever appended to a trip's history.
type PriceDataPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// TrackedTrip is a persisted user intent to monitor the price of a fixed
// origin/destination/date-range. PriceHistory keeps insertion order, which is
// the order of observation but not guaranteed sorted by Date, so the derived
// accessors sort defensively. A persisted trip always carries at least the
// seed point it was created with.
type TrackedTrip struct {
	ID           string           `json:"id"`
	Origin       string           `json:"origin"`
	Destination  string           `json:"destination"`
	StartDate    time.Time        `json:"start_date"`
	EndDate      time.Time        `json:"end_date"`
	PriceHistory []PriceDataPoint `json:"price_history"`
}

// NewTrackedTrip creates a trip from a confirmed query with a single seed
// price point, guaranteeing a non-empty history.
func NewTrackedTrip(q ParsedQuery, seed PriceDataPoint) TrackedTrip {
	return TrackedTrip{
		ID:           uuid.NewString(),
		Origin:       q.Origin,
		Destination:  q.Destination,
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
		PriceHistory: []PriceDataPoint{seed},
	}
}

// Request builds the provider wire request from the trip's stable fields.
func (t TrackedTrip) Request() SearchRequest {
	return SearchRequest{
		Origin:      t.Origin,
		Destination: t.Destination,
		StartDate:   t.StartDate.Format(DateLayout),
		EndDate:     t.EndDate.Format(DateLayout),
	}
}

func (t TrackedTrip) sortedHistory() []PriceDataPoint {
	points := make([]PriceDataPoint, len(t.PriceHistory))
	copy(points, t.PriceHistory)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// CurrentPrice returns the price of the most recent observation by date.
// The second return is false for an empty history.
func (t TrackedTrip) CurrentPrice() (float64, bool) {
	points := t.sortedHistory()
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Price, true
}

// Trend compares the two most recent observations by date. Fewer than two
// points, or two equal prices, report TrendStable.
func (t TrackedTrip) Trend() PriceTrend {
	points := t.sortedHistory()
	if len(points) < 2 {
		return TrendStable
	}

	last := points[len(points)-1].Price
	previous := points[len(points)-2].Price
	switch {
	case last > previous:
		return TrendUp
	case last < previous:
		return TrendDown
	default:
		return TrendStable
	}
}
