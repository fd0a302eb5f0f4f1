package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.November, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTrackedTripSeedsHistory(t *testing.T) {
	q := ParsedQuery{Origin: "SFO", Destination: "LAX", StartDate: day(17), EndDate: day(20)}
	seed := PriceDataPoint{Date: day(1), Price: 157.50}

	trip := NewTrackedTrip(q, seed)

	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, "SFO", trip.Origin)
	assert.Equal(t, "LAX", trip.Destination)
	require.Len(t, trip.PriceHistory, 1)
	assert.Equal(t, 157.50, trip.PriceHistory[0].Price)
}

func TestCurrentPrice(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		trip := TrackedTrip{}
		_, ok := trip.CurrentPrice()
		assert.False(t, ok)
	})

	t.Run("picks maximum date regardless of insertion order", func(t *testing.T) {
		trip := TrackedTrip{PriceHistory: []PriceDataPoint{
			{Date: day(3), Price: 210},
			{Date: day(1), Price: 180},
			{Date: day(2), Price: 195},
		}}
		price, ok := trip.CurrentPrice()
		require.True(t, ok)
		assert.Equal(t, 210.0, price)
	})
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name    string
		history []PriceDataPoint
		want    PriceTrend
	}{
		{
			name:    "empty history is stable",
			history: nil,
			want:    TrendStable,
		},
		{
			name:    "single point is stable",
			history: []PriceDataPoint{{Date: day(1), Price: 100}},
			want:    TrendStable,
		},
		{
			name: "rising prices",
			history: []PriceDataPoint{
				{Date: day(1), Price: 100},
				{Date: day(2), Price: 120},
			},
			want: TrendUp,
		},
		{
			name: "falling prices",
			history: []PriceDataPoint{
				{Date: day(1), Price: 100},
				{Date: day(2), Price: 90},
			},
			want: TrendDown,
		},
		{
			name: "equal latest prices",
			history: []PriceDataPoint{
				{Date: day(1), Price: 100},
				{Date: day(2), Price: 100},
			},
			want: TrendStable,
		},
		{
			name: "insertion order does not matter",
			history: []PriceDataPoint{
				{Date: day(3), Price: 80},
				{Date: day(1), Price: 100},
				{Date: day(2), Price: 120},
			},
			want: TrendDown,
		},
		{
			name: "only the two most recent points count",
			history: []PriceDataPoint{
				{Date: day(1), Price: 500},
				{Date: day(2), Price: 100},
				{Date: day(3), Price: 120},
			},
			want: TrendUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := TrackedTrip{PriceHistory: tt.history}
			assert.Equal(t, tt.want, trip.Trend())
		})
	}
}

func TestRequestFormatsDates(t *testing.T) {
	trip := TrackedTrip{Origin: "SFO", Destination: "LAX", StartDate: day(17), EndDate: day(20)}
	req := trip.Request()
	assert.Equal(t, "2025-11-17", req.StartDate)
	assert.Equal(t, "2025-11-20", req.EndDate)
}
