package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		score  float64
		marker string
	}{
		{4.0, "🔥🔥"},
		{3.5, "🔥🔥"},
		{3.4999, "🔥"},
		{3.25, "🔥"},
		{3.2499, "👍"},
		{2.75, "👍"},
		{2.7499, "👌"},
		{2.5, "👌"},
		{2.4999, "🧐"},
		{2.0, "🧐"},
		{1.9999, "👎"},
		{1.0, "👎"},
	}

	for _, tt := range tests {
		got := TierFor(tt.score)
		assert.Equal(t, tt.marker, got.Marker, "score %v", tt.score)
	}
}

func TestSignalMarkers(t *testing.T) {
	assert.Equal(t, "🟢", SignalStrongBuy.Marker())
	assert.Equal(t, "🟡", SignalBuy.Marker())
	assert.Equal(t, "🟠", SignalSell.Marker())
	assert.Equal(t, "🔴", SignalStrongSell.Marker())

	assert.Equal(t, SignalBuy, SignalForScore(3))
	assert.Equal(t, SignalSell, SignalForScore(2))
}

func TestPriceSeriesHelpers(t *testing.T) {
	s := PriceSeries{
		{Close: 3, High: 5, Low: 2},
		{Close: 2, High: 9, Low: 1},
		{Close: 1, High: 4, Low: 0.5},
	}

	assert.Equal(t, []float64{3, 2}, s.Closes(2))
	assert.Equal(t, []float64{3, 2, 1}, s.Closes(0))

	high, low := s.HighLow(2)
	assert.Equal(t, 9.0, high)
	assert.Equal(t, 1.0, low)

	p, ok := s.Latest()
	assert.True(t, ok)
	assert.Equal(t, 3.0, p.Close)

	_, ok = PriceSeries{}.Latest()
	assert.False(t, ok)
}

func TestCalendarDay(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	in := time.Date(2025, 3, 4, 23, 30, 0, 0, kst)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), CalendarDay(in))

	d, err := ParseDay("2025-03-04")
	assert.NoError(t, err)
	assert.True(t, d.Equal(CalendarDay(in)))

	_, err = ParseDay("2025/03/04")
	assert.Error(t, err)
}
