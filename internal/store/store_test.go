package store

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/internal/contracts"
)

func TestConvertRow(t *testing.T) {
	valid := contracts.PriceRow{Date: "2025-01-02", Open: 10, High: 12, Low: 9, Close: 11, Volume: 1000}

	p, err := ConvertRow(valid)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), p.Date)
	assert.Equal(t, 11.0, p.Close)

	tests := []struct {
		name   string
		mutate func(r *contracts.PriceRow)
	}{
		{"bad date", func(r *contracts.PriceRow) { r.Date = "02/01/2025" }},
		{"empty date", func(r *contracts.PriceRow) { r.Date = "" }},
		{"nan close", func(r *contracts.PriceRow) { r.Close = math.NaN() }},
		{"inf high", func(r *contracts.PriceRow) { r.High = math.Inf(1) }},
		{"negative low", func(r *contracts.PriceRow) { r.Low = -1 }},
		{"high below low", func(r *contracts.PriceRow) { r.High = 8 }},
		{"negative volume", func(r *contracts.PriceRow) { r.Volume = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mutate(&row)
			_, err := ConvertRow(row)
			assert.True(t, errors.Is(err, ErrInvalidRow), "got %v", err)
		})
	}
}

func TestIsFresh(t *testing.T) {
	run := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)

	assert.False(t, IsFresh(time.Time{}, false, run))
	assert.True(t, IsFresh(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), true, run))
	assert.True(t, IsFresh(time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), true, run))
	assert.False(t, IsFresh(time.Date(2025, 1, 9, 23, 59, 0, 0, time.UTC), true, run))
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, PriceQuery{}.EffectiveLimit())
	assert.Equal(t, 5, PriceQuery{Limit: 5}.EffectiveLimit())
}
