package store

import (
	"fmt"
	"math"

	"github.com/wonny/stocksignal/internal/contracts"
)

// ConvertRow validates a raw row and turns it into a PricePoint
func ConvertRow(row contracts.PriceRow) (contracts.PricePoint, error) {
	date, err := contracts.ParseDay(row.Date)
	if err != nil {
		return contracts.PricePoint{}, fmt.Errorf("%w: date %q: %v", ErrInvalidRow, row.Date, err)
	}

	prices := map[string]float64{
		"open":  row.Open,
		"high":  row.High,
		"low":   row.Low,
		"close": row.Close,
	}
	for name, v := range prices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return contracts.PricePoint{}, fmt.Errorf("%w: %s is not finite on %s", ErrInvalidRow, name, row.Date)
		}
		if v < 0 {
			return contracts.PricePoint{}, fmt.Errorf("%w: %s is negative on %s", ErrInvalidRow, name, row.Date)
		}
	}

	if row.High < row.Low {
		return contracts.PricePoint{}, fmt.Errorf("%w: high %.4f < low %.4f on %s", ErrInvalidRow, row.High, row.Low, row.Date)
	}
	if row.Volume < 0 {
		return contracts.PricePoint{}, fmt.Errorf("%w: negative volume on %s", ErrInvalidRow, row.Date)
	}

	return contracts.PricePoint{
		Date:   date,
		Open:   row.Open,
		High:   row.High,
		Low:    row.Low,
		Close:  row.Close,
		Volume: row.Volume,
	}, nil
}
