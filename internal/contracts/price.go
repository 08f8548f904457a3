package contracts

import (
	"time"
)

// DateLayout is the calendar-day format used on the wire and in storage
const DateLayout = "2006-01-02"

// Market tags
const (
	MarketKRX    = "KRX"
	MarketNASDAQ = "NASDAQ"
	MarketNYSE   = "NYSE"
	MarketAMEX   = "AMEX"
)

// Market groups used by config, CLI and reports
const (
	GroupKR = "kr"
	GroupUS = "us"
)

// Instrument is a tradable security identified by code
// ⭐ SSOT: 분석 대상 종목
type Instrument struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Market string `json:"market" yaml:"market"`
}

// IsDomestic reports whether the instrument trades on KRX (원화)
func (i Instrument) IsDomestic() bool {
	return i.Market == MarketKRX
}

// PriceRow is a raw daily bar as delivered by a data source.
// Conversion into a PricePoint happens in the store, one row at a time.
type PriceRow struct {
	Date   string  `json:"date" parquet:"date"`
	Open   float64 `json:"open" parquet:"open"`
	High   float64 `json:"high" parquet:"high"`
	Low    float64 `json:"low" parquet:"low"`
	Close  float64 `json:"close" parquet:"close"`
	Volume int64   `json:"volume" parquet:"volume"`
}

// PricePoint is one validated daily bar. At most one per (code, date).
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is ordered newest-first: index 0 is the most recent day.
// ⭐ SSOT: 모든 evaluator는 이 순서를 전제로 함
type PriceSeries []PricePoint

// Closes returns the first n closes (newest-first). n <= 0 means all.
func (s PriceSeries) Closes(n int) []float64 {
	if n <= 0 || n > len(s) {
		n = len(s)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s[i].Close
	}
	return out
}

// HighLow returns the highest high and lowest low over the first n points
func (s PriceSeries) HighLow(n int) (high, low float64) {
	if n > len(s) {
		n = len(s)
	}
	if n <= 0 {
		return 0, 0
	}
	high, low = s[0].High, s[0].Low
	for i := 1; i < n; i++ {
		if s[i].High > high {
			high = s[i].High
		}
		if s[i].Low < low {
			low = s[i].Low
		}
	}
	return high, low
}

// Latest returns the most recent point
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[0], true
}

// CalendarDay truncates t to midnight UTC of its own calendar date
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
