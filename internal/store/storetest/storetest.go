// Package storetest holds behaviour checks shared by every store backend.
package storetest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
)

// Factory returns an empty store; the caller owns cleanup via t.Cleanup
type Factory func(t *testing.T) store.Store

// Day builds a calendar day in UTC
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Rows builds n consecutive daily rows ending at end, newest-first
func Rows(end time.Time, n int, startClose float64) []contracts.PriceRow {
	rows := make([]contracts.PriceRow, n)
	for i := 0; i < n; i++ {
		c := startClose + float64(n-1-i)
		rows[i] = contracts.PriceRow{
			Date:   end.AddDate(0, 0, -i).Format(contracts.DateLayout),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: int64(1000 + i),
		}
	}
	return rows
}

// Run executes the full suite against newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("UpsertIdempotent", func(t *testing.T) { testUpsertIdempotent(t, newStore(t)) })
	t.Run("UpsertReplaces", func(t *testing.T) { testUpsertReplaces(t, newStore(t)) })
	t.Run("PartialBatch", func(t *testing.T) { testPartialBatch(t, newStore(t)) })
	t.Run("BadDateInMiddle", func(t *testing.T) { testBadDateInMiddle(t, newStore(t)) })
	t.Run("QueryBounds", func(t *testing.T) { testQueryBounds(t, newStore(t)) })
	t.Run("LatestDate", func(t *testing.T) { testLatestDate(t, newStore(t)) })
	t.Run("Evaluations", func(t *testing.T) { testEvaluations(t, newStore(t)) })
	t.Run("Reports", func(t *testing.T) { testReports(t, newStore(t)) })
}

func testUpsertIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	rows := Rows(Day(2025, 1, 31), 10, 100)

	res, err := s.UpsertPrices(ctx, "005930", contracts.MarketKRX, rows)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Saved)

	first, err := s.QueryPrices(ctx, "005930", store.PriceQuery{})
	require.NoError(t, err)

	res, err = s.UpsertPrices(ctx, "005930", contracts.MarketKRX, rows)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Saved)

	second, err := s.QueryPrices(ctx, "005930", store.PriceQuery{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, second, 10)
}

func testUpsertReplaces(t *testing.T, s store.Store) {
	ctx := context.Background()
	row := contracts.PriceRow{Date: "2025-02-03", Open: 1, High: 2, Low: 1, Close: 1.5, Volume: 10}

	_, err := s.UpsertPrices(ctx, "AAPL", contracts.MarketNASDAQ, []contracts.PriceRow{row})
	require.NoError(t, err)

	row.Close = 1.9
	row.Volume = 20
	_, err = s.UpsertPrices(ctx, "AAPL", contracts.MarketNASDAQ, []contracts.PriceRow{row})
	require.NoError(t, err)

	series, err := s.QueryPrices(ctx, "AAPL", store.PriceQuery{})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 1.9, series[0].Close)
	assert.Equal(t, int64(20), series[0].Volume)
}

func testPartialBatch(t *testing.T, s store.Store) {
	ctx := context.Background()
	rows := Rows(Day(2025, 3, 10), 5, 50)
	rows[1].Date = "not-a-date"
	rows[3].Close = math.NaN()

	res, err := s.UpsertPrices(ctx, "000660", contracts.MarketKRX, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Saved)
	assert.Equal(t, 2, res.Skipped)

	series, err := s.QueryPrices(ctx, "000660", store.PriceQuery{})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, Day(2025, 3, 10), series[0].Date)
	assert.Equal(t, Day(2025, 3, 8), series[1].Date)
	assert.Equal(t, Day(2025, 3, 6), series[2].Date)
}

func testBadDateInMiddle(t *testing.T, s store.Store) {
	ctx := context.Background()
	rows := []contracts.PriceRow{
		{Date: "2025-03-03", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Date: "2025-13-45", Open: 2, High: 2, Low: 2, Close: 2, Volume: 2},
		{Date: "2025-03-01", Open: 3, High: 3, Low: 3, Close: 3, Volume: 3},
	}

	var (
		res store.UpsertResult
		err error
	)
	require.NotPanics(t, func() {
		res, err = s.UpsertPrices(ctx, "BATCH", contracts.MarketNYSE, rows)
	})
	require.NoError(t, err)
	assert.Equal(t, store.UpsertResult{Saved: 2, Skipped: 1}, res)

	series, err := s.QueryPrices(ctx, "BATCH", store.PriceQuery{})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 1.0, series[0].Close)
	assert.Equal(t, 3.0, series[1].Close)
}

func testQueryBounds(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.UpsertPrices(ctx, "MSFT", contracts.MarketNASDAQ, Rows(Day(2025, 4, 30), 30, 10))
	require.NoError(t, err)

	series, err := s.QueryPrices(ctx, "MSFT", store.PriceQuery{Limit: 5})
	require.NoError(t, err)
	require.Len(t, series, 5)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Date.After(series[i].Date), "series must be newest-first")
	}

	start, end := Day(2025, 4, 10), Day(2025, 4, 20)
	series, err = s.QueryPrices(ctx, "MSFT", store.PriceQuery{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, series, 11)
	assert.Equal(t, end, series[0].Date)
	assert.Equal(t, start, series[10].Date)

	series, err = s.QueryPrices(ctx, "NOPE", store.PriceQuery{})
	require.NoError(t, err)
	assert.Empty(t, series)
}

func testLatestDate(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, ok, err := s.LatestDate(ctx, "035720")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.UpsertPrices(ctx, "035720", contracts.MarketKRX, Rows(Day(2025, 5, 2), 3, 40))
	require.NoError(t, err)

	latest, ok, err := s.LatestDate(ctx, "035720")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Day(2025, 5, 2), latest)
}

func testEvaluations(t *testing.T, s store.Store) {
	ctx := context.Background()
	date := Day(2025, 6, 2)

	rec := contracts.EvaluationRecord{
		Code: "005930", Date: date, Evaluator: "bollinger", Score: 3,
		Details: map[string]interface{}{"position": 42.5},
	}
	require.NoError(t, s.SaveEvaluation(ctx, rec))

	rec.Score = 4
	rec.Details = map[string]interface{}{"position": 12.0}
	require.NoError(t, s.SaveEvaluation(ctx, rec))

	require.NoError(t, s.SaveEvaluation(ctx, contracts.EvaluationRecord{
		Code: "005930", Date: date, Evaluator: "ichimoku", Score: 2,
	}))

	got, err := s.GetEvaluations(ctx, "005930", date)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bollinger", got[0].Evaluator)
	assert.Equal(t, 4.0, got[0].Score)
	assert.Equal(t, 12.0, got[0].Details["position"])
	assert.Equal(t, "ichimoku", got[1].Evaluator)
}

func testReports(t *testing.T, s store.Store) {
	ctx := context.Background()
	date := Day(2025, 7, 1)

	_, err := s.GetReport(ctx, "kr", date, "markdown")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveReport(ctx, contracts.ReportRecord{Market: "kr", Date: date, Format: "markdown", Content: "v1"}))
	require.NoError(t, s.SaveReport(ctx, contracts.ReportRecord{Market: "kr", Date: date, Format: "markdown", Content: "v2"}))
	require.NoError(t, s.SaveReport(ctx, contracts.ReportRecord{Market: "kr", Date: date, Format: "html", Content: "<p>"}))

	rec, err := s.GetReport(ctx, "kr", date, "markdown")
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.Content)

	rec, err = s.GetReport(ctx, "kr", date, "html")
	require.NoError(t, err)
	assert.Equal(t, "<p>", rec.Content)
}
