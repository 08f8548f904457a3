package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/external/naver"
	"github.com/wonny/stocksignal/internal/external/yahoo"
	"github.com/wonny/stocksignal/pkg/httputil"
	"github.com/wonny/stocksignal/pkg/logger"
)

func day(s string) time.Time {
	t, _ := contracts.ParseDay(s)
	return t
}

func sampleRows() []contracts.PriceRow {
	return []contracts.PriceRow{
		{Date: "2025-01-03", Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Date: "2025-01-01", Open: 8, High: 9, Low: 7, Close: 8.5, Volume: 80},
		{Date: "2025-01-02", Open: 9, High: 10, Low: 8, Close: 9.5, Volume: 90},
	}
}

func TestFileSourceJSON(t *testing.T) {
	dir := t.TempDir()
	inst := contracts.Instrument{Code: "005930", Market: contracts.MarketKRX}

	path, err := WriteCorpus(dir, inst, sampleRows(), "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kr", "005930.json"), path)

	src := NewFileSource(dir, logger.Nop())
	rows, err := src.Collect(context.Background(), "005930", contracts.MarketKRX, day("2025-01-02"), day("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-03", rows[0].Date)
	assert.Equal(t, "2025-01-02", rows[1].Date)
}

func TestFileSourceParquet(t *testing.T) {
	dir := t.TempDir()
	inst := contracts.Instrument{Code: "AAPL", Market: contracts.MarketNASDAQ}

	path, err := WriteCorpus(dir, inst, sampleRows(), "parquet")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "us", "AAPL.parquet"), path)

	src := NewFileSource(dir, logger.Nop())
	rows, err := src.Collect(context.Background(), "AAPL", contracts.MarketNASDAQ, day("2024-12-01"), day("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-01-03", rows[0].Date)
	assert.Equal(t, 8.5, rows[2].Close)
	assert.Equal(t, int64(80), rows[2].Volume)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(t.TempDir(), logger.Nop())
	rows, err := src.Collect(context.Background(), "NOPE", contracts.MarketNYSE, day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFileSourceCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "kr"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kr", "000660.json"), []byte("{not json"), 0o644))

	src := NewFileSource(dir, logger.Nop())
	_, err := src.Collect(context.Background(), "000660", contracts.MarketKRX, day("2025-01-01"), day("2025-01-31"))
	assert.Error(t, err)
}

func TestWriteCorpusUnknownFormat(t *testing.T) {
	_, err := WriteCorpus(t.TempDir(), contracts.Instrument{Code: "X"}, nil, "csv")
	assert.Error(t, err)
}

func TestLiveSourceRoutesByMarket(t *testing.T) {
	var naverCalls, yahooCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/siseJson.naver":
			naverCalls++
			_, _ = w.Write([]byte(`[['날짜','시가','고가','저가','종가','거래량'],["20250102", 100, 110, 90, 105, 1000]]`))
		case r.URL.Path == "/v8/finance/chart/AAPL":
			yahooCalls++
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"gmtoffset":-18000},"timestamp":[1735828200],
				"indicators":{"quote":[{"open":[243.1],"high":[244.2],"low":[241.9],"close":[243.8],"volume":[40000000]}]}}],"error":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	hc := func() *httputil.Client { return httputil.New(logger.Nop()).DisableRetry() }
	src := NewLiveSource(
		naver.NewClient(hc(), logger.Nop(), server.URL, server.URL),
		yahoo.NewClient(hc(), logger.Nop(), server.URL),
		logger.Nop(),
	)
	ctx := context.Background()

	rows, err := src.Collect(ctx, "005930", contracts.MarketKRX, day("2025-01-01"), day("2025-01-03"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, contracts.PriceRow{Date: "2025-01-02", Open: 100, High: 110, Low: 90, Close: 105, Volume: 1000}, rows[0])

	rows, err = src.Collect(ctx, "AAPL", contracts.MarketNASDAQ, day("2025-01-01"), day("2025-01-03"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-01-02", rows[0].Date)
	assert.Equal(t, 243.8, rows[0].Close)

	assert.Equal(t, 1, naverCalls)
	assert.Equal(t, 1, yahooCalls)
}
