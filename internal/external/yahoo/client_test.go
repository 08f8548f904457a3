package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/pkg/httputil"
	"github.com/wonny/stocksignal/pkg/logger"
)

// 2024-01-16 and 2024-01-17 14:30 UTC (09:30 New York), plus a null bar
const chartJSON = `{"chart":{"result":[{
	"meta":{"gmtoffset":-18000},
	"timestamp":[1705415400,1705501800,1705588200],
	"indicators":{"quote":[{
		"open":[185.1,183.0,null],
		"high":[186.4,184.3,null],
		"low":[183.6,181.9,null],
		"close":[183.6,182.7,null],
		"volume":[65000000,58000000,null]
	}]}
}],"error":null}}`

func TestParseChart(t *testing.T) {
	bars, err := parseChart([]byte(chartJSON))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), bars[0].TradeDate)
	assert.Equal(t, 182.7, bars[0].Close)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), bars[1].TradeDate)
	assert.Equal(t, int64(65000000), bars[1].Volume)
}

func TestParseChartNotFound(t *testing.T) {
	bars, err := parseChart([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	require.NoError(t, err)
	assert.Empty(t, bars)

	_, err = parseChart([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`))
	assert.Error(t, err)
}

func TestFetchDailyBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			assert.NotEmpty(t, r.URL.Query().Get("period1"))
			_, _ = w.Write([]byte(chartJSON))
		default:
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found"}}}`, http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(httputil.New(logger.Nop()).DisableRetry(), logger.Nop(), server.URL)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := c.FetchDailyBars(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	bars, err = c.FetchDailyBars(context.Background(), "NOPE", from, to)
	require.NoError(t, err)
	assert.Empty(t, bars)
}
