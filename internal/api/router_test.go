package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/internal/api/handlers"
	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store/sqlite"
	"github.com/wonny/stocksignal/internal/store/storetest"
	"github.com/wonny/stocksignal/pkg/logger"
)

type lookup map[string]contracts.Instrument

func (l lookup) Lookup(code string) (contracts.Instrument, bool) {
	i, ok := l[code]
	return i, ok
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	day := storetest.Day(2025, 3, 14)
	_, err = st.UpsertPrices(ctx, "005930", contracts.MarketKRX, storetest.Rows(day, 10, 100))
	require.NoError(t, err)
	require.NoError(t, st.SaveEvaluation(ctx, contracts.EvaluationRecord{
		Code: "005930", Date: day, Evaluator: "bollinger", Score: 3,
		Details: map[string]interface{}{"position": 42.0},
	}))
	require.NoError(t, st.SaveReport(ctx, contracts.ReportRecord{
		Market: "kr", Date: day, Content: "# report", Format: "markdown",
	}))

	instruments := lookup{"005930": {Code: "005930", Name: "삼성전자", Market: contracts.MarketKRX}}
	return NewRouter(
		handlers.NewStockHandler(st, instruments, logger.Nop()),
		handlers.NewReportHandler(st, logger.Nop()),
		logger.Nop(),
	)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetPrices(t *testing.T) {
	h := newTestRouter(t)

	rec := get(t, h, "/api/stocks/005930/prices?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.PricesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	require.NotNil(t, body.Instrument)
	assert.Equal(t, "삼성전자", body.Instrument.Name)
	assert.Equal(t, "2025-03-14", body.Prices[0].Date)
	assert.Equal(t, 109.0, body.Prices[0].Close)

	rec = get(t, h, "/api/stocks/005930/prices?start=2025-03-12&end=2025-03-13")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)

	rec = get(t, h, "/api/stocks/005930/prices?start=March")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEvaluations(t *testing.T) {
	h := newTestRouter(t)

	rec := get(t, h, "/api/stocks/005930/evaluations/2025-03-14")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"evaluator":"bollinger"`)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/stocks/005930/evaluations/2025-03-13").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stocks/005930/evaluations/yesterday").Code)
}

func TestGetReport(t *testing.T) {
	h := newTestRouter(t)

	rec := get(t, h, "/api/reports/kr/2025-03-14")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# report", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/reports/kr/2025-03-14?format=html").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/reports/kr/2025-03-14?format=pdf").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/reports/jp/2025-03-14").Code, "unknown market is not routed")
}
