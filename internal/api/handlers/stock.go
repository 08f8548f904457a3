package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
	"github.com/wonny/stocksignal/pkg/logger"
)

// InstrumentLookup resolves configured instruments by code
type InstrumentLookup interface {
	Lookup(code string) (contracts.Instrument, bool)
}

// StockHandler handles stock data API endpoints
// ⭐ SSOT: 종목 데이터 API 핸들러는 이 구조체에서만
type StockHandler struct {
	store       store.Store
	instruments InstrumentLookup
	logger      *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(st store.Store, instruments InstrumentLookup, log *logger.Logger) *StockHandler {
	return &StockHandler{
		store:       st,
		instruments: instruments,
		logger:      log,
	}
}

// DailyPriceResponse represents a daily price record for API response
type DailyPriceResponse struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PricesResponse wraps a stored series, newest first
type PricesResponse struct {
	Instrument *contracts.Instrument `json:"instrument,omitempty"`
	Count      int                   `json:"count"`
	Prices     []DailyPriceResponse  `json:"prices"`
}

// GetPrices returns the stored series for a stock
// GET /api/stocks/{code}/prices?limit=60&start=2025-01-01&end=2025-03-31
func (h *StockHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	start, err := parseDayParam(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDayParam(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	q := store.PriceQuery{Start: start, End: end, Limit: parseIntParam(r, "limit", store.DefaultLimit)}
	series, err := h.store.QueryPrices(r.Context(), code, q)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to get prices")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve prices")
		return
	}

	resp := PricesResponse{Count: len(series), Prices: make([]DailyPriceResponse, len(series))}
	if h.instruments != nil {
		if inst, ok := h.instruments.Lookup(code); ok {
			resp.Instrument = &inst
		}
	}
	for i, p := range series {
		resp.Prices[i] = DailyPriceResponse{
			Date:   p.Date.Format(contracts.DateLayout),
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetEvaluations returns the evaluator results of one run date
// GET /api/stocks/{code}/evaluations/{date}
func (h *StockHandler) GetEvaluations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]

	date, err := contracts.ParseDay(vars["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	evals, err := h.store.GetEvaluations(r.Context(), code, date)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("Failed to get evaluations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve evaluations")
		return
	}
	if len(evals) == 0 {
		respondError(w, http.StatusNotFound, "no evaluations for "+code+" on "+vars["date"])
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":        code,
		"date":        vars["date"],
		"evaluations": evals,
	})
}
