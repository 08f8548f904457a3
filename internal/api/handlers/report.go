package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
	"github.com/wonny/stocksignal/pkg/logger"
)

var contentTypes = map[string]string{
	"markdown": "text/markdown; charset=utf-8",
	"html":     "text/html; charset=utf-8",
}

// ReportHandler serves stored reports
type ReportHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(st store.Store, log *logger.Logger) *ReportHandler {
	return &ReportHandler{store: st, logger: log}
}

// GetReport returns a stored report body
// GET /api/reports/{market}/{date}?format=markdown|html
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	market := vars["market"]

	date, err := contracts.ParseDay(vars["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "markdown"
	}
	ct, ok := contentTypes[format]
	if !ok {
		respondError(w, http.StatusBadRequest, "format must be markdown or html")
		return
	}

	rec, err := h.store.GetReport(r.Context(), market, date, format)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "report not found")
			return
		}
		h.logger.WithError(err).WithField("market", market).Error("Failed to get report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return
	}

	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rec.Content))
}
