package store

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
)

// DefaultLimit is the number of points returned when a query sets no limit
const DefaultLimit = 60

var (
	// ErrInvalidRow marks a raw row that could not be converted to a PricePoint
	ErrInvalidRow = errors.New("invalid price row")

	// ErrNotFound is returned by single-record lookups
	ErrNotFound = errors.New("not found")
)

// Store persists price series, evaluations and reports
// ⭐ SSOT: 가격/평가/리포트 저장소 인터페이스
//
// Row-level failures in UpsertPrices are skipped and counted. The returned
// error is reserved for failures of the call as a whole.
type Store interface {
	UpsertPrices(ctx context.Context, code, market string, rows []contracts.PriceRow) (UpsertResult, error)
	QueryPrices(ctx context.Context, code string, q PriceQuery) (contracts.PriceSeries, error)
	LatestDate(ctx context.Context, code string) (time.Time, bool, error)

	SaveEvaluation(ctx context.Context, rec contracts.EvaluationRecord) error
	GetEvaluations(ctx context.Context, code string, date time.Time) ([]contracts.EvaluationRecord, error)

	SaveReport(ctx context.Context, rec contracts.ReportRecord) error
	GetReport(ctx context.Context, market string, date time.Time, format string) (*contracts.ReportRecord, error)

	Close() error
}

// UpsertResult counts what happened to a batch
type UpsertResult struct {
	Saved   int
	Skipped int
}

// PriceQuery bounds a series lookup. Start and End are inclusive.
type PriceQuery struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// EffectiveLimit returns Limit or DefaultLimit when unset
func (q PriceQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// IsFresh reports whether a stored series can be used as-is for runDate.
// The comparison is at calendar-day granularity.
func IsFresh(latest time.Time, ok bool, runDate time.Time) bool {
	if !ok {
		return false
	}
	return !contracts.CalendarDay(latest).Before(contracts.CalendarDay(runDate))
}
