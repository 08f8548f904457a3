package contracts

import (
	"context"
	"time"
)

// DataSource supplies daily bars for an instrument
// ⭐ SSOT: 가격 데이터 수집 인터페이스
//
// Rows are newest-first. No data is an empty slice with a nil error.
type DataSource interface {
	Name() string
	Collect(ctx context.Context, code, market string, start, end time.Time) ([]PriceRow, error)
}

// Reporter renders and saves aggregated results
// ⭐ SSOT: 리포트 생성 인터페이스
type Reporter interface {
	Format() string
	Generate(ctx context.Context, market string, date time.Time, results []AggregateResult) (string, error)
	Save(market string, date time.Time, content string) (string, error)
}
