package datasource

import (
	"context"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/external/naver"
	"github.com/wonny/stocksignal/internal/external/yahoo"
	"github.com/wonny/stocksignal/pkg/logger"
)

// LiveSource collects from live quote services: Naver for KRX, Yahoo otherwise
// ⭐ SSOT: 실시간 외부 시세 수집
type LiveSource struct {
	naver  *naver.Client
	yahoo  *yahoo.Client
	logger *logger.Logger
}

var _ contracts.DataSource = (*LiveSource)(nil)

// NewLiveSource creates a live data source
func NewLiveSource(naverClient *naver.Client, yahooClient *yahoo.Client, log *logger.Logger) *LiveSource {
	return &LiveSource{
		naver:  naverClient,
		yahoo:  yahooClient,
		logger: log.WithField("module", "datasource.live"),
	}
}

func (s *LiveSource) Name() string { return "live" }

// Collect returns rows newest-first. Transport errors are returned as-is.
func (s *LiveSource) Collect(ctx context.Context, code, market string, start, end time.Time) ([]contracts.PriceRow, error) {
	if market == contracts.MarketKRX {
		prices, err := s.naver.FetchPrices(ctx, code, start, end)
		if err != nil {
			return nil, err
		}
		rows := make([]contracts.PriceRow, 0, len(prices))
		for _, p := range prices {
			rows = append(rows, contracts.PriceRow{
				Date:   p.TradeDate.Format(contracts.DateLayout),
				Open:   p.Open,
				High:   p.High,
				Low:    p.Low,
				Close:  p.Close,
				Volume: p.Volume,
			})
		}
		return rows, nil
	}

	bars, err := s.yahoo.FetchDailyBars(ctx, code, start, end)
	if err != nil {
		return nil, err
	}
	rows := make([]contracts.PriceRow, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, contracts.PriceRow{
			Date:   b.TradeDate.Format(contracts.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return rows, nil
}
