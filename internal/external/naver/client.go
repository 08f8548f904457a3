package naver

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/stocksignal/pkg/httputil"
	"github.com/wonny/stocksignal/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // finance.naver.com (HTML pages)
	chartURL   string // fchart.stock.naver.com (siseJson)
	maxPages   int
}

// NewClient creates a Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, chartURL string) *Client {
	httpClient.
		WithHeader("User-Agent", userAgent).
		WithHeader("Referer", "https://finance.naver.com/")

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "naver"),
		baseURL:    baseURL,
		chartURL:   chartURL,
		maxPages:   20,
	}
}

// DailyPrice is one daily bar in 원
type DailyPrice struct {
	TradeDate time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

func (c *Client) fetch(ctx context.Context, base, path string, params url.Values) ([]byte, error) {
	fullURL := base + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("naver request %s failed: %w", path, err)
	}
	return body, nil
}
