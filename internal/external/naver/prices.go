package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FetchPrices fetches daily bars in [from, to], newest-first.
// The chart JSON endpoint is tried first, then the sise_day HTML pages.
// ⭐ SSOT: Naver 가격 데이터 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, stockCode string, from, to time.Time) ([]DailyPrice, error) {
	prices, err := c.fetchChart(ctx, stockCode, from, to)
	if err != nil || len(prices) == 0 {
		if err != nil {
			c.logger.WithError(err).WithField("stock_code", stockCode).Warn("chart API failed, falling back to daily page")
		}
		prices, err = c.fetchDailyPages(ctx, stockCode, from, to)
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].TradeDate.After(prices[j].TradeDate) })

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(prices),
	}).Debug("Fetched prices")
	return prices, nil
}

func (c *Client) fetchChart(ctx context.Context, stockCode string, from, to time.Time) ([]DailyPrice, error) {
	params := url.Values{}
	params.Set("symbol", stockCode)
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.fetch(ctx, c.chartURL, "/siseJson.naver", params)
	if err != nil {
		return nil, err
	}
	return parsePriceResponse(string(body))
}

// parsePriceResponse parses the siseJson body (JS array with single quotes)
func parsePriceResponse(body string) ([]DailyPrice, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")
	if body == "" {
		return nil, nil
	}

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData), nil
	}

	prices := parsePriceRegex(body)
	if len(prices) == 0 {
		return nil, fmt.Errorf("unrecognised chart response")
	}
	return prices, nil
}

func parsePriceJSON(rawData [][]interface{}) []DailyPrice {
	var prices []DailyPrice
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		tradeDate, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}

		prices = append(prices, DailyPrice{
			TradeDate: tradeDate,
			Open:      toFloat(row[1]),
			High:      toFloat(row[2]),
			Low:       toFloat(row[3]),
			Close:     toFloat(row[4]),
			Volume:    int64(toFloat(row[5])),
		})
	}
	return prices
}

var chartRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*(\d+)`)

// parsePriceRegex handles bodies that are not valid JSON (trailing commas, NaN)
func parsePriceRegex(body string) []DailyPrice {
	var prices []DailyPrice
	for _, m := range chartRowRe.FindAllStringSubmatch(body, -1) {
		tradeDate, err := time.Parse("20060102", m[1])
		if err != nil {
			continue
		}
		volume, _ := strconv.ParseInt(m[6], 10, 64)
		prices = append(prices, DailyPrice{
			TradeDate: tradeDate,
			Open:      toFloat(m[2]),
			High:      toFloat(m[3]),
			Low:       toFloat(m[4]),
			Close:     toFloat(m[5]),
			Volume:    volume,
		})
	}
	return prices
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(val), ",", ""), 64)
		return f
	default:
		return 0
	}
}
