package naver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fetchDailyPages scrapes item/sise_day.naver page by page until from is passed
func (c *Client) fetchDailyPages(ctx context.Context, stockCode string, from, to time.Time) ([]DailyPrice, error) {
	var all []DailyPrice

	for page := 1; page <= c.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		params := url.Values{}
		params.Set("code", stockCode)
		params.Set("page", strconv.Itoa(page))

		body, err := c.fetch(ctx, c.baseURL, "/item/sise_day.naver", params)
		if err != nil {
			return all, err
		}

		rows, oldest, hasMore, err := parseDailyHTML(body)
		if err != nil {
			return all, fmt.Errorf("parse daily page %d: %w", page, err)
		}

		for _, r := range rows {
			if r.TradeDate.Before(from) || r.TradeDate.After(to) {
				continue
			}
			all = append(all, r)
		}

		if oldest.IsZero() || oldest.Before(from) || !hasMore {
			break
		}
	}

	return all, nil
}

// parseDailyHTML reads the daily price table.
// 컬럼: 날짜 | 종가 | 전일비 | 시가 | 고가 | 저가 | 거래량
func parseDailyHTML(body []byte) ([]DailyPrice, time.Time, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, time.Time{}, false, err
	}

	var (
		rows   []DailyPrice
		oldest time.Time
	)

	doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		tradeDate, err := time.Parse("2006.01.02", dateText)
		if err != nil {
			return
		}

		num := func(i int) float64 {
			return toFloat(strings.TrimSpace(cells.Eq(i).Text()))
		}

		rows = append(rows, DailyPrice{
			TradeDate: tradeDate,
			Close:     num(1),
			Open:      num(3),
			High:      num(4),
			Low:       num(5),
			Volume:    int64(num(6)),
		})
		if oldest.IsZero() || tradeDate.Before(oldest) {
			oldest = tradeDate
		}
	})

	hasMore := doc.Find(".pgRR").Length() > 0
	return rows, oldest, hasMore, nil
}
