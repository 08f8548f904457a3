package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
)

const upsertPriceSQL = `
	INSERT INTO stock_prices (code, market, date, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (code, date) DO UPDATE SET
		market = excluded.market,
		open   = excluded.open,
		high   = excluded.high,
		low    = excluded.low,
		close  = excluded.close,
		volume = excluded.volume
`

var _ store.Store = (*Store)(nil)

// UpsertPrices writes rows in one transaction. Invalid or failing rows are
// logged and skipped; the rest of the batch is committed.
func (s *Store) UpsertPrices(ctx context.Context, code, market string, rows []contracts.PriceRow) (store.UpsertResult, error) {
	var result store.UpsertResult
	if len(rows) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertPriceSQL)
	if err != nil {
		return result, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	log := s.logger.WithField("code", code)
	for _, row := range rows {
		p, err := store.ConvertRow(row)
		if err != nil {
			log.WithError(err).Warn("skipping price row")
			result.Skipped++
			continue
		}

		if _, err := stmt.ExecContext(ctx, code, market, p.Date.Format(contracts.DateLayout),
			p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			log.WithError(err).WithField("date", row.Date).Error("failed to save price row")
			result.Skipped++
			continue
		}
		result.Saved++
	}

	if err := tx.Commit(); err != nil {
		return store.UpsertResult{Skipped: len(rows)}, fmt.Errorf("commit: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"saved":   result.Saved,
		"skipped": result.Skipped,
	}).Debug("prices upserted")
	return result, nil
}

// QueryPrices returns the series newest-first
func (s *Store) QueryPrices(ctx context.Context, code string, q store.PriceQuery) (contracts.PriceSeries, error) {
	var (
		where = []string{"code = ?"}
		args  = []interface{}{code}
	)
	if q.Start != nil {
		where = append(where, "date >= ?")
		args = append(args, q.Start.Format(contracts.DateLayout))
	}
	if q.End != nil {
		where = append(where, "date <= ?")
		args = append(args, q.End.Format(contracts.DateLayout))
	}
	args = append(args, q.EffectiveLimit())

	query := `SELECT date, open, high, low, close, volume FROM stock_prices WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var series contracts.PriceSeries
	for rows.Next() {
		var (
			date string
			p    contracts.PricePoint
		)
		if err := rows.Scan(&date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		if p.Date, err = contracts.ParseDay(date); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

// LatestDate returns the most recent stored date for code
func (s *Store) LatestDate(ctx context.Context, code string) (time.Time, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM stock_prices WHERE code = ?`, code).Scan(&date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, fmt.Errorf("latest date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, false, nil
	}

	t, err := contracts.ParseDay(date.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("stored date %q: %w", date.String, err)
	}
	return t, true, nil
}
