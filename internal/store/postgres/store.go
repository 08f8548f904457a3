package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
	"github.com/wonny/stocksignal/pkg/database"
	"github.com/wonny/stocksignal/pkg/logger"
)

// Store is the PostgreSQL-backed price store
// ⭐ SSOT: signal 스키마 저장/조회는 여기서만
type Store struct {
	db     *database.DB
	logger *logger.Logger
}

var _ store.Store = (*Store)(nil)

// New wraps an open pool and applies migrations
func New(ctx context.Context, db *database.DB, log *logger.Logger) (*Store, error) {
	s := &Store{db: db, logger: log.WithField("module", "store.postgres")}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying pool
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

const upsertPriceSQL = `
	INSERT INTO signal.stock_prices (code, market, date, open, high, low, close, volume)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (code, date) DO UPDATE SET
		market = EXCLUDED.market,
		open   = EXCLUDED.open,
		high   = EXCLUDED.high,
		low    = EXCLUDED.low,
		close  = EXCLUDED.close,
		volume = EXCLUDED.volume
`

// UpsertPrices writes rows in one transaction. Each row runs under its own
// savepoint so a failing row does not abort the batch.
func (s *Store) UpsertPrices(ctx context.Context, code, market string, rows []contracts.PriceRow) (store.UpsertResult, error) {
	var result store.UpsertResult
	if len(rows) == 0 {
		return result, nil
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	log := s.logger.WithField("code", code)
	for _, row := range rows {
		p, err := store.ConvertRow(row)
		if err != nil {
			log.WithError(err).Warn("skipping price row")
			result.Skipped++
			continue
		}

		if err := s.upsertRow(ctx, tx, code, market, p); err != nil {
			log.WithError(err).WithField("date", row.Date).Error("failed to save price row")
			result.Skipped++
			continue
		}
		result.Saved++
	}

	if err := tx.Commit(ctx); err != nil {
		return store.UpsertResult{Skipped: len(rows)}, fmt.Errorf("failed to commit: %w", err)
	}
	return result, nil
}

func (s *Store) upsertRow(ctx context.Context, tx pgx.Tx, code, market string, p contracts.PricePoint) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if _, err := sp.Exec(ctx, upsertPriceSQL, code, market, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

// QueryPrices returns the series newest-first
func (s *Store) QueryPrices(ctx context.Context, code string, q store.PriceQuery) (contracts.PriceSeries, error) {
	var (
		where = []string{"code = $1"}
		args  = []interface{}{code}
	)
	if q.Start != nil {
		args = append(args, contracts.CalendarDay(*q.Start))
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if q.End != nil {
		args = append(args, contracts.CalendarDay(*q.End))
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	args = append(args, q.EffectiveLimit())

	query := fmt.Sprintf(`
		SELECT date, open, high, low, close, volume
		FROM signal.stock_prices
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d
	`, strings.Join(where, " AND "), len(args))

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var series contracts.PriceSeries
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		p.Date = contracts.CalendarDay(p.Date)
		series = append(series, p)
	}
	return series, rows.Err()
}

// LatestDate returns the most recent stored date for code
func (s *Store) LatestDate(ctx context.Context, code string) (time.Time, bool, error) {
	var latest *time.Time
	err := s.db.Pool.QueryRow(ctx,
		`SELECT MAX(date) FROM signal.stock_prices WHERE code = $1`, code,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get latest date: %w", err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return contracts.CalendarDay(*latest), true, nil
}

// SaveEvaluation upserts on (code, date, evaluator)
func (s *Store) SaveEvaluation(ctx context.Context, rec contracts.EvaluationRecord) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO signal.evaluations (code, date, evaluator, score, details)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (code, date, evaluator) DO UPDATE SET
			score      = EXCLUDED.score,
			details    = EXCLUDED.details,
			created_at = now()
	`, rec.Code, contracts.CalendarDay(rec.Date), rec.Evaluator, rec.Score, string(details))
	if err != nil {
		return fmt.Errorf("failed to save evaluation %s/%s: %w", rec.Code, rec.Evaluator, err)
	}
	return nil
}

// GetEvaluations returns all evaluator records for a code on date
func (s *Store) GetEvaluations(ctx context.Context, code string, date time.Time) ([]contracts.EvaluationRecord, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT evaluator, score, details, created_at
		FROM signal.evaluations
		WHERE code = $1 AND date = $2
		ORDER BY evaluator
	`, code, contracts.CalendarDay(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var out []contracts.EvaluationRecord
	for rows.Next() {
		rec := contracts.EvaluationRecord{Code: code, Date: contracts.CalendarDay(date)}
		var details []byte
		if err := rows.Scan(&rec.Evaluator, &rec.Score, &details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &rec.Details); err != nil {
				return nil, fmt.Errorf("decode details: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveReport upserts on (market, date, format)
func (s *Store) SaveReport(ctx context.Context, rec contracts.ReportRecord) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO signal.reports (market, date, content, format)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market, date, format) DO UPDATE SET
			content    = EXCLUDED.content,
			created_at = now()
	`, rec.Market, contracts.CalendarDay(rec.Date), rec.Content, rec.Format)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", rec.Market, err)
	}
	return nil
}

// GetReport returns store.ErrNotFound when no report exists
func (s *Store) GetReport(ctx context.Context, market string, date time.Time, format string) (*contracts.ReportRecord, error) {
	rec := contracts.ReportRecord{Market: market, Date: contracts.CalendarDay(date), Format: format}

	err := s.db.Pool.QueryRow(ctx, `
		SELECT content, created_at FROM signal.reports
		WHERE market = $1 AND date = $2 AND format = $3
	`, market, rec.Date, format).Scan(&rec.Content, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &rec, nil
}
