package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
)

// SaveEvaluation upserts on (code, date, evaluator)
func (s *Store) SaveEvaluation(ctx context.Context, rec contracts.EvaluationRecord) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (code, date, evaluator, score, details)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (code, date, evaluator) DO UPDATE SET
			score      = excluded.score,
			details    = excluded.details,
			created_at = CURRENT_TIMESTAMP
	`, rec.Code, rec.Date.Format(contracts.DateLayout), rec.Evaluator, rec.Score, string(details))
	if err != nil {
		return fmt.Errorf("save evaluation %s/%s: %w", rec.Code, rec.Evaluator, err)
	}
	return nil
}

// GetEvaluations returns all evaluator records for a code on date
func (s *Store) GetEvaluations(ctx context.Context, code string, date time.Time) ([]contracts.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT evaluator, score, details
		FROM evaluations
		WHERE code = ? AND date = ?
		ORDER BY evaluator
	`, code, date.Format(contracts.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []contracts.EvaluationRecord
	for rows.Next() {
		rec := contracts.EvaluationRecord{Code: code, Date: contracts.CalendarDay(date)}
		var details sql.NullString
		if err := rows.Scan(&rec.Evaluator, &rec.Score, &details); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &rec.Details); err != nil {
				return nil, fmt.Errorf("decode details: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveReport upserts on (market, date, format)
func (s *Store) SaveReport(ctx context.Context, rec contracts.ReportRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (market, date, content, format)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (market, date, format) DO UPDATE SET
			content    = excluded.content,
			created_at = CURRENT_TIMESTAMP
	`, rec.Market, rec.Date.Format(contracts.DateLayout), rec.Content, rec.Format)
	if err != nil {
		return fmt.Errorf("save report %s: %w", rec.Market, err)
	}
	return nil
}

// GetReport returns store.ErrNotFound when no report exists
func (s *Store) GetReport(ctx context.Context, market string, date time.Time, format string) (*contracts.ReportRecord, error) {
	rec := contracts.ReportRecord{Market: market, Date: contracts.CalendarDay(date), Format: format}
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT content, created_at FROM reports
		WHERE market = ? AND date = ? AND format = ?
	`, market, date.Format(contracts.DateLayout), format).Scan(&rec.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	if t, perr := time.Parse("2006-01-02 15:04:05", createdAt); perr == nil {
		rec.CreatedAt = t
	}
	return &rec, nil
}
