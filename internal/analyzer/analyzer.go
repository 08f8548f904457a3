package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/evaluator"
	"github.com/wonny/stocksignal/internal/store"
	"github.com/wonny/stocksignal/pkg/logger"
)

var (
	// ErrDataUnavailable means no usable series could be resolved for an instrument
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientHistory means every evaluator fell back to the neutral score
	ErrInsufficientHistory = errors.New("insufficient history for all evaluators")

	// ErrNoInstruments means the market group has nothing configured
	ErrNoInstruments = errors.New("no instruments configured")
)

// Universe resolves the instrument list of a market group (kr, us)
type Universe interface {
	Instruments(group string) []contracts.Instrument
}

// Locker serialises runs across processes
type Locker interface {
	Acquire(ctx context.Context, name string) (func(context.Context) error, error)
}

// Options holds analyzer tuning
type Options struct {
	LookbackDays int           // 수집 기간 (calendar days)
	HistoryLimit int           // 평가에 사용할 최대 봉 수
	FetchDelay   time.Duration // 데이터 소스 호출 간 최소 간격
}

// Analyzer drives the per-instrument pipeline: cache check, fetch, persist,
// evaluate, aggregate.
// ⭐ SSOT: 분석 파이프라인 오케스트레이션은 이 패키지에서만
//
// Instruments are processed one at a time. The store handle is owned by the
// caller and shared for the whole run.
type Analyzer struct {
	store      store.Store
	source     contracts.DataSource
	evaluators []evaluator.Evaluator
	universe   Universe
	reporters  []contracts.Reporter
	locker     Locker
	opts       Options

	fetchMu   sync.Mutex
	lastFetch time.Time
	logger     *logger.Logger
}

// New creates an Analyzer
func New(
	st store.Store,
	source contracts.DataSource,
	evaluators []evaluator.Evaluator,
	universe Universe,
	opts Options,
	log *logger.Logger,
) *Analyzer {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 120
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = store.DefaultLimit
	}

	return &Analyzer{
		store:      st,
		source:     source,
		evaluators: evaluators,
		universe:   universe,
		opts:       opts,
		logger:     log.WithField("module", "analyzer"),
	}
}

// WithReporters sets the reporters invoked at the end of Run
func (a *Analyzer) WithReporters(reporters ...contracts.Reporter) *Analyzer {
	a.reporters = reporters
	return a
}

// WithLocker sets the cross-process run lock
func (a *Analyzer) WithLocker(l Locker) *Analyzer {
	a.locker = l
	return a
}

// Evaluators returns the configured evaluator names in run order
func (a *Analyzer) Evaluators() []string {
	names := make([]string, len(a.evaluators))
	for i, e := range a.evaluators {
		names[i] = e.Name()
	}
	return names
}

// AnalyzeInstrument runs the pipeline for one instrument.
// Returns ErrDataUnavailable or ErrInsufficientHistory when the instrument
// should be skipped.
func (a *Analyzer) AnalyzeInstrument(ctx context.Context, inst contracts.Instrument, runDate time.Time, force bool) (*contracts.AggregateResult, error) {
	runDate = contracts.CalendarDay(runDate)
	log := a.logger.WithFields(map[string]interface{}{
		"code":   inst.Code,
		"market": inst.Market,
	})

	series, err := a.resolveSeries(ctx, inst, runDate, force)
	if err != nil {
		return nil, err
	}

	results := make([]contracts.EvaluatorResult, 0, len(a.evaluators))
	fallbacks := 0
	for _, e := range a.evaluators {
		verdict := e.Evaluate(series)
		details := e.Details(series)
		insufficient := evaluator.IsInsufficient(details)
		if insufficient {
			fallbacks++
		}

		results = append(results, contracts.EvaluatorResult{
			Name:         e.Name(),
			Verdict:      verdict,
			Weight:       e.Weight(),
			Details:      details,
			Insufficient: insufficient,
		})

		// 재실행 시 덮어쓰기
		if err := a.store.SaveEvaluation(ctx, contracts.EvaluationRecord{
			Code:      inst.Code,
			Date:      runDate,
			Evaluator: e.Name(),
			Score:     verdict.Score,
			Details:   details,
		}); err != nil {
			log.WithError(err).WithField("evaluator", e.Name()).Warn("Failed to save evaluation")
		}
	}

	if len(a.evaluators) > 0 && fallbacks == len(a.evaluators) {
		log.WithField("points", len(series)).Warn("All evaluators fell back")
		return nil, fmt.Errorf("%s: %w", inst.Code, ErrInsufficientHistory)
	}

	change, changeRate := DayChange(series)
	overall := OverallScore(results)

	return &contracts.AggregateResult{
		Instrument:   inst,
		Date:         runDate,
		CurrentPrice: series[0].Close,
		Change:       change,
		ChangeRate:   changeRate,
		Evaluations:  results,
		OverallScore: overall,
		OverallTier:  contracts.TierFor(overall),
	}, nil
}

// resolveSeries applies the freshness rule and returns a non-empty series
func (a *Analyzer) resolveSeries(ctx context.Context, inst contracts.Instrument, runDate time.Time, force bool) (contracts.PriceSeries, error) {
	log := a.logger.WithField("code", inst.Code)

	if !force {
		latest, ok, err := a.store.LatestDate(ctx, inst.Code)
		if err != nil {
			log.WithError(err).Warn("Latest date lookup failed, fetching")
		} else if store.IsFresh(latest, ok, runDate) {
			log.Debug("Cache hit")
			return a.query(ctx, inst, runDate)
		}
	}

	start := runDate.AddDate(0, 0, -a.opts.LookbackDays)
	rows, err := a.collect(ctx, inst, start, runDate)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).Warn("Data source failed")
		return nil, fmt.Errorf("%s: %w: %v", inst.Code, ErrDataUnavailable, err)
	}
	if len(rows) == 0 {
		log.Warn("Data source returned no rows")
		return nil, fmt.Errorf("%s: %w", inst.Code, ErrDataUnavailable)
	}

	res, err := a.store.UpsertPrices(ctx, inst.Code, inst.Market, rows)
	if err != nil {
		log.WithError(err).Warn("Failed to persist prices")
	} else {
		log.WithFields(map[string]interface{}{
			"saved":   res.Saved,
			"skipped": res.Skipped,
		}).Info("Prices persisted")
	}

	return a.query(ctx, inst, runDate)
}

// collect calls the data source. FetchDelay is a pause counted from the end
// of the previous call, so a slow call never shortens the next wait.
func (a *Analyzer) collect(ctx context.Context, inst contracts.Instrument, start, end time.Time) ([]contracts.PriceRow, error) {
	a.fetchMu.Lock()
	defer a.fetchMu.Unlock()

	if a.opts.FetchDelay > 0 && !a.lastFetch.IsZero() {
		if wait := a.opts.FetchDelay - time.Since(a.lastFetch); wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	defer func() { a.lastFetch = time.Now() }()

	return a.source.Collect(ctx, inst.Code, inst.Market, start, end)
}

func (a *Analyzer) query(ctx context.Context, inst contracts.Instrument, runDate time.Time) (contracts.PriceSeries, error) {
	series, err := a.store.QueryPrices(ctx, inst.Code, store.PriceQuery{
		End:   &runDate,
		Limit: a.opts.HistoryLimit,
	})
	if err != nil {
		a.logger.WithError(err).WithField("code", inst.Code).Warn("Price query failed")
		return nil, fmt.Errorf("%s: %w: %v", inst.Code, ErrDataUnavailable, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", inst.Code, ErrDataUnavailable)
	}
	return series, nil
}

// OverallScore combines evaluator scores.
//
// The divisor is the number of evaluators, not the sum of weights, so
// non-unit weights do not yield a normalised weighted mean. This matches
// the established scoring and is kept until product decides otherwise.
// No evaluators → 2.0.
func OverallScore(results []contracts.EvaluatorResult) float64 {
	if len(results) == 0 {
		return evaluator.NeutralScore
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Verdict.Score * r.Weight
	}
	return sum / float64(len(results))
}

// DayChange returns close[0]-close[1] and the percent change; 0, 0 when
// fewer than two points exist.
func DayChange(series contracts.PriceSeries) (float64, float64) {
	if len(series) < 2 {
		return 0, 0
	}
	prev := series[1].Close
	change := series[0].Close - prev
	if prev <= 0 {
		return change, 0
	}
	return change, change / prev * 100
}
