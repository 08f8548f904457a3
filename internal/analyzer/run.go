package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
)

// MarketAll runs every market group
const MarketAll = "all"

// SkippedInstrument records why an instrument produced no result
type SkippedInstrument struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// RunSummary is the outcome of one market run
type RunSummary struct {
	Market   string                      `json:"market"`
	Date     time.Time                   `json:"date"`
	Results  []contracts.AggregateResult `json:"results"`
	Skipped  []SkippedInstrument         `json:"skipped"`
	Reports  []string                    `json:"reports"`
	Duration time.Duration               `json:"duration"`
}

// Groups expands a market flag (kr, us, all) into market groups
func Groups(market string) ([]string, error) {
	switch market {
	case contracts.GroupKR, contracts.GroupUS:
		return []string{market}, nil
	case MarketAll:
		return []string{contracts.GroupKR, contracts.GroupUS}, nil
	default:
		return nil, fmt.Errorf("unknown market %q (kr, us, all)", market)
	}
}

// Run analyzes every instrument of a market group, then renders and saves
// reports. Per-instrument failures are logged and skipped.
func (a *Analyzer) Run(ctx context.Context, group string, runDate time.Time, force bool) (*RunSummary, error) {
	runDate = contracts.CalendarDay(runDate)
	instruments := a.universe.Instruments(group)
	if len(instruments) == 0 {
		return nil, fmt.Errorf("%s: %w", group, ErrNoInstruments)
	}

	if a.locker != nil {
		release, err := a.locker.Acquire(ctx, "analyze:"+group)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				a.logger.WithError(err).Warn("Failed to release run lock")
			}
		}()
	}

	start := time.Now()
	a.logger.WithFields(map[string]interface{}{
		"market":      group,
		"date":        runDate.Format(contracts.DateLayout),
		"instruments": len(instruments),
		"evaluators":  a.Evaluators(),
		"source":      a.source.Name(),
		"force":       force,
	}).Info("Starting analysis")

	summary := &RunSummary{Market: group, Date: runDate}
	for _, inst := range instruments {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := a.AnalyzeInstrument(ctx, inst, runDate, force)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			a.logger.WithError(err).WithField("code", inst.Code).Warn("Instrument skipped")
			summary.Skipped = append(summary.Skipped, SkippedInstrument{Code: inst.Code, Reason: err.Error()})
			continue
		}

		a.logger.WithFields(map[string]interface{}{
			"code":  inst.Code,
			"score": res.OverallScore,
			"tier":  res.OverallTier.Marker,
		}).Info("Instrument evaluated")
		summary.Results = append(summary.Results, *res)
	}

	var reportErr error
	if len(summary.Results) > 0 {
		summary.Reports, reportErr = a.report(ctx, group, runDate, summary.Results)
	}
	summary.Duration = time.Since(start)

	a.logger.WithFields(map[string]interface{}{
		"market":   group,
		"success":  len(summary.Results),
		"skipped":  len(summary.Skipped),
		"reports":  len(summary.Reports),
		"duration": summary.Duration.String(),
	}).Info("Analysis completed")

	return summary, reportErr
}

// RunMarkets runs each group of a market flag (kr, us, all) in order
func (a *Analyzer) RunMarkets(ctx context.Context, market string, runDate time.Time, force bool) ([]*RunSummary, error) {
	groups, err := Groups(market)
	if err != nil {
		return nil, err
	}

	var (
		summaries []*RunSummary
		errs      []error
		empty     int
	)
	for _, g := range groups {
		s, err := a.Run(ctx, g, runDate, force)
		// "all" tolerates an unconfigured group as long as one group has instruments
		if errors.Is(err, ErrNoInstruments) && len(groups) > 1 {
			a.logger.WithField("market", g).Warn("No instruments configured, skipping market")
			empty++
			continue
		}
		if s != nil {
			summaries = append(summaries, s)
		}
		if err != nil {
			if ctx.Err() != nil {
				return summaries, err
			}
			errs = append(errs, fmt.Errorf("%s: %w", g, err))
		}
	}
	if empty == len(groups) {
		return nil, fmt.Errorf("%s: %w", market, ErrNoInstruments)
	}
	return summaries, errors.Join(errs...)
}

func (a *Analyzer) report(ctx context.Context, group string, runDate time.Time, results []contracts.AggregateResult) ([]string, error) {
	var (
		paths []string
		errs  []error
	)
	for _, r := range a.reporters {
		content, err := r.Generate(ctx, group, runDate, results)
		if err != nil {
			errs = append(errs, fmt.Errorf("generate %s report: %w", r.Format(), err))
			continue
		}

		path, err := r.Save(group, runDate, content)
		if err != nil {
			errs = append(errs, fmt.Errorf("save %s report: %w", r.Format(), err))
			continue
		}
		paths = append(paths, path)

		if err := a.store.SaveReport(ctx, contracts.ReportRecord{
			Market:  group,
			Date:    runDate,
			Content: content,
			Format:  r.Format(),
		}); err != nil {
			a.logger.WithError(err).WithField("format", r.Format()).Warn("Failed to store report")
		}

		a.logger.WithFields(map[string]interface{}{
			"market": group,
			"format": r.Format(),
			"path":   path,
		}).Info("Report saved")
	}
	return paths, errors.Join(errs...)
}
