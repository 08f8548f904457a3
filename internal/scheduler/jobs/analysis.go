package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/stocksignal/internal/analyzer"
	"github.com/wonny/stocksignal/internal/scheduler"
	"github.com/wonny/stocksignal/pkg/logger"
)

// Runner runs one market group analysis
type Runner interface {
	Run(ctx context.Context, group string, runDate time.Time, force bool) (*analyzer.RunSummary, error)
}

// AnalysisJob analyzes one market group daily
// ⭐ SSOT: 시장별 분석 스케줄은 이 Job에서만
type AnalysisJob struct {
	runner   Runner
	group    string
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewAnalysisJob creates a job for group (kr, us) on a six-field cron schedule.
// The run date is today in KST.
func NewAnalysisJob(runner Runner, group, schedule string, log *logger.Logger) *AnalysisJob {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.Local
	}
	return &AnalysisJob{
		runner:   runner,
		group:    group,
		schedule: schedule,
		now:      func() time.Time { return time.Now().In(loc) },
		logger:   log.WithField("job", "analysis_"+group),
	}
}

// Name returns the job name
func (j *AnalysisJob) Name() string {
	return "analysis_" + j.group
}

// Schedule returns the cron schedule
func (j *AnalysisJob) Schedule() string {
	return j.schedule
}

// Run analyzes today's data for the group
func (j *AnalysisJob) Run(ctx context.Context) (scheduler.RunCounts, error) {
	j.logger.Info("Starting scheduled analysis")

	summary, err := j.runner.Run(ctx, j.group, j.now(), false)
	if err != nil {
		// 종목 미설정은 재시도해도 해결되지 않음
		if errors.Is(err, analyzer.ErrNoInstruments) {
			j.logger.WithError(err).Warn("Nothing to analyze")
			return scheduler.RunCounts{}, nil
		}
		return scheduler.RunCounts{}, fmt.Errorf("analyze %s: %w", j.group, err)
	}

	counts := scheduler.RunCounts{
		Analyzed: len(summary.Results),
		Skipped:  len(summary.Skipped),
		Reports:  len(summary.Reports),
	}

	j.logger.WithFields(map[string]interface{}{
		"success": counts.Analyzed,
		"skipped": counts.Skipped,
		"reports": summary.Reports,
	}).Info("Scheduled analysis completed")
	return counts, nil
}
