package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/internal/analyzer"
	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/scheduler"
	"github.com/wonny/stocksignal/pkg/logger"
)

type fakeRunner struct {
	group   string
	date    time.Time
	err     error
	summary analyzer.RunSummary
}

func (f *fakeRunner) Run(_ context.Context, group string, runDate time.Time, _ bool) (*analyzer.RunSummary, error) {
	f.group = group
	f.date = runDate
	if f.err != nil {
		return nil, f.err
	}
	s := f.summary
	s.Market, s.Date = group, runDate
	return &s, nil
}

func TestAnalysisJob(t *testing.T) {
	r := &fakeRunner{summary: analyzer.RunSummary{
		Results: make([]contracts.AggregateResult, 2),
		Skipped: []analyzer.SkippedInstrument{{Code: "TSLA", Reason: "data unavailable"}},
		Reports: []string{"reports/us_2025-03-14.md"},
	}}
	j := NewAnalysisJob(r, "us", "0 30 7 * * 2-6", logger.Nop())
	fixed := time.Date(2025, 3, 14, 7, 30, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	assert.Equal(t, "analysis_us", j.Name())
	assert.Equal(t, "0 30 7 * * 2-6", j.Schedule())

	counts, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scheduler.RunCounts{Analyzed: 2, Skipped: 1, Reports: 1}, counts)
	assert.Equal(t, "us", r.group)
	assert.Equal(t, fixed, r.date)
}

func TestAnalysisJobErrors(t *testing.T) {
	r := &fakeRunner{err: fmt.Errorf("us: %w", analyzer.ErrNoInstruments)}
	j := NewAnalysisJob(r, "us", "@daily", logger.Nop())
	counts, err := j.Run(context.Background())
	assert.NoError(t, err, "no instruments is not retried")
	assert.Zero(t, counts)

	r.err = errors.New("store closed")
	_, err = j.Run(context.Background())
	assert.Error(t, err)
}
