package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(context.Context) (RunCounts, error) {
	n := j.calls.Add(1)
	if n <= j.failures {
		return RunCounts{Analyzed: 9}, errors.New("boom")
	}
	return RunCounts{Analyzed: 3, Skipped: 1, Reports: 2}, nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 0 16 * * 1-5"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "0 16 * * *"}), "five fields")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJobRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetry(2, time.Millisecond))
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunJob("flaky")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, RunCounts{Analyzed: 3, Skipped: 1, Reports: 2}, res.Counts)
	assert.Equal(t, int32(3), job.calls.Load())

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, res.Counts, stats.LastCounts)
	assert.Equal(t, res.Counts, stats.Totals)
	require.NotNil(t, stats.LastSuccess)
}

func TestRunJobGivesUp(t *testing.T) {
	s := New(logger.Nop(), WithRetry(1, time.Millisecond))
	job := &countingJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunJob("broken")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "boom", res.Error)
	assert.Equal(t, 2, res.Attempts)
	assert.Zero(t, res.Counts, "failed attempts record no counts")
	assert.Equal(t, int32(2), job.calls.Load())

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Equal(t, 0.0, history.SuccessRate())
	assert.Zero(t, history.Totals())

	_, err = s.RunJob("missing")
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	s := New(logger.Nop(), WithLocation(time.UTC))
	require.NoError(t, s.AddJob(&countingJob{name: "hourly", schedule: "@hourly"}))
	s.Start()
	defer s.Stop()

	next, ok := s.NextRun("hourly")
	require.True(t, ok)
	assert.True(t, next.After(time.Now()))

	_, ok = s.NextRun("nope")
	assert.False(t, ok)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Empty(t, h.Latest(5))
	assert.Equal(t, 0.0, h.SuccessRate())

	for i := 0; i < 120; i++ {
		h.Add(JobResult{Success: i%2 == 0, Counts: RunCounts{Analyzed: 2, Skipped: 1}})
	}
	assert.Equal(t, 100, h.Len())
	assert.Len(t, h.Latest(5), 5)
	assert.Len(t, h.Failures(), 50)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.Equal(t, RunCounts{Analyzed: 100, Skipped: 50}, h.Totals(), "only successful runs count")

	latest := h.Latest(1)
	latest[0].Success = true
	assert.False(t, h.Latest(1)[0].Success, "Latest returns a copy")
}
