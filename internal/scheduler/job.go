package scheduler

import (
	"context"
	"sync"
	"time"
)

// historyLimit bounds the runs kept per job
const historyLimit = 100

// Job is a scheduled analysis run
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run analyzes once and reports what it produced
	Run(ctx context.Context) (RunCounts, error)

	// Schedule is a six-field cron expression, e.g. "0 0 16 * * 1-5" (평일 16:00)
	Schedule() string
}

// RunCounts is what one analysis run produced
type RunCounts struct {
	Analyzed int `json:"analyzed"`
	Skipped  int `json:"skipped"`
	Reports  int `json:"reports"`
}

// JobResult is one scheduled run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Counts    RunCounts     `json:"counts"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the latest runs of one job
type JobHistory struct {
	mu      sync.RWMutex
	results []JobResult
}

// Add records a run, dropping the oldest beyond historyLimit
func (h *JobHistory) Add(result JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, result)
	if len(h.results) > historyLimit {
		h.results = append([]JobResult(nil), h.results[len(h.results)-historyLimit:]...)
	}
}

// Len returns the number of recorded runs
func (h *JobHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Latest returns up to n most recent runs, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.results) {
		n = len(h.results)
	}
	out := make([]JobResult, n)
	copy(out, h.results[len(h.results)-n:])
	return out
}

// Failures returns the runs that failed after all retries
func (h *JobHistory) Failures() []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failed := make([]JobResult, 0)
	for _, r := range h.results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is successful runs over recorded runs (0 when empty)
func (h *JobHistory) SuccessRate() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.results))
}

// Totals sums the counts of successful runs
func (h *JobHistory) Totals() RunCounts {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var t RunCounts
	for _, r := range h.results {
		if !r.Success {
			continue
		}
		t.Analyzed += r.Counts.Analyzed
		t.Skipped += r.Counts.Skipped
		t.Reports += r.Counts.Reports
	}
	return t
}
