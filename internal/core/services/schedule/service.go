package schedule

import (
	"context"

	"github.com/oNya685/SysYTest/internal/domain"
)

// ProgressFunc receives each finished case in completion order. percent is
// completed/total*100, non-decreasing, reaching 100 exactly when the last
// case finishes.
type ProgressFunc func(tc domain.TestCase, result domain.TestResult, percent float64)

// ISchedulerService drives bounded-concurrency execution of a test suite
// across the slot pool.
type ISchedulerService interface {
	// RunAll executes every case and blocks until all dispatched work has
	// finished. Cancelling ctx stops further submissions; tasks already
	// dispatched are not preempted; they run to completion or hit their
	// own stage timeouts. Results are returned in completion order.
	RunAll(ctx context.Context, cases []domain.TestCase, callback ProgressFunc) []domain.CaseResult
}
