package pipeline

import (
	"context"

	"github.com/oNya685/SysYTest/internal/domain"
)

// IPipelineService runs one test case end-to-end inside an assigned worker
// slot: candidate compile, simulated execution, reference execution,
// output comparison. Each stage may short-circuit into a terminal result.
type IPipelineService interface {
	Run(ctx context.Context, tc domain.TestCase, slot domain.WorkerSlot) domain.TestResult
}
