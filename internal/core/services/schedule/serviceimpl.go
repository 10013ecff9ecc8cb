package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oNya685/SysYTest/internal/config"
	"github.com/oNya685/SysYTest/internal/core/ports/primary"
	"github.com/oNya685/SysYTest/internal/core/ports/secondary"
	"github.com/oNya685/SysYTest/internal/core/services/pipeline"
	"github.com/oNya685/SysYTest/internal/domain"
	"github.com/oNya685/SysYTest/internal/static/errs"
)

var _ ISchedulerService = (*SchedulerService)(nil)

// SchedulerService fans cases out across the slot pool. Each case is
// pre-assigned slot index mod pool size; one worker goroutine owns each
// slot and drains its queue sequentially, which serializes same-slot
// occupants without any runtime locking.
type SchedulerService struct {
	cfg       *config.ParallelConfig
	project   domain.CompilerProjectConfig
	pool      *SlotPool
	pipeline  pipeline.IPipelineService
	artifacts secondary.ArtifactSource
	logger    primary.Logger
}

func NewSchedulerService(
	cfg *config.ParallelConfig,
	project domain.CompilerProjectConfig,
	pool *SlotPool,
	pipelineSvc pipeline.IPipelineService,
	artifacts secondary.ArtifactSource,
	logger primary.Logger,
) *SchedulerService {
	return &SchedulerService{
		cfg:       cfg,
		project:   project,
		pool:      pool,
		pipeline:  pipelineSvc,
		artifacts: artifacts,
		logger:    logger,
	}
}

// RunAll executes the suite. See ISchedulerService for the contract.
func (s *SchedulerService) RunAll(ctx context.Context, cases []domain.TestCase, callback ProgressFunc) []domain.CaseResult {
	total := len(cases)
	if total == 0 {
		return nil
	}
	runID := uuid.New()

	artifact := s.artifacts.Artifact()
	if artifact == nil || artifact.Language != s.project.Language {
		// Session build missing or stale: every case short-circuits to
		// Skipped without spawning a single process.
		s.logger.Warn("No usable build artifact, skipping whole suite", "runId", runID, "cases", total)
		return s.skipAll(cases, callback)
	}

	slots := s.pool.Size()
	s.logger.Info("Starting suite",
		"runId", runID,
		"cases", total,
		"slots", slots,
		"rampUp", total >= s.cfg.RampUpThreshold)

	queues := make([]chan domain.TestCase, slots)
	depth := total/slots + 1
	for i := range queues {
		queues[i] = make(chan domain.TestCase, depth)
	}
	completions := make(chan domain.CaseResult, total)

	var workers sync.WaitGroup
	for i := 0; i < slots; i++ {
		workers.Add(1)
		go func(slot domain.WorkerSlot, queue <-chan domain.TestCase) {
			defer workers.Done()
			for tc := range queue {
				result := s.pipeline.Run(ctx, tc, slot)
				completions <- domain.CaseResult{Case: tc, Result: result}
			}
		}(s.pool.Slot(i), queues[i])
	}

	// Admission happens on a dedicated goroutine so the collector below can
	// stream callbacks while the ramp-up window is still being spread out.
	go func() {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		var interval time.Duration
		if total >= s.cfg.RampUpThreshold {
			interval = s.cfg.RampUpWindow / time.Duration(total)
		}
		for i, tc := range cases {
			// Cancellation is cooperative and only honored between
			// submissions; dispatched tasks keep their slot until done.
			if ctx.Err() != nil {
				s.logger.Warn("Suite cancelled, stopping submissions",
					"runId", runID, "submitted", i, "total", total)
				return
			}
			queues[i%slots] <- tc
			if interval > 0 && i < total-1 {
				select {
				case <-ctx.Done():
				case <-time.After(interval):
				}
			}
		}
	}()

	go func() {
		workers.Wait()
		close(completions)
	}()

	results := make([]domain.CaseResult, 0, total)
	completed := 0
	for cr := range completions {
		completed++
		results = append(results, cr)
		if callback != nil {
			callback(cr.Case, cr.Result, float64(completed)/float64(total)*100)
		}
	}

	s.logger.Info("Suite finished", "runId", runID, "completed", completed, "total", total)
	return results
}

func (s *SchedulerService) skipAll(cases []domain.TestCase, callback ProgressFunc) []domain.CaseResult {
	total := len(cases)
	results := make([]domain.CaseResult, 0, total)
	for i, tc := range cases {
		result := domain.Skip(errs.NoArtifact.Error())
		results = append(results, domain.CaseResult{Case: tc, Result: result})
		if callback != nil {
			callback(tc, result, float64(i+1)/float64(total)*100)
		}
	}
	return results
}
