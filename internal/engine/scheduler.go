// internal/engine/scheduler.go
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Scheduler invokes the orchestrator on a fixed interval.
// Runs never overlap: a tick that arrives while the previous run is still in
// flight is dropped, and the run for that interval happens on the next tick.
// Combined with the orchestrator's in-flight pair guard this keeps at most
// one action in flight per (rule, campaign) at all times.
type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration
	logger       *slog.Logger
	running      atomic.Bool
}

// NewScheduler creates a scheduler ticking at the given interval.
func NewScheduler(orchestrator *Orchestrator, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		logger:       logger,
	}
}

// Start blocks running scheduled evaluation passes until ctx is cancelled.
// The first run fires immediately rather than waiting one full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one pass unless the previous one is still in flight.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in flight, skipping tick")
		return
	}
	defer s.running.Store(false)

	if _, err := s.orchestrator.Run(ctx); err != nil {
		s.logger.Error("run aborted", "error", err)
	}
}
