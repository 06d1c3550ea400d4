// internal/engine/orchestrator.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adspilot/engine/internal/rules"
	"github.com/adspilot/engine/internal/types"
)

/*
 * Run orchestration.
 *
 * One Run evaluates every enabled rule against every campaign in its
 * assignment set and writes exactly one execution log record per
 * (rule, campaign) pair. State machine per pair:
 *
 *   PENDING -> EVALUATING -> SKIPPED            (rule did not fire)
 *                         -> FIRED -> SUCCESS   (action applied)
 *                                  -> FAILED    (action or lookup failed)
 *
 * Every record written during one run carries the run's UUIDv7 RunID, so the
 * log reader groups records without time-window heuristics (the legacy ±10s
 * window remains a reader-side fallback for pre-RunID rows).
 *
 * Pairs are independent: no shared mutable state exists between them beyond
 * the log store, so they fan out across a bounded worker pool. Failures are
 * isolated to the smallest scope - one action, one campaign, one rule - and
 * never abort the rest of the run. Only rule listing failure (database
 * unreachable before any work starts) aborts.
 *
 * At-most-once per pair per run: the in-flight set rejects a pair that is
 * still executing from a previous tick, and the scheduler never overlaps
 * whole runs. Each log insert commits independently, so a later campaign's
 * outcome is never rolled back by an earlier campaign's failure.
 */

// RuleStore lists rule definitions for evaluation.
type RuleStore interface {
	ListEnabled(ctx context.Context) ([]types.RuleRecord, error)
}

// MetricsStore loads campaigns with their report rows.
type MetricsStore interface {
	GetCampaign(ctx context.Context, tokoID types.TokoID, campaignID types.CampaignID) (*types.Campaign, error)
}

// StoreRegistry provides marketplace credentials per toko and records
// stores whose sessions need re-authentication.
type StoreRegistry interface {
	Credentials(ctx context.Context, tokoID types.TokoID) (types.StoreCredentials, error)
	MarkNeedsRelogin(ctx context.Context, tokoID types.TokoID) error
}

// LogStore persists execution log records.
type LogStore interface {
	Insert(ctx context.Context, rec types.ExecutionLogRecord) error
}

// RunSummary aggregates one run's outcomes for metrics and notifications.
type RunSummary struct {
	RunID     types.RunID
	StartedAt time.Time
	Duration  time.Duration
	Evaluated int
	Fired     int
	Skipped   int
	Failed    int
}

// Orchestrator drives the evaluate -> match -> act pipeline.
type Orchestrator struct {
	ruleStore     RuleStore
	metricsStore  MetricsStore
	storeRegistry StoreRegistry
	logStore      LogStore
	executor      *Executor
	notifier      Notifier
	logger        *slog.Logger

	workers       int
	actionTimeout time.Duration
	inflight      *inflightSet
}

// OrchestratorConfig bounds the worker pool and external call budget.
type OrchestratorConfig struct {
	Workers       int           // concurrent (rule, campaign) evaluations
	ActionTimeout time.Duration // per marketplace mutation
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(
	ruleStore RuleStore,
	metricsStore MetricsStore,
	storeRegistry StoreRegistry,
	logStore LogStore,
	executor *Executor,
	notifier Notifier,
	logger *slog.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = 60 * time.Second
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{
		ruleStore:     ruleStore,
		metricsStore:  metricsStore,
		storeRegistry: storeRegistry,
		logStore:      logStore,
		executor:      executor,
		notifier:      notifier,
		logger:        logger,
		workers:       cfg.Workers,
		actionTimeout: cfg.ActionTimeout,
		inflight:      newInflightSet(),
	}
}

// job is one (rule, campaign) pair queued for evaluation.
type job struct {
	rule *types.Rule
	ref  types.CampaignRef
}

// Run executes one full evaluation pass over all enabled rules.
// Returns an error only when the rule list itself cannot be loaded.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	summary := RunSummary{
		RunID:     types.NewRunID(),
		StartedAt: start,
	}

	records, err := o.ruleStore.ListEnabled(ctx)
	if err != nil {
		return summary, fmt.Errorf("list enabled rules: %w", err)
	}

	var jobs []job
	for _, rec := range records {
		rule, err := rules.DecodeRule(rec)
		if err != nil {
			// Malformed rule configuration skips the whole rule, never
			// crashes the run.
			ruleParseFailures.Inc()
			o.logger.Warn("skipping rule with malformed configuration",
				"rule_id", rec.ID, "error", err)
			continue
		}
		for _, ref := range rule.Assignments {
			jobs = append(jobs, job{rule: rule, ref: ref})
		}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	jobCh := make(chan job)

	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				outcome := o.evaluatePair(ctx, summary.RunID, j)
				mu.Lock()
				switch outcome {
				case outcomeSkipped:
					summary.Evaluated++
					summary.Skipped++
				case outcomeSuccess:
					summary.Evaluated++
					summary.Fired++
				case outcomeFailed:
					summary.Evaluated++
					summary.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-ctx.Done():
			// Stop feeding; in-flight pairs finish and write their logs.
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobCh)
	wg.Wait()

	summary.Duration = time.Since(start)
	runsTotal.Inc()
	runDuration.Observe(summary.Duration.Seconds())

	o.logger.Info("run complete",
		"run_id", summary.RunID,
		"evaluated", summary.Evaluated,
		"fired", summary.Fired,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration)

	if summary.Failed > 0 {
		if err := o.notifier.NotifyRunFailures(ctx, summary); err != nil {
			o.logger.Warn("failure notification failed", "run_id", summary.RunID, "error", err)
		}
	}

	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSuccess
	outcomeFailed
	outcomeBusy
)

// evaluatePair runs the full pipeline for one (rule, campaign) pair and
// writes its execution log record. Never returns an error: every failure
// becomes a failed log record so campaigns stay isolated from each other.
func (o *Orchestrator) evaluatePair(ctx context.Context, runID types.RunID, j job) outcome {
	if !o.inflight.acquire(j.rule.ID, j.ref) {
		o.logger.Warn("pair still in flight from previous run, skipping",
			"rule_id", j.rule.ID, "toko_id", j.ref.TokoID, "campaign_id", j.ref.CampaignID)
		return outcomeBusy
	}
	defer o.inflight.release(j.rule.ID, j.ref)

	rec := types.ExecutionLogRecord{
		ID:         types.NewLogID(),
		RuleID:     j.rule.ID,
		RunID:      runID,
		TokoID:     j.ref.TokoID,
		CampaignID: j.ref.CampaignID,
	}

	result := o.pipeline(ctx, j, &rec)

	rec.ExecutedAt = time.Now().UTC()
	if err := o.logStore.Insert(ctx, rec); err != nil {
		logWriteFailures.Inc()
		o.logger.Error("execution log insert failed",
			"rule_id", j.rule.ID, "campaign_id", j.ref.CampaignID, "error", err)
	}

	switch result {
	case outcomeSkipped:
		evaluationsTotal.WithLabelValues("skipped").Inc()
	case outcomeSuccess:
		evaluationsTotal.WithLabelValues("success").Inc()
	case outcomeFailed:
		evaluationsTotal.WithLabelValues("failed").Inc()
	}
	return result
}

// pipeline performs evaluate -> match -> act for one pair, filling rec.
// Metric resolution completes before condition evaluation, which completes
// before action execution; the snapshot is taken once and never re-fetched
// mid-evaluation.
func (o *Orchestrator) pipeline(ctx context.Context, j job, rec *types.ExecutionLogRecord) outcome {
	campaign, err := o.metricsStore.GetCampaign(ctx, j.ref.TokoID, j.ref.CampaignID)
	if err != nil {
		rec.Status = types.LogStatusFailed
		rec.ErrorMessage = fmt.Sprintf("load campaign: %v", err)
		return outcomeFailed
	}

	match := rules.Match(j.rule, campaign, time.Now())
	rec.ExecutionData.Evaluations = match.Evaluations

	if !match.Fired {
		rec.Status = types.LogStatusSuccess
		rec.ExecutionData.Skipped = true
		return outcomeSkipped
	}

	if len(j.rule.Actions) == 0 {
		// Fired with nothing to do still records the evaluation outcome.
		rec.Status = types.LogStatusSuccess
		return outcomeSuccess
	}

	creds, err := o.storeRegistry.Credentials(ctx, j.ref.TokoID)
	if err != nil {
		rec.Status = types.LogStatusFailed
		rec.ErrorMessage = fmt.Sprintf("load store credentials: %v", err)
		return outcomeFailed
	}

	// One trigger applies one mutation: only the first action executes.
	action := j.rule.Actions[0]

	actionCtx, cancel := context.WithTimeout(ctx, o.actionTimeout)
	defer cancel()

	taken, err := o.executor.Execute(actionCtx, action, campaign, creds)
	if err != nil {
		rec.Status = types.LogStatusFailed
		rec.ErrorMessage = errorMessage(err)

		if types.IsCredentialExpired(err) {
			if markErr := o.storeRegistry.MarkNeedsRelogin(ctx, j.ref.TokoID); markErr != nil {
				o.logger.Error("failed to flag store for relogin",
					"toko_id", j.ref.TokoID, "error", markErr)
			}
		}
		return outcomeFailed
	}

	rec.Status = types.LogStatusSuccess
	rec.ExecutionData.ActionTaken = &taken
	return outcomeSuccess
}

// errorMessage extracts the human-readable reason stored in the log record.
func errorMessage(err error) string {
	var callErr *types.ExternalCallError
	if errors.As(err, &callErr) {
		return callErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "marketplace call timed out"
	}
	return err.Error()
}
