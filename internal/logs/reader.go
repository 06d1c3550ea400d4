// internal/logs/reader.go
package logs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adspilot/engine/internal/core/auth"
	"github.com/adspilot/engine/internal/rules"
	"github.com/adspilot/engine/internal/types"
)

/*
 * Execution log detail reconstruction.
 *
 * Given one log id, rebuilds the whole run it belonged to for display:
 *
 *   1. Load the anchor row for rule id, run id and executed-at.
 *   2. Collect sibling rows: by run_id when the anchor has one, otherwise
 *      by the legacy heuristic (same rule, executed within ±10s).
 *   3. De-duplicate by (toko, campaign), keeping the first occurrence.
 *   4. Apply store-level access filtering for callers without view-all.
 *   5. Render the rule's condition narrative and per-campaign outcomes.
 *
 * Access model: an empty allowed-store set yields an empty campaignDetails
 * list, never an error - a denied caller must not learn which toko ids
 * exist. A caller whose non-empty set excludes the anchor's store gets
 * ErrAccessDenied instead.
 */

// RunWindow is the executed-at tolerance for grouping legacy rows into runs.
const RunWindow = 10 * time.Second

// Campaign outcome classifications shown in campaignDetails.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// LogReader loads execution log records for the reader.
type LogReader interface {
	GetByID(ctx context.Context, id types.LogID) (types.ExecutionLogRecord, error)
	ListByRun(ctx context.Context, runID types.RunID) ([]types.ExecutionLogRecord, error)
	ListByWindow(ctx context.Context, ruleID types.RuleID, from, to time.Time) ([]types.ExecutionLogRecord, error)
}

// RuleReader loads rule definitions for narrative rendering.
type RuleReader interface {
	Get(ctx context.Context, id types.RuleID) (types.RuleRecord, error)
}

// CampaignReader resolves campaign display names.
type CampaignReader interface {
	GetCampaign(ctx context.Context, tokoID types.TokoID, campaignID types.CampaignID) (*types.Campaign, error)
}

// StoreReader resolves toko display names.
type StoreReader interface {
	Credentials(ctx context.Context, tokoID types.TokoID) (types.StoreCredentials, error)
}

// ConditionResultView is one rendered condition evaluation.
type ConditionResultView struct {
	Metric   string `json:"metric"`
	Operator string `json:"operator"`
	Expected string `json:"expectedValue"`
	Actual   string `json:"actualValue"`
	Met      bool   `json:"met"`
}

// CampaignDetail is one campaign's outcome within the run.
type CampaignDetail struct {
	CampaignID       types.CampaignID      `json:"campaignId"`
	CampaignName     string                `json:"campaignName"`
	TokoID           types.TokoID          `json:"tokoId"`
	TokoName         string                `json:"tokoName"`
	Status           string                `json:"status"`
	ConditionResults []ConditionResultView `json:"conditionResults"`
	Action           string                `json:"action,omitempty"`
	Message          string                `json:"message"`
}

// LogDetail is the reconstructed run view anchored at one log id.
type LogDetail struct {
	RuleID          types.RuleID     `json:"ruleId"`
	RuleName        string           `json:"ruleName"`
	RuleDescription string           `json:"ruleDescription"`
	Category        string           `json:"category"`
	Conditions      string           `json:"conditions"`
	CampaignDetails []CampaignDetail `json:"campaignDetails"`
}

// Reader reconstructs run details from execution log rows.
type Reader struct {
	logs      LogReader
	rules     RuleReader
	campaigns CampaignReader
	stores    StoreReader
}

// NewReader wires the reader's collaborators.
func NewReader(logs LogReader, ruleReader RuleReader, campaigns CampaignReader, stores StoreReader) *Reader {
	return &Reader{
		logs:      logs,
		rules:     ruleReader,
		campaigns: campaigns,
		stores:    stores,
	}
}

// GetLogDetail rebuilds the run view anchored at logID for the principal.
// Returns types.ErrLogNotFound for unknown ids and types.ErrAccessDenied
// when the principal's non-empty store set excludes the anchor's toko.
func (r *Reader) GetLogDetail(ctx context.Context, principal *auth.Principal, logID types.LogID) (*LogDetail, error) {
	anchor, err := r.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}

	detail := &LogDetail{RuleID: anchor.RuleID}

	// Rule metadata and narrative. A rule deleted after the run still leaves
	// readable logs; the narrative degrades to the recorded evaluations.
	var ruleActions []types.Action
	if rec, err := r.rules.Get(ctx, anchor.RuleID); err == nil {
		detail.RuleName = rec.Name
		detail.RuleDescription = rec.Description
		detail.Category = rec.Category
		if groups, err := rules.DecodeConditions(rec.ConditionsJSON); err == nil {
			detail.Conditions = ConditionsNarrative(groups)
		}
		if actions, err := rules.DecodeActions(rec.ActionsJSON); err == nil {
			ruleActions = actions
		}
	} else if !errors.Is(err, types.ErrRuleNotFound) {
		return nil, fmt.Errorf("load rule %s: %w", anchor.RuleID, err)
	}

	// Empty allowed set: hide everything, including the anchor row's store,
	// without revealing whether data exists.
	if !principal.CanViewAllLogs() && len(principal.AllowedTokos) == 0 {
		detail.CampaignDetails = []CampaignDetail{}
		return detail, nil
	}

	if !principal.CanAccessToko(anchor.TokoID) {
		return nil, types.ErrAccessDenied
	}

	siblings, err := r.siblings(ctx, anchor)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(siblings))
	details := make([]CampaignDetail, 0, len(siblings))
	for _, rec := range siblings {
		key := fmt.Sprintf("%d:%d", rec.TokoID, rec.CampaignID)
		if seen[key] {
			continue
		}
		seen[key] = true

		if !principal.CanAccessToko(rec.TokoID) {
			continue
		}

		details = append(details, r.campaignDetail(ctx, rec, ruleActions))
	}

	detail.CampaignDetails = details
	return detail, nil
}

// siblings collects all rows belonging to the anchor's run.
// Prefers the explicit run id; legacy rows fall back to the ±10s window on
// (rule_id, executed_at).
func (r *Reader) siblings(ctx context.Context, anchor types.ExecutionLogRecord) ([]types.ExecutionLogRecord, error) {
	if anchor.RunID != "" {
		return r.logs.ListByRun(ctx, anchor.RunID)
	}
	return r.logs.ListByWindow(ctx, anchor.RuleID,
		anchor.ExecutedAt.Add(-RunWindow), anchor.ExecutedAt.Add(RunWindow))
}

// campaignDetail renders one sibling row into its display form.
func (r *Reader) campaignDetail(ctx context.Context, rec types.ExecutionLogRecord, ruleActions []types.Action) CampaignDetail {
	detail := CampaignDetail{
		CampaignID: rec.CampaignID,
		TokoID:     rec.TokoID,
		Status:     classify(rec),
	}

	// Display names are best-effort: a deleted campaign or store leaves ids.
	if campaign, err := r.campaigns.GetCampaign(ctx, rec.TokoID, rec.CampaignID); err == nil {
		detail.CampaignName = campaign.Title
	}
	if creds, err := r.stores.Credentials(ctx, rec.TokoID); err == nil {
		detail.TokoName = creds.Name
	}

	for _, ev := range rec.ExecutionData.Evaluations {
		detail.ConditionResults = append(detail.ConditionResults, ConditionResultView{
			Metric:   MetricName(ev.Metric),
			Operator: OperatorName(ev.Operator),
			Expected: FormatValue(ev.Metric, ev.ExpectedValue),
			Actual:   FormatValue(ev.Metric, ev.ActualValue),
			Met:      ev.Met,
		})
	}

	if detail.Status == OutcomeSuccess && len(ruleActions) > 0 {
		detail.Action = ActionNarrative(ruleActions[0])
	}

	detail.Message = OutcomeMessage(detail.Status, rec.ExecutionData.Evaluations, rec.ErrorMessage)
	return detail
}

// classify maps a log record to its displayed outcome.
// Order matters: an explicitly skipped evaluation is "skipped" even though
// its stored status is success.
func classify(rec types.ExecutionLogRecord) string {
	switch {
	case rec.ExecutionData.Skipped:
		return OutcomeSkipped
	case rec.Status == types.LogStatusFailed:
		return OutcomeFailed
	default:
		return OutcomeSuccess
	}
}
