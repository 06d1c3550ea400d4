// Package types provides domain models shared across AdsPilot engine components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so evaluator code can be reused without pulling in
// drivers. ID utilities in ids.go import uuid but are isolated for selective
// inclusion.
//
// Rule definitions live in rules.go; this file holds the entities the engine
// reads (campaigns, report rows, store credentials) and writes (execution
// log records).
package types

import (
	"encoding/json"
	"time"
)

// RuleID identifies a user-defined automation rule (data_rules row).
// String alias enables type safety while maintaining JSON string serialization.
type RuleID string

// LogID represents a UUIDv7 execution log identifier.
// UUIDv7 time-ordering ensures sequential inserts cluster in B-tree pages.
type LogID string

// RunID represents a UUIDv7 orchestrator run identifier.
// Every log record written during one scheduled run carries the same RunID,
// so the log reader can group records without time-window heuristics.
type RunID string

// TokoID identifies a connected marketplace store (tenant advertising account).
type TokoID int64

// CampaignID identifies an advertising campaign within a toko.
type CampaignID int64

// Campaign statuses as reported by the marketplace.
const (
	CampaignStatusOngoing = "ongoing"
	CampaignStatusPaused  = "paused"
	CampaignStatusEnded   = "ended"
)

// Campaign is an advertising campaign as seen by the rule engine.
// Owned by the metrics store; the engine never mutates it directly, only
// through marketplace API calls issued by the action executor.
type Campaign struct {
	CampaignID  CampaignID
	TokoID      TokoID
	Title       string
	Status      string
	DailyBudget float64
	Reports     []CampaignReport
}

// CampaignReport is one day of aggregated advertising performance.
// Money fields are normalized on ingestion (the raw marketplace feed stores
// them as scaled integers); the engine reads plain currency amounts.
type CampaignReport struct {
	Date       time.Time
	Cost       float64
	Click      float64
	Impression float64
	BroadGMV   float64
	BroadOrder float64
	BroadROI   float64
	CTR        float64
	CPC        float64
	CPM        float64
}

// StoreCredentials holds the session material needed for authenticated
// marketplace API calls on behalf of one toko.
type StoreCredentials struct {
	TokoID       TokoID
	Name         string
	Cookie       string
	NeedsRelogin bool
}

// Execution log statuses persisted in rule_execution_logs.status.
const (
	LogStatusSuccess = "success"
	LogStatusFailed  = "failed"
)

// ConditionEvaluation is the per-condition outcome retained for logging.
// ExpectedValue and ActualValue are float64 or string: unknown metrics pass
// through as their literal name, and thresholds may arrive as numeric strings.
type ConditionEvaluation struct {
	Metric        string `json:"metric"`
	Operator      string `json:"operator"`
	ExpectedValue any    `json:"expectedValue"`
	ActualValue   any    `json:"actualValue"`
	Met           bool   `json:"met"`
}

// ActionTaken records the mutation applied when a rule fired.
// Before/After are budgets for budget actions, statuses for status actions.
type ActionTaken struct {
	Kind   string `json:"kind"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// ExecutionData is the JSON blob stored per log record.
// Evaluations preserve condition order; the log reader renders them verbatim.
type ExecutionData struct {
	Skipped     bool                  `json:"skipped"`
	Evaluations []ConditionEvaluation `json:"evaluations"`
	ActionTaken *ActionTaken          `json:"actionTaken,omitempty"`
}

// ExecutionLogRecord is one (rule, campaign) outcome from one orchestrator run.
// Immutable after insert. RunID is empty for rows written before run ids
// existed; the log reader falls back to an executed-at window for those.
type ExecutionLogRecord struct {
	ID            LogID
	RuleID        RuleID
	RunID         RunID
	TokoID        TokoID
	CampaignID    CampaignID
	Status        string
	ErrorMessage  string
	ExecutionData ExecutionData
	ExecutedAt    time.Time
}

// MarshalExecutionData serializes ExecutionData for the log store.
func MarshalExecutionData(d ExecutionData) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalExecutionData parses a stored execution data blob.
// Empty input yields a zero ExecutionData rather than an error so legacy
// rows with NULL blobs remain readable.
func UnmarshalExecutionData(raw string) (ExecutionData, error) {
	var d ExecutionData
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return ExecutionData{}, err
	}
	return d, nil
}
