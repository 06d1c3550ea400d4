// internal/types/rules.go
package types

import (
	"fmt"
	"strings"
)

/*
 * Domain types for rule evaluation.
 *
 * Provides Rule, ConditionGroup, Condition, and Action structures used by
 * internal/rules for decoding and evaluation. These types are storage-format
 * agnostic - the JSON column decoding happens in internal/rules/decode.go.
 *
 * Key types:
 *   - Rule: Complete rule definition (condition groups, actions, assignments)
 *   - ConditionGroup: Conditions combined with an intra-group AND/OR logic
 *   - Condition: Single metric comparison with threshold and timeframe
 *   - Action: Budget or status mutation applied when a rule fires
 *
 * Unknown handling is deliberately asymmetric (kept from the product's
 * behavior): an unknown operator never matches (fail-closed, an unmatched
 * rule must not mutate budgets), while an unknown metric name passes through
 * as its literal string so equality conditions against it stay expressible.
 * Both carry the raw string in an Unknown-style arm instead of being
 * silently coerced.
 */

// Metric is a key into the fixed campaign metric vocabulary.
// Unknown metrics are preserved verbatim (Known() == false).
type Metric string

// Canonical metric names. Aliases (orders, gmv, roas, roi) normalize to the
// broad_* report fields during decode.
const (
	MetricCTR        Metric = "ctr"
	MetricCost       Metric = "cost"
	MetricClicks     Metric = "clicks"
	MetricImpression Metric = "impressions"
	MetricBudget     Metric = "budget"
	MetricBroadOrder Metric = "broad_order"
	MetricBroadGMV   Metric = "broad_gmv"
	MetricBroadROI   Metric = "broad_roi"
	MetricCPC        Metric = "cpc"
	MetricCPM        Metric = "cpm"
)

var metricAliases = map[string]Metric{
	"ctr":          MetricCTR,
	"cost":         MetricCost,
	"clicks":       MetricClicks,
	"click":        MetricClicks,
	"impressions":  MetricImpression,
	"impression":   MetricImpression,
	"budget":       MetricBudget,
	"daily_budget": MetricBudget,
	"orders":       MetricBroadOrder,
	"broad_order":  MetricBroadOrder,
	"gmv":          MetricBroadGMV,
	"broad_gmv":    MetricBroadGMV,
	"roas":         MetricBroadROI,
	"roi":          MetricBroadROI,
	"broad_roi":    MetricBroadROI,
	"cpc":          MetricCPC,
	"cpm":          MetricCPM,
}

// ParseMetric normalizes aliases to canonical metric names.
// Unknown names pass through unchanged.
func ParseMetric(s string) Metric {
	if m, ok := metricAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m
	}
	return Metric(s)
}

// Known reports whether the metric belongs to the fixed vocabulary.
func (m Metric) Known() bool {
	_, ok := metricAliases[string(m)]
	return ok
}

// Operator compares a resolved metric value against a condition threshold.
// Unknown operators are preserved verbatim and never match.
type Operator string

// Canonical operators. Long-form aliases normalize during decode.
const (
	OpGt  Operator = ">"
	OpLt  Operator = "<"
	OpGte Operator = ">="
	OpLte Operator = "<="
	OpEq  Operator = "="
)

var operatorAliases = map[string]Operator{
	">":                     OpGt,
	"<":                     OpLt,
	">=":                    OpGte,
	"<=":                    OpLte,
	"=":                     OpEq,
	"==":                    OpEq,
	"greater_than":          OpGt,
	"less_than":             OpLt,
	"greater_than_or_equal": OpGte,
	"less_than_or_equal":    OpLte,
	"equal":                 OpEq,
}

// ParseOperator normalizes operator aliases to their canonical symbol.
// Unknown operators pass through unchanged (and fail closed at evaluation).
func ParseOperator(s string) Operator {
	if op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op
	}
	return Operator(s)
}

// Known reports whether the operator is part of the supported set.
func (o Operator) Known() bool {
	_, ok := operatorAliases[string(o)]
	return ok
}

// TimeframeKind selects which aggregated report rows a condition reads.
type TimeframeKind int

const (
	TimeframeToday TimeframeKind = iota
	TimeframeYesterday
	TimeframeLastNDays
	TimeframeLifetime
)

// Timeframe is the resolved time window of a condition.
// Days is meaningful only for TimeframeLastNDays.
type Timeframe struct {
	Kind TimeframeKind
	Days int
}

// ParseTimeframe parses today/yesterday/last_N_days/lifetime strings.
// Empty or unrecognized values default to today, matching the product's
// implicit per-condition window.
func ParseTimeframe(s string) Timeframe {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "today":
		return Timeframe{Kind: TimeframeToday}
	case "yesterday":
		return Timeframe{Kind: TimeframeYesterday}
	case "lifetime", "all_time":
		return Timeframe{Kind: TimeframeLifetime}
	default:
		var n int
		if _, err := fmt.Sscanf(v, "last_%d_days", &n); err == nil && n > 0 {
			return Timeframe{Kind: TimeframeLastNDays, Days: n}
		}
		return Timeframe{Kind: TimeframeToday}
	}
}

// String renders the timeframe back to its storage spelling.
func (t Timeframe) String() string {
	switch t.Kind {
	case TimeframeYesterday:
		return "yesterday"
	case TimeframeLastNDays:
		return fmt.Sprintf("last_%d_days", t.Days)
	case TimeframeLifetime:
		return "lifetime"
	default:
		return "today"
	}
}

// GroupLogic combines the conditions within one group.
type GroupLogic string

const (
	LogicAnd GroupLogic = "AND"
	LogicOr  GroupLogic = "OR"
)

// ParseGroupLogic normalizes the logic operator; anything that is not
// explicitly "or" is treated as AND, the stricter combination.
func ParseGroupLogic(s string) GroupLogic {
	if strings.EqualFold(strings.TrimSpace(s), "or") {
		return LogicOr
	}
	return LogicAnd
}

// Condition is a single metric comparison.
// Value is float64 or string after decode; numeric strings are compared
// numerically, non-numeric strings only via the equality operator.
type Condition struct {
	Metric    Metric
	Operator  Operator
	Value     any
	Timeframe Timeframe
}

// ConditionGroup is an ordered list of conditions combined by Logic.
// A group with zero conditions is never met (fail-closed).
type ConditionGroup struct {
	Logic      GroupLogic
	Conditions []Condition
}

// ActionKind identifies the mutation a fired rule applies.
type ActionKind string

const (
	ActionSetBudget    ActionKind = "set_budget"
	ActionAddBudget    ActionKind = "add_budget"
	ActionReduceBudget ActionKind = "reduce_budget"
	ActionPause        ActionKind = "pause_campaign"
	ActionResume       ActionKind = "resume_campaign"
)

var knownActionKinds = map[ActionKind]bool{
	ActionSetBudget:    true,
	ActionAddBudget:    true,
	ActionReduceBudget: true,
	ActionPause:        true,
	ActionResume:       true,
}

// Known reports whether the action kind is supported by the executor.
func (k ActionKind) Known() bool {
	return knownActionKinds[k]
}

// Action is one entry of a rule's action list.
// Value is the budget amount for budget actions; unused for status actions.
type Action struct {
	Kind  ActionKind
	Value float64
}

// CampaignRef points a rule at one campaign of one toko.
type CampaignRef struct {
	TokoID     TokoID     `json:"tokoId"`
	CampaignID CampaignID `json:"campaignId"`
}

// Rule is a complete automation rule definition.
// The engine is read-only on rules: they are created and edited by the
// control panel and re-read on every scheduled run.
type Rule struct {
	ID          RuleID
	Name        string
	Description string
	Category    string
	Enabled     bool
	Groups      []ConditionGroup
	Actions     []Action
	Assignments []CampaignRef
}

// RuleRecord is the persisted shape of a rule (data_rules row) before the
// JSON columns are decoded. internal/rules turns it into a Rule at the
// orchestrator boundary.
type RuleRecord struct {
	ID              RuleID
	Name            string
	Description     string
	Category        string
	Enabled         bool
	ConditionsJSON  string
	ActionsJSON     string
	AssignmentsJSON string
}
