// internal/rules/evaluate.go
package rules

import (
	"time"

	"github.com/adspilot/engine/internal/types"
)

/*
 * Condition and group evaluation.
 *
 * Evaluates conditions against a campaign's resolved metric snapshot,
 * producing per-condition results (metric, operator, expected, actual, met)
 * that are persisted verbatim in executionData.evaluations and later
 * rendered by the log reader's narrative builder.
 *
 * No short-circuiting: every condition of every group is evaluated even when
 * the group outcome is already decided, because the full ordered evaluation
 * list is part of the execution log contract. Rules are small (a handful of
 * conditions) so the extra work is negligible.
 *
 * Group semantics:
 *   - AND: met iff every condition is met. Empty group: not met (fail-closed).
 *   - OR: met iff at least one condition is met. Empty group: not met.
 */

// ConditionResult is the outcome of evaluating one condition.
type ConditionResult struct {
	Condition types.Condition
	Actual    any
	Met       bool
}

// GroupResult is the outcome of evaluating one condition group.
type GroupResult struct {
	Met        bool
	Conditions []ConditionResult
}

// EvaluateCondition resolves the condition's metric over its timeframe and
// compares it against the threshold. Unknown metrics pass their literal name
// through as the actual value, so ordering operators fail closed on them
// while equality conditions remain expressible.
func EvaluateCondition(c *types.Campaign, cond types.Condition, now time.Time) ConditionResult {
	var actual any
	if v, ok := Resolve(c, cond.Metric, cond.Timeframe, now); ok {
		actual = v
	} else {
		actual = string(cond.Metric)
	}

	return ConditionResult{
		Condition: cond,
		Actual:    actual,
		Met:       Compare(cond.Operator, actual, cond.Value),
	}
}

// EvaluateGroup evaluates all conditions of a group and combines them with
// the group's logic operator.
func EvaluateGroup(c *types.Campaign, group types.ConditionGroup, now time.Time) GroupResult {
	result := GroupResult{
		Conditions: make([]ConditionResult, 0, len(group.Conditions)),
	}

	metCount := 0
	for _, cond := range group.Conditions {
		cr := EvaluateCondition(c, cond, now)
		result.Conditions = append(result.Conditions, cr)
		if cr.Met {
			metCount++
		}
	}

	switch {
	case len(group.Conditions) == 0:
		result.Met = false
	case group.Logic == types.LogicOr:
		result.Met = metCount > 0
	default: // AND
		result.Met = metCount == len(group.Conditions)
	}

	return result
}
