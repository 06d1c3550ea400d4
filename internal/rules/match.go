// internal/rules/match.go
package rules

import (
	"time"

	"github.com/adspilot/engine/internal/types"
)

/*
 * Rule matching.
 *
 * Combines group-level results into the fire/skip decision for one
 * (rule, campaign) pair. Groups combine with OR semantics: group 0 is the
 * unconditional base, each subsequent group widens eligibility. A rule with
 * an empty group list never fires, and a disabled rule short-circuits before
 * any metric resolution happens.
 *
 * The ordered per-condition evaluation list is flattened across groups and
 * returned alongside the decision; the orchestrator persists it unchanged in
 * executionData.evaluations.
 */

// MatchResult is the outcome of matching one rule against one campaign.
type MatchResult struct {
	Fired       bool
	Groups      []GroupResult
	Evaluations []types.ConditionEvaluation
}

// Match decides whether the rule fires for the campaign.
// Disabled rules never match, regardless of conditions.
func Match(rule *types.Rule, campaign *types.Campaign, now time.Time) MatchResult {
	if !rule.Enabled || len(rule.Groups) == 0 {
		return MatchResult{}
	}

	result := MatchResult{
		Groups: make([]GroupResult, 0, len(rule.Groups)),
	}

	for _, group := range rule.Groups {
		gr := EvaluateGroup(campaign, group, now)
		result.Groups = append(result.Groups, gr)
		if gr.Met {
			result.Fired = true
		}
		for _, cr := range gr.Conditions {
			result.Evaluations = append(result.Evaluations, types.ConditionEvaluation{
				Metric:        string(cr.Condition.Metric),
				Operator:      string(cr.Condition.Operator),
				ExpectedValue: cr.Condition.Value,
				ActualValue:   cr.Actual,
				Met:           cr.Met,
			})
		}
	}

	return result
}
