// internal/rules/decode.go
package rules

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/adspilot/engine/internal/types"
)

/*
 * Rule column decoding.
 *
 * The control panel stores a rule's conditions, actions and campaign
 * assignments as JSON columns on data_rules. This file decodes those blobs
 * into the immutable structures in internal/types at the orchestrator
 * boundary, so evaluation never touches raw JSON and never mutates shared
 * config objects.
 *
 * Decoding workflow:
 *   1. Unmarshal into wire structs (lenient field types, value as any)
 *   2. Validate structure with go-playground/validator
 *   3. Normalize metric/operator/timeframe aliases into canonical forms
 *
 * Malformed JSON or failed validation wraps ErrMalformedConditions /
 * ErrMalformedActions; the orchestrator skips the rule for the run and logs
 * the parse failure instead of crashing.
 *
 * Unknown metric and operator strings survive decoding verbatim: the
 * fail-closed/fail-open asymmetry (unknown operator never matches, unknown
 * metric passes through as a literal) is applied at evaluation time.
 */

var validate = validator.New()

// wireCondition mirrors one condition entry of the conditions JSON column.
// Value carries no validate tag: validator's required fails on zero values,
// and 0 is a legitimate threshold ("no orders today"). Presence is checked
// explicitly against nil instead.
type wireCondition struct {
	Metric    string `json:"metric" validate:"required"`
	Operator  string `json:"operator" validate:"required"`
	Value     any    `json:"value"`
	Timeframe string `json:"timeframe"`
}

// wireGroup mirrors one condition group of the conditions JSON column.
type wireGroup struct {
	Logic      string          `json:"logic"`
	Conditions []wireCondition `json:"conditions" validate:"dive"`
}

// wireAction mirrors one entry of the actions JSON column.
type wireAction struct {
	Type  string `json:"type" validate:"required"`
	Value any    `json:"value"`
}

// DecodeConditions parses the data_rules.conditions JSON column.
// Returns ErrMalformedConditions (wrapped) on invalid JSON or structure.
func DecodeConditions(raw string) ([]types.ConditionGroup, error) {
	if raw == "" {
		return nil, nil
	}

	var wire []wireGroup
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedConditions, err)
	}

	groups := make([]types.ConditionGroup, 0, len(wire))
	for i, wg := range wire {
		if err := validate.Struct(wg); err != nil {
			return nil, fmt.Errorf("%w: group %d: %v", types.ErrMalformedConditions, i, err)
		}

		group := types.ConditionGroup{
			Logic:      types.ParseGroupLogic(wg.Logic),
			Conditions: make([]types.Condition, 0, len(wg.Conditions)),
		}
		for j, wc := range wg.Conditions {
			if wc.Value == nil {
				return nil, fmt.Errorf("%w: group %d condition %d: missing value", types.ErrMalformedConditions, i, j)
			}
			group.Conditions = append(group.Conditions, types.Condition{
				Metric:    types.ParseMetric(wc.Metric),
				Operator:  types.ParseOperator(wc.Operator),
				Value:     normalizeValue(wc.Value),
				Timeframe: types.ParseTimeframe(wc.Timeframe),
			})
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// DecodeActions parses the data_rules.actions JSON column.
// Returns ErrMalformedActions (wrapped) on invalid JSON or structure.
// Unknown action types survive decoding; the executor rejects them per fire.
func DecodeActions(raw string) ([]types.Action, error) {
	if raw == "" {
		return nil, nil
	}

	var wire []wireAction
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedActions, err)
	}

	actions := make([]types.Action, 0, len(wire))
	for i, wa := range wire {
		if err := validate.Struct(wa); err != nil {
			return nil, fmt.Errorf("%w: action %d: %v", types.ErrMalformedActions, i, err)
		}

		value, ok := toFloat64(normalizeValue(wa.Value))
		if !ok {
			value = 0
		}
		actions = append(actions, types.Action{
			Kind:  types.ActionKind(wa.Type),
			Value: value,
		})
	}

	return actions, nil
}

// DecodeRule turns a persisted data_rules row into an immutable Rule.
// Fails on the first malformed JSON column; the caller skips the whole rule
// for the run rather than evaluating it partially.
func DecodeRule(rec types.RuleRecord) (*types.Rule, error) {
	groups, err := DecodeConditions(rec.ConditionsJSON)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
	}
	actions, err := DecodeActions(rec.ActionsJSON)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
	}
	refs, err := DecodeAssignments(rec.AssignmentsJSON)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
	}

	return &types.Rule{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    rec.Category,
		Enabled:     rec.Enabled,
		Groups:      groups,
		Actions:     actions,
		Assignments: refs,
	}, nil
}

// DecodeAssignments parses the data_rules.campaign_assignments JSON column.
func DecodeAssignments(raw string) ([]types.CampaignRef, error) {
	if raw == "" {
		return nil, nil
	}

	var refs []types.CampaignRef
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil, fmt.Errorf("malformed campaign assignments: %w", err)
	}
	return refs, nil
}

// normalizeValue collapses json.Number-style inputs to float64 where possible
// while keeping non-numeric strings intact for equality comparisons.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
		return n
	default:
		return v
	}
}
