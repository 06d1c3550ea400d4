// internal/rules/decode_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/adspilot/engine/internal/types"
)

func TestDecodeConditions_Normalization(t *testing.T) {
	raw := `[
		{
			"logic": "and",
			"conditions": [
				{"metric": "roas", "operator": "greater_than", "value": 2, "timeframe": "last_7_days"},
				{"metric": "click", "operator": "<=", "value": "100"}
			]
		}
	]`

	groups, err := DecodeConditions(raw)
	if err != nil {
		t.Fatalf("DecodeConditions() error = %v, want nil", err)
	}
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}

	group := groups[0]
	if group.Logic != types.LogicAnd {
		t.Errorf("Logic = %v, want AND", group.Logic)
	}
	if len(group.Conditions) != 2 {
		t.Fatalf("len(Conditions) = %d, want 2", len(group.Conditions))
	}

	first := group.Conditions[0]
	if first.Metric != types.MetricBroadROI {
		t.Errorf("Metric = %v, want broad_roi (roas alias)", first.Metric)
	}
	if first.Operator != types.OpGt {
		t.Errorf("Operator = %v, want > (greater_than alias)", first.Operator)
	}
	if first.Value != float64(2) {
		t.Errorf("Value = %v (%T), want float64(2)", first.Value, first.Value)
	}
	if first.Timeframe.Kind != types.TimeframeLastNDays || first.Timeframe.Days != 7 {
		t.Errorf("Timeframe = %+v, want last_7_days", first.Timeframe)
	}

	second := group.Conditions[1]
	if second.Metric != types.MetricClicks {
		t.Errorf("Metric = %v, want clicks (click alias)", second.Metric)
	}
	if second.Operator != types.OpLte {
		t.Errorf("Operator = %v, want <=", second.Operator)
	}
	// Numeric strings normalize to float64 so comparisons stay numeric.
	if second.Value != float64(100) {
		t.Errorf("Value = %v (%T), want float64(100)", second.Value, second.Value)
	}
	if second.Timeframe.Kind != types.TimeframeToday {
		t.Errorf("Timeframe = %+v, want today default", second.Timeframe)
	}
}

func TestDecodeConditions_ZeroThreshold(t *testing.T) {
	// 0 is a legitimate threshold ("no orders today"); it must decode, not be
	// rejected as a missing value.
	raw := `[{"logic": "and", "conditions": [
		{"metric": "broad_order", "operator": "=", "value": 0}
	]}]`

	groups, err := DecodeConditions(raw)
	if err != nil {
		t.Fatalf("DecodeConditions() error = %v, want nil", err)
	}
	c := groups[0].Conditions[0]
	if c.Value != float64(0) {
		t.Errorf("Value = %v (%T), want float64(0)", c.Value, c.Value)
	}
	if c.Metric != types.MetricBroadOrder || c.Operator != types.OpEq {
		t.Errorf("condition = %+v, want broad_order = 0", c)
	}
}

func TestDecodeRule_ZeroThresholdRuleSurvives(t *testing.T) {
	// A whole rule built around a zero threshold decodes end to end; the
	// orchestrator must never silently skip it as malformed.
	rec := types.RuleRecord{
		ID:              "rule-zero",
		Enabled:         true,
		ConditionsJSON:  `[{"logic": "and", "conditions": [{"metric": "orders", "operator": "=", "value": 0}]}]`,
		ActionsJSON:     `[{"type": "pause_campaign"}]`,
		AssignmentsJSON: `[{"tokoId": 7, "campaignId": 1001}]`,
	}

	rule, err := DecodeRule(rec)
	if err != nil {
		t.Fatalf("DecodeRule() error = %v, want nil", err)
	}
	if len(rule.Groups) != 1 || rule.Groups[0].Conditions[0].Value != float64(0) {
		t.Errorf("decoded groups = %+v, want single zero-threshold condition", rule.Groups)
	}
}

func TestDecodeConditions_UnknownValuesSurvive(t *testing.T) {
	raw := `[{"logic": "or", "conditions": [
		{"metric": "conversion_rate", "operator": "between", "value": "abc"}
	]}]`

	groups, err := DecodeConditions(raw)
	if err != nil {
		t.Fatalf("DecodeConditions() error = %v, want nil", err)
	}
	c := groups[0].Conditions[0]
	if c.Metric != types.Metric("conversion_rate") || c.Metric.Known() {
		t.Errorf("Metric = %v, want unknown passthrough", c.Metric)
	}
	if c.Operator != types.Operator("between") || c.Operator.Known() {
		t.Errorf("Operator = %v, want unknown passthrough", c.Operator)
	}
	if c.Value != "abc" {
		t.Errorf("Value = %v, want non-numeric string kept", c.Value)
	}
}

func TestDecodeConditions_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid_json", `{not json`},
		{"wrong_shape", `{"logic": "and"}`},
		{"missing_metric", `[{"conditions": [{"operator": ">", "value": 1}]}]`},
		{"missing_operator", `[{"conditions": [{"metric": "ctr", "value": 1}]}]`},
		{"missing_value", `[{"conditions": [{"metric": "ctr", "operator": ">"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConditions(tt.raw)
			if !errors.Is(err, types.ErrMalformedConditions) {
				t.Errorf("error = %v, want ErrMalformedConditions", err)
			}
		})
	}
}

func TestDecodeConditions_Empty(t *testing.T) {
	groups, err := DecodeConditions("")
	if err != nil {
		t.Fatalf("DecodeConditions(\"\") error = %v, want nil", err)
	}
	if groups != nil {
		t.Errorf("groups = %v, want nil", groups)
	}
}

func TestDecodeActions(t *testing.T) {
	raw := `[
		{"type": "set_budget", "value": 200000},
		{"type": "pause_campaign"}
	]`

	actions, err := DecodeActions(raw)
	if err != nil {
		t.Fatalf("DecodeActions() error = %v, want nil", err)
	}
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].Kind != types.ActionSetBudget || actions[0].Value != 200000 {
		t.Errorf("actions[0] = %+v, want set_budget 200000", actions[0])
	}
	if actions[1].Kind != types.ActionPause || actions[1].Value != 0 {
		t.Errorf("actions[1] = %+v, want pause_campaign", actions[1])
	}
}

func TestDecodeActions_Malformed(t *testing.T) {
	for _, raw := range []string{`{not json`, `[{"value": 5}]`} {
		if _, err := DecodeActions(raw); !errors.Is(err, types.ErrMalformedActions) {
			t.Errorf("DecodeActions(%q) error = %v, want ErrMalformedActions", raw, err)
		}
	}
}

func TestDecodeActions_UnknownKindSurvives(t *testing.T) {
	// Unknown action types decode; the executor rejects them at fire time so
	// the rest of the rule still evaluates and logs.
	actions, err := DecodeActions(`[{"type": "boost_keywords", "value": 1}]`)
	if err != nil {
		t.Fatalf("DecodeActions() error = %v, want nil", err)
	}
	if actions[0].Kind.Known() {
		t.Errorf("Kind.Known() = true for boost_keywords, want false")
	}
}

func TestDecodeRule(t *testing.T) {
	rec := types.RuleRecord{
		ID:              "rule-042",
		Name:            "Naikkan budget ROAS tinggi",
		Enabled:         true,
		ConditionsJSON:  `[{"logic": "and", "conditions": [{"metric": "roas", "operator": ">", "value": 3}]}]`,
		ActionsJSON:     `[{"type": "add_budget", "value": 50000}]`,
		AssignmentsJSON: `[{"tokoId": 7, "campaignId": 1001}, {"tokoId": 7, "campaignId": 1002}]`,
	}

	rule, err := DecodeRule(rec)
	if err != nil {
		t.Fatalf("DecodeRule() error = %v, want nil", err)
	}
	if rule.ID != "rule-042" || !rule.Enabled {
		t.Errorf("rule header = %+v, want id rule-042 enabled", rule)
	}
	if len(rule.Groups) != 1 || len(rule.Actions) != 1 || len(rule.Assignments) != 2 {
		t.Errorf("decoded sizes = %d groups, %d actions, %d assignments; want 1/1/2",
			len(rule.Groups), len(rule.Actions), len(rule.Assignments))
	}
	if rule.Assignments[0].TokoID != 7 || rule.Assignments[0].CampaignID != 1001 {
		t.Errorf("Assignments[0] = %+v, want toko 7 campaign 1001", rule.Assignments[0])
	}
}

func TestDecodeRule_MalformedColumnFailsWholeRule(t *testing.T) {
	rec := types.RuleRecord{
		ID:             "rule-043",
		ConditionsJSON: `[{"conditions": [{"metric": "ctr", "operator": ">", "value": 1}]}]`,
		ActionsJSON:    `{broken`,
	}
	if _, err := DecodeRule(rec); !errors.Is(err, types.ErrMalformedActions) {
		t.Errorf("DecodeRule() error = %v, want ErrMalformedActions", err)
	}
}
