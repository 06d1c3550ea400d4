// internal/types/rules_test.go
package types

import "testing"

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
	}{
		{"ctr", MetricCTR},
		{"roas", MetricBroadROI},
		{"roi", MetricBroadROI},
		{"broad_roi", MetricBroadROI},
		{"gmv", MetricBroadGMV},
		{"orders", MetricBroadOrder},
		{"click", MetricClicks},
		{"daily_budget", MetricBudget},
		{"  COST  ", MetricCost},
		{"conversion_rate", Metric("conversion_rate")},
	}

	for _, tt := range tests {
		if got := ParseMetric(tt.in); got != tt.want {
			t.Errorf("ParseMetric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if MetricCTR.Known() != true {
		t.Errorf("Known() = false for ctr, want true")
	}
	if Metric("conversion_rate").Known() {
		t.Errorf("Known() = true for unknown metric, want false")
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
	}{
		{">", OpGt},
		{"greater_than", OpGt},
		{"==", OpEq},
		{"equal", OpEq},
		{"less_than_or_equal", OpLte},
		{" >= ", OpGte},
		{"between", Operator("between")},
	}

	for _, tt := range tests {
		if got := ParseOperator(tt.in); got != tt.want {
			t.Errorf("ParseOperator(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if Operator("between").Known() {
		t.Errorf("Known() = true for unknown operator, want false")
	}
}

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in   string
		want Timeframe
	}{
		{"", Timeframe{Kind: TimeframeToday}},
		{"today", Timeframe{Kind: TimeframeToday}},
		{"yesterday", Timeframe{Kind: TimeframeYesterday}},
		{"lifetime", Timeframe{Kind: TimeframeLifetime}},
		{"all_time", Timeframe{Kind: TimeframeLifetime}},
		{"last_7_days", Timeframe{Kind: TimeframeLastNDays, Days: 7}},
		{"last_30_days", Timeframe{Kind: TimeframeLastNDays, Days: 30}},
		{"last_0_days", Timeframe{Kind: TimeframeToday}},
		{"next_week", Timeframe{Kind: TimeframeToday}},
	}

	for _, tt := range tests {
		if got := ParseTimeframe(tt.in); got != tt.want {
			t.Errorf("ParseTimeframe(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestTimeframeString(t *testing.T) {
	tests := []struct {
		tf   Timeframe
		want string
	}{
		{Timeframe{Kind: TimeframeToday}, "today"},
		{Timeframe{Kind: TimeframeYesterday}, "yesterday"},
		{Timeframe{Kind: TimeframeLastNDays, Days: 7}, "last_7_days"},
		{Timeframe{Kind: TimeframeLifetime}, "lifetime"},
	}

	for _, tt := range tests {
		if got := tt.tf.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseGroupLogic(t *testing.T) {
	if ParseGroupLogic("or") != LogicOr || ParseGroupLogic("OR") != LogicOr {
		t.Errorf("ParseGroupLogic(or) != LogicOr")
	}
	// Anything else is the stricter AND.
	for _, s := range []string{"and", "AND", "", "xor"} {
		if ParseGroupLogic(s) != LogicAnd {
			t.Errorf("ParseGroupLogic(%q) != LogicAnd", s)
		}
	}
}

func TestUnmarshalExecutionData_Legacy(t *testing.T) {
	// Rows predating execution data carry NULL blobs; they must stay readable.
	d, err := UnmarshalExecutionData("")
	if err != nil {
		t.Fatalf("UnmarshalExecutionData(\"\") error = %v, want nil", err)
	}
	if d.Skipped || d.Evaluations != nil || d.ActionTaken != nil {
		t.Errorf("decoded = %+v, want zero value", d)
	}

	if _, err := UnmarshalExecutionData("{broken"); err == nil {
		t.Errorf("UnmarshalExecutionData(malformed) error = nil, want error")
	}
}
