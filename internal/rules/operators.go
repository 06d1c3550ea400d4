// internal/rules/operators.go
package rules

import (
	"strconv"
	"strings"

	"github.com/adspilot/engine/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the five comparison operators with numeric-first semantics.
 * Threshold values arrive as float64 or string from rule decoding; actual
 * values arrive as float64 from metric resolution, or as a literal string
 * for unknown metrics (permissive passthrough).
 *
 * Comparison rules:
 *   - Both sides parse as numbers: native float64 comparison.
 *   - Either side non-numeric: only the equality family falls back to
 *     case-insensitive string equality. Ordering operators are undefined on
 *     strings and evaluate to false, never true.
 *   - Unknown operator: always false (fail-closed). An unmatched rule must
 *     not silently mutate budgets.
 *
 * Why function-based: five operators via switch statement is cleaner than
 * five interface implementations with minimal behavior variation.
 */

// Compare applies the operator to compare the actual value against the
// condition threshold.
func Compare(op types.Operator, actual, threshold any) bool {
	if na, nb, ok := asNumbers(actual, threshold); ok {
		switch op {
		case types.OpGt:
			return na > nb
		case types.OpLt:
			return na < nb
		case types.OpGte:
			return na >= nb
		case types.OpLte:
			return na <= nb
		case types.OpEq:
			return na == nb
		default:
			return false
		}
	}

	// Non-numeric operands: equality only, ordering is undefined.
	if op == types.OpEq {
		return strings.EqualFold(asString(actual), asString(threshold))
	}
	return false
}

// asNumbers attempts to convert both values to float64 for numeric comparison.
// Numeric strings count as numbers so "2.5" thresholds behave like 2.5.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts value to float64 if it is a numeric type or a numeric string.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asString renders a comparison operand for the string-equality fallback.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
