// internal/logs/narrative.go
package logs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/adspilot/engine/internal/types"
)

/*
 * Human-readable rendering of conditions, actions and outcomes.
 *
 * The panel displays execution logs in Indonesian. Display names come from
 * fixed lookup tables; unknown metric or operator keys pass through
 * unmodified so a log written by a newer engine version still renders.
 *
 * Value formatting follows the metric family:
 *   - ctr family renders as a percentage ("2.50%")
 *   - money family (cost, budget, gmv, cpc, cpm) renders as grouped rupiah
 *     ("Rp 150.000", Indonesian thousand separator)
 *   - count family (clicks, impressions, orders) renders as grouped integers
 *   - ratio family (roi) renders with two decimals
 */

// metricNames maps canonical metric keys to display names.
var metricNames = map[string]string{
	"ctr":         "CTR",
	"cost":        "Biaya Iklan",
	"clicks":      "Jumlah Klik",
	"impressions": "Jumlah Tampil",
	"budget":      "Anggaran Harian",
	"broad_order": "Pesanan",
	"broad_gmv":   "Omzet Iklan",
	"broad_roi":   "ROAS",
	"cpc":         "Biaya per Klik",
	"cpm":         "CPM",
}

// operatorNames maps canonical operators to display phrases.
var operatorNames = map[string]string{
	">":  "lebih dari",
	"<":  "kurang dari",
	">=": "minimal",
	"<=": "maksimal",
	"=":  "sama dengan",
}

// logicNames maps group logic to display conjunctions.
var logicNames = map[types.GroupLogic]string{
	types.LogicAnd: "DAN",
	types.LogicOr:  "ATAU",
}

// metric families for value formatting
var (
	percentMetrics = map[string]bool{"ctr": true}
	moneyMetrics   = map[string]bool{"cost": true, "budget": true, "broad_gmv": true, "cpc": true, "cpm": true}
	countMetrics   = map[string]bool{"clicks": true, "impressions": true, "broad_order": true}
)

// MetricName returns the display name for a metric key.
// Unknown keys pass through unmodified.
func MetricName(metric string) string {
	if name, ok := metricNames[metric]; ok {
		return name
	}
	return metric
}

// OperatorName returns the display phrase for an operator.
// Unknown operators pass through unmodified.
func OperatorName(op string) string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return op
}

// FormatValue renders a condition or report value for display according to
// the metric's family. Non-numeric values render as-is.
func FormatValue(metric string, value any) string {
	f, ok := toNumber(value)
	if !ok {
		return fmt.Sprintf("%v", value)
	}

	switch {
	case percentMetrics[metric]:
		return fmt.Sprintf("%.2f%%", f)
	case moneyMetrics[metric]:
		return "Rp " + groupDigits(int64(math.Round(f)))
	case countMetrics[metric]:
		return groupDigits(int64(math.Round(f)))
	default:
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
}

// ConditionsNarrative renders a rule's condition groups as one display
// string: conditions joined by the group conjunction, groups joined by ATAU.
func ConditionsNarrative(groups []types.ConditionGroup) string {
	parts := make([]string, 0, len(groups))
	for _, group := range groups {
		conds := make([]string, 0, len(group.Conditions))
		for _, c := range group.Conditions {
			conds = append(conds, fmt.Sprintf("%s %s %s",
				MetricName(string(c.Metric)),
				OperatorName(string(c.Operator)),
				FormatValue(string(c.Metric), c.Value)))
		}
		joined := strings.Join(conds, " "+logicNames[group.Logic]+" ")
		if len(groups) > 1 && len(group.Conditions) > 1 {
			joined = "(" + joined + ")"
		}
		parts = append(parts, joined)
	}
	return strings.Join(parts, " ATAU ")
}

// ActionNarrative describes the mutation a fired rule applies.
// Unknown kinds render their raw type so logs stay informative.
func ActionNarrative(action types.Action) string {
	switch action.Kind {
	case types.ActionSetBudget:
		return "Mengubah anggaran harian menjadi " + FormatValue("budget", action.Value)
	case types.ActionAddBudget:
		return "Menambah anggaran harian sebesar " + FormatValue("budget", action.Value)
	case types.ActionReduceBudget:
		return "Mengurangi anggaran harian sebesar " + FormatValue("budget", action.Value)
	case types.ActionPause:
		return "Menonaktifkan iklan"
	case types.ActionResume:
		return "Mengaktifkan iklan"
	default:
		return string(action.Kind)
	}
}

// OutcomeMessage builds the per-campaign summary line.
// Format is a stable contract consumed by the panel:
//
//	"Berhasil - (N Kondisi: Terpenuhi X, Gagal Y)"
//	"Dilewati - (N Kondisi: Terpenuhi X, Gagal Y)"
//	"Gagal Eksekusi - <reason>"
func OutcomeMessage(outcome string, evaluations []types.ConditionEvaluation, errorMessage string) string {
	if outcome == OutcomeFailed {
		reason := errorMessage
		if reason == "" {
			reason = "alasan tidak diketahui"
		}
		return "Gagal Eksekusi - " + reason
	}

	met := 0
	for _, ev := range evaluations {
		if ev.Met {
			met++
		}
	}
	counts := fmt.Sprintf("(%d Kondisi: Terpenuhi %d, Gagal %d)",
		len(evaluations), met, len(evaluations)-met)

	if outcome == OutcomeSkipped {
		return "Dilewati - " + counts
	}
	return "Berhasil - " + counts
}

// groupDigits inserts Indonesian thousand separators ("1.234.567").
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// toNumber mirrors the evaluator's numeric parsing for display purposes.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
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
