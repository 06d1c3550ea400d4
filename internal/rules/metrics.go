// internal/rules/metrics.go
package rules

import (
	"time"

	"github.com/adspilot/engine/internal/types"
)

/*
 * Metric resolution.
 *
 * Resolves a single numeric value for (campaign, metric, timeframe) from the
 * campaign's stored daily report rows. Pure function: the snapshot is taken
 * once per evaluation and every condition of a rule reads from the same rows,
 * so conditions are never compared against inconsistent mid-run data.
 *
 * Aggregation:
 *   - Additive fields (cost, clicks, impressions, gmv, orders) sum over the
 *     selected window.
 *   - Ratio fields (ctr, cpc, cpm, roi) derive from the window sums rather
 *     than averaging daily ratios, so a high-volume day weighs correctly.
 *   - budget reads the campaign's current daily budget; the timeframe is
 *     ignored because budget is a setting, not a report series.
 *
 * Missing or absent report rows resolve to 0, never an error: the upstream
 * storage layer COALESCEs report fields, and comparisons must stay
 * well-defined for campaigns with no traffic yet. Money fields are already
 * normalized on ingestion; no rescaling happens here.
 *
 * Unknown metrics return ok=false; the evaluator substitutes the literal
 * metric string as the actual value (permissive passthrough kept from the
 * product's behavior).
 */

// Resolve returns the value of metric over the condition's timeframe.
// ok=false means the metric is not part of the known vocabulary.
func Resolve(c *types.Campaign, metric types.Metric, tf types.Timeframe, now time.Time) (float64, bool) {
	if !metric.Known() {
		return 0, false
	}

	if metric == types.MetricBudget {
		return c.DailyBudget, true
	}

	var cost, click, impression, gmv, order float64
	for _, r := range c.Reports {
		if !inWindow(r.Date, tf, now) {
			continue
		}
		cost += r.Cost
		click += r.Click
		impression += r.Impression
		gmv += r.BroadGMV
		order += r.BroadOrder
	}

	switch metric {
	case types.MetricCost:
		return cost, true
	case types.MetricClicks:
		return click, true
	case types.MetricImpression:
		return impression, true
	case types.MetricBroadGMV:
		return gmv, true
	case types.MetricBroadOrder:
		return order, true
	case types.MetricCTR:
		return ratio(click, impression) * 100, true
	case types.MetricCPC:
		return ratio(cost, click), true
	case types.MetricCPM:
		return ratio(cost, impression) * 1000, true
	case types.MetricBroadROI:
		return ratio(gmv, cost), true
	default:
		return 0, false
	}
}

// inWindow reports whether a report date falls inside the timeframe.
// Dates compare at day granularity in UTC, matching how report rows are
// stored. last_N_days covers the N calendar days ending today.
func inWindow(date time.Time, tf types.Timeframe, now time.Time) bool {
	day := truncateDay(date)
	today := truncateDay(now)

	switch tf.Kind {
	case types.TimeframeLifetime:
		return true
	case types.TimeframeYesterday:
		return day.Equal(today.AddDate(0, 0, -1))
	case types.TimeframeLastNDays:
		start := today.AddDate(0, 0, -(tf.Days - 1))
		return !day.Before(start) && !day.After(today)
	default: // today
		return day.Equal(today)
	}
}

// truncateDay normalizes to UTC before truncating. Report dates are stored
// in UTC; truncating now in a local zone would shift the day boundary and
// misclassify today vs yesterday near midnight.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ratio divides guarding against zero denominators (no-traffic campaigns).
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
