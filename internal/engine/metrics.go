// internal/engine/metrics.go
package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the run orchestrator.
// Outcome label matches execution log semantics: skipped, success, failed.
var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "adspilot",
		Subsystem: "engine",
		Name:      "runs_total",
		Help:      "Completed orchestrator runs.",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "adspilot",
		Subsystem: "engine",
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of one orchestrator run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adspilot",
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Per (rule, campaign) evaluation outcomes.",
	}, []string{"outcome"})

	ruleParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "adspilot",
		Subsystem: "engine",
		Name:      "rule_parse_failures_total",
		Help:      "Rules skipped because their JSON columns failed to decode.",
	})

	logWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "adspilot",
		Subsystem: "engine",
		Name:      "log_write_failures_total",
		Help:      "Execution log inserts that failed.",
	})
)
