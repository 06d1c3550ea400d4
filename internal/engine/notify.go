// internal/engine/notify.go
package engine

import (
	"context"
	"log/slog"
)

// Notifier receives failure summaries after runs with failed evaluations.
// The production implementation pushes to the panel's notification channel;
// message formatting itself is owned by that collaborator.
type Notifier interface {
	NotifyRunFailures(ctx context.Context, summary RunSummary) error
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// NotifyRunFailures implements Notifier.
func (NopNotifier) NotifyRunFailures(context.Context, RunSummary) error { return nil }

// SlogNotifier reports failure summaries to the structured log.
// Default wiring when no external notification channel is configured.
type SlogNotifier struct {
	Logger *slog.Logger
}

// NotifyRunFailures implements Notifier.
func (n SlogNotifier) NotifyRunFailures(_ context.Context, summary RunSummary) error {
	n.Logger.Warn("run finished with failures",
		"run_id", summary.RunID,
		"failed", summary.Failed,
		"evaluated", summary.Evaluated)
	return nil
}
