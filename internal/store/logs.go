package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adspilot/engine/internal/types"
)

// logRow mirrors a rule_execution_logs row.
// run_id is nullable: rows written before run ids existed carry NULL and are
// grouped by the executed-at window fallback.
type logRow struct {
	ID            string         `db:"id"`
	RuleID        string         `db:"rule_id"`
	RunID         sql.NullString `db:"run_id"`
	TokoID        int64          `db:"id_toko"`
	CampaignID    int64          `db:"campaign_id"`
	Status        string         `db:"status"`
	ErrorMessage  string         `db:"error_message"`
	ExecutionData string         `db:"execution_data"`
	ExecutedAt    time.Time      `db:"executed_at"`
}

// Logs is the execution log store. Rows are immutable after insert and each
// insert commits independently, so one campaign's failure never rolls back a
// sibling's record.
type Logs struct {
	q Queries
}

// NewLogs creates the execution log repository.
func NewLogs(q Queries) *Logs {
	return &Logs{q: q}
}

// Insert persists one execution log record.
func (l *Logs) Insert(ctx context.Context, rec types.ExecutionLogRecord) error {
	data, err := types.MarshalExecutionData(rec.ExecutionData)
	if err != nil {
		return fmt.Errorf("marshal execution data: %w", err)
	}

	runID := sql.NullString{String: string(rec.RunID), Valid: rec.RunID != ""}

	if _, err := l.q.Exec(ctx, "insert-execution-log",
		string(rec.ID), string(rec.RuleID), runID,
		int64(rec.TokoID), int64(rec.CampaignID),
		rec.Status, rec.ErrorMessage, data, rec.ExecutedAt,
	); err != nil {
		return fmt.Errorf("insert execution log %s: %w", rec.ID, err)
	}
	return nil
}

// GetByID loads one log record, returning ErrLogNotFound for unknown ids.
func (l *Logs) GetByID(ctx context.Context, id types.LogID) (types.ExecutionLogRecord, error) {
	var row logRow
	if err := l.q.Get(ctx, "get-execution-log", &row, string(id)); err != nil {
		if isNoRows(err) {
			return types.ExecutionLogRecord{}, types.ErrLogNotFound
		}
		return types.ExecutionLogRecord{}, fmt.Errorf("get execution log %s: %w", id, err)
	}
	return toRecord(row)
}

// ListByRun returns all log records of one run in execution order.
func (l *Logs) ListByRun(ctx context.Context, runID types.RunID) ([]types.ExecutionLogRecord, error) {
	var rows []logRow
	if err := l.q.Select(ctx, "list-logs-by-run", &rows, string(runID)); err != nil {
		return nil, fmt.Errorf("list logs for run %s: %w", runID, err)
	}
	return toRecords(rows)
}

// ListByWindow returns a rule's log records inside [from, to], the legacy
// grouping mechanism for rows without a run id.
func (l *Logs) ListByWindow(ctx context.Context, ruleID types.RuleID, from, to time.Time) ([]types.ExecutionLogRecord, error) {
	var rows []logRow
	if err := l.q.Select(ctx, "list-logs-by-window", &rows, string(ruleID), from, to); err != nil {
		return nil, fmt.Errorf("list logs for rule %s window: %w", ruleID, err)
	}
	return toRecords(rows)
}

func toRecord(row logRow) (types.ExecutionLogRecord, error) {
	data, err := types.UnmarshalExecutionData(row.ExecutionData)
	if err != nil {
		return types.ExecutionLogRecord{}, fmt.Errorf("malformed execution data on log %s: %w", row.ID, err)
	}

	rec := types.ExecutionLogRecord{
		ID:            types.LogID(row.ID),
		RuleID:        types.RuleID(row.RuleID),
		TokoID:        types.TokoID(row.TokoID),
		CampaignID:    types.CampaignID(row.CampaignID),
		Status:        row.Status,
		ErrorMessage:  row.ErrorMessage,
		ExecutionData: data,
		ExecutedAt:    row.ExecutedAt,
	}
	if row.RunID.Valid {
		rec.RunID = types.RunID(row.RunID.String)
	}
	return rec, nil
}

func toRecords(rows []logRow) ([]types.ExecutionLogRecord, error) {
	records := make([]types.ExecutionLogRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
