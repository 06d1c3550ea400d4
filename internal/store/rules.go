package store

import (
	"context"
	"fmt"

	"github.com/adspilot/engine/internal/types"
)

// ruleRow mirrors a data_rules row.
type ruleRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Category    string `db:"category"`
	Enabled     bool   `db:"enabled"`
	Conditions  string `db:"conditions"`
	Actions     string `db:"actions"`
	Assignments string `db:"campaign_assignments"`
}

// Rules reads rule definitions. The engine never writes data_rules; rows are
// owned by the control panel and re-read on every scheduled run.
type Rules struct {
	q Queries
}

// NewRules creates the rule repository.
func NewRules(q Queries) *Rules {
	return &Rules{q: q}
}

// ListEnabled returns all enabled rules with their JSON columns undecoded.
// Decoding happens at the orchestrator boundary so one malformed rule can be
// skipped without failing the listing.
func (r *Rules) ListEnabled(ctx context.Context) ([]types.RuleRecord, error) {
	var rows []ruleRow
	if err := r.q.Select(ctx, "list-enabled-rules", &rows); err != nil {
		return nil, fmt.Errorf("list enabled rules: %w", err)
	}

	records := make([]types.RuleRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, types.RuleRecord{
			ID:              types.RuleID(row.ID),
			Name:            row.Name,
			Description:     row.Description,
			Category:        row.Category,
			Enabled:         row.Enabled,
			ConditionsJSON:  row.Conditions,
			ActionsJSON:     row.Actions,
			AssignmentsJSON: row.Assignments,
		})
	}
	return records, nil
}

// Get returns one rule record by id.
func (r *Rules) Get(ctx context.Context, id types.RuleID) (types.RuleRecord, error) {
	var row ruleRow
	if err := r.q.Get(ctx, "get-rule", &row, string(id)); err != nil {
		if isNoRows(err) {
			return types.RuleRecord{}, types.ErrRuleNotFound
		}
		return types.RuleRecord{}, fmt.Errorf("get rule %s: %w", id, err)
	}
	return types.RuleRecord{
		ID:              types.RuleID(row.ID),
		Name:            row.Name,
		Description:     row.Description,
		Category:        row.Category,
		Enabled:         row.Enabled,
		ConditionsJSON:  row.Conditions,
		ActionsJSON:     row.Actions,
		AssignmentsJSON: row.Assignments,
	}, nil
}
