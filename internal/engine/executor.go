// internal/engine/executor.go
package engine

import (
	"context"
	"fmt"

	"github.com/adspilot/engine/internal/shopee"
	"github.com/adspilot/engine/internal/types"
)

/*
 * Action execution.
 *
 * Applies one fired rule's action to one campaign through the marketplace
 * client, reporting before/after values for the execution log.
 *
 * The engine executes only the first action of a rule's action list per
 * fire: one trigger applies one mutation. Multi-action sequences are not a
 * supported product behavior.
 *
 * Budget math is computed locally from the campaign snapshot and clamped at
 * the marketplace's minimum daily budget before the call, so add/reduce are
 * idempotent against the snapshot taken for this evaluation: re-running the
 * same evaluation against the same snapshot produces the same target budget.
 * A reduce that cannot move (already at the floor) is surfaced as a rejected
 * mutation rather than a silent no-op call.
 */

// MarketplaceClient issues authenticated campaign mutations.
// Implemented by *shopee.Client; narrowed here so tests can stub it.
type MarketplaceClient interface {
	UpdateBudget(ctx context.Context, creds types.StoreCredentials, campaignID types.CampaignID, budget float64) error
	UpdateStatus(ctx context.Context, creds types.StoreCredentials, campaignID types.CampaignID, status string) error
}

// Executor applies rule actions against the marketplace.
type Executor struct {
	client MarketplaceClient
}

// NewExecutor creates an action executor backed by the given client.
func NewExecutor(client MarketplaceClient) *Executor {
	return &Executor{client: client}
}

// Execute applies a single action to the campaign.
// Returns the before/after record for logging, or an error classified by
// the marketplace client (credential expiry remains detectable via
// types.IsCredentialExpired).
func (e *Executor) Execute(ctx context.Context, action types.Action, campaign *types.Campaign, creds types.StoreCredentials) (types.ActionTaken, error) {
	switch action.Kind {
	case types.ActionSetBudget, types.ActionAddBudget, types.ActionReduceBudget:
		return e.executeBudget(ctx, action, campaign, creds)
	case types.ActionPause:
		return e.executeStatus(ctx, campaign, creds, types.CampaignStatusPaused)
	case types.ActionResume:
		return e.executeStatus(ctx, campaign, creds, types.CampaignStatusOngoing)
	default:
		return types.ActionTaken{}, fmt.Errorf("%w: %q", types.ErrUnknownAction, action.Kind)
	}
}

// executeBudget computes the target daily budget and issues the update.
func (e *Executor) executeBudget(ctx context.Context, action types.Action, campaign *types.Campaign, creds types.StoreCredentials) (types.ActionTaken, error) {
	before := campaign.DailyBudget

	var target float64
	switch action.Kind {
	case types.ActionSetBudget:
		target = action.Value
	case types.ActionAddBudget:
		target = before + action.Value
	case types.ActionReduceBudget:
		target = before - action.Value
		if target < shopee.MinDailyBudget {
			target = shopee.MinDailyBudget
		}
		if before <= shopee.MinDailyBudget {
			return types.ActionTaken{}, &types.ExternalCallError{
				Op:      "update_budget",
				Message: fmt.Sprintf("daily budget already at marketplace minimum (%d)", shopee.MinDailyBudget),
			}
		}
	}

	if target < shopee.MinDailyBudget {
		return types.ActionTaken{}, &types.ExternalCallError{
			Op:      "update_budget",
			Message: fmt.Sprintf("target budget %.0f below marketplace minimum (%d)", target, shopee.MinDailyBudget),
		}
	}

	if err := e.client.UpdateBudget(ctx, creds, campaign.CampaignID, target); err != nil {
		return types.ActionTaken{}, err
	}

	return types.ActionTaken{
		Kind:   string(action.Kind),
		Before: before,
		After:  target,
	}, nil
}

// executeStatus toggles the campaign between ongoing and paused.
func (e *Executor) executeStatus(ctx context.Context, campaign *types.Campaign, creds types.StoreCredentials, status string) (types.ActionTaken, error) {
	if err := e.client.UpdateStatus(ctx, creds, campaign.CampaignID, status); err != nil {
		return types.ActionTaken{}, err
	}

	kind := types.ActionPause
	if status == types.CampaignStatusOngoing {
		kind = types.ActionResume
	}

	return types.ActionTaken{
		Kind:   string(kind),
		Before: campaign.Status,
		After:  status,
	}, nil
}
