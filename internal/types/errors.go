package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for AdsPilot engine operations.
var (
	// ErrLogNotFound indicates the requested execution log id does not exist.
	ErrLogNotFound = errors.New("execution log not found")

	// ErrRuleNotFound indicates the referenced rule no longer exists.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrCampaignNotFound indicates the campaign is missing from the metrics store.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrStoreNotFound indicates no credentials exist for the toko.
	ErrStoreNotFound = errors.New("store not found")

	// ErrMalformedConditions indicates a rule's conditions JSON column could
	// not be decoded. The rule is skipped for the run, never evaluated partially.
	ErrMalformedConditions = errors.New("malformed rule conditions")

	// ErrMalformedActions indicates a rule's actions JSON column could not be decoded.
	ErrMalformedActions = errors.New("malformed rule actions")

	// ErrUnknownAction indicates an action kind the executor does not support.
	ErrUnknownAction = errors.New("unknown action kind")

	// ErrCredentialExpired indicates the store's marketplace session is stale.
	// Distinguished from generic call failures so the orchestrator can flag
	// the store as needing re-authentication instead of blaming the rule.
	ErrCredentialExpired = errors.New("store credentials expired")

	// ErrAccessDenied indicates the caller lacks the permission for an operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrPairInFlight indicates an evaluation for the same (rule, campaign)
	// pair is still running from a previous tick.
	ErrPairInFlight = errors.New("evaluation already in flight for pair")
)

// ExternalCallError describes a failed marketplace API call.
// Wraps ErrCredentialExpired when the session is stale so errors.Is keeps
// working across the orchestrator boundary.
type ExternalCallError struct {
	Op         string // e.g. "update_budget", "update_status"
	StatusCode int    // HTTP status, 0 for transport errors
	Message    string // human-readable reason surfaced in execution logs
	Err        error  // underlying cause
}

// Error implements the error interface.
func (e *ExternalCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("marketplace %s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("marketplace %s failed: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// IsCredentialExpired reports whether err stems from a stale store session.
func IsCredentialExpired(err error) bool {
	return errors.Is(err, ErrCredentialExpired)
}
