// Package shopee provides the authenticated marketplace API client used by
// the action executor for budget and status mutations.
//
// Calls are cookie-authenticated per toko. Failure classification matters
// more than the happy path here: a stale session must surface as
// ErrCredentialExpired so the orchestrator flags the store for
// re-authentication instead of blaming the rule, and a marketplace-rejected
// mutation (e.g. budget below minimum) must carry the marketplace's own
// message into the execution log.
//
// No internal retries: a failed mutation is recorded as a failed run and
// retried naturally on the next scheduled tick.
package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adspilot/engine/internal/types"
)

// MinDailyBudget is the marketplace's minimum daily budget (IDR).
// Mutations below this floor are rejected server-side; the executor clamps
// against it before issuing the call.
const MinDailyBudget = 5000

// DefaultTimeout bounds every marketplace call.
// Matches the 60s budget used for external calls elsewhere in the product.
const DefaultTimeout = 60 * time.Second

// Client issues marketplace ad-management API calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a marketplace client.
// A zero timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiResponse is the marketplace's JSON envelope.
// code 0 means success; non-zero codes carry a human-readable msg.
type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Marketplace error codes the engine distinguishes.
const (
	codeOK         = 0
	codeNotLogged  = 10003 // session cookie expired or revoked
	codeBelowFloor = 32004 // budget below marketplace minimum
)

// UpdateBudget sets a campaign's daily budget.
func (c *Client) UpdateBudget(ctx context.Context, creds types.StoreCredentials, campaignID types.CampaignID, budget float64) error {
	body := map[string]any{
		"campaign_id":  campaignID,
		"daily_budget": budget,
	}
	return c.post(ctx, "update_budget", "/api/pas/v1/campaign/budget", creds, body)
}

// UpdateStatus pauses or resumes a campaign.
func (c *Client) UpdateStatus(ctx context.Context, creds types.StoreCredentials, campaignID types.CampaignID, status string) error {
	body := map[string]any{
		"campaign_id": campaignID,
		"status":      status,
	}
	return c.post(ctx, "update_status", "/api/pas/v1/campaign/status", creds, body)
}

// post issues one authenticated mutation and classifies the outcome.
func (c *Client) post(ctx context.Context, op, path string, creds types.StoreCredentials, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &types.ExternalCallError{Op: op, Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &types.ExternalCallError{Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", creds.Cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures include client-side timeouts; retryable on the
		// next scheduled run, never inline.
		return &types.ExternalCallError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &types.ExternalCallError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "session rejected by marketplace",
			Err:        types.ErrCredentialExpired,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &types.ExternalCallError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &types.ExternalCallError{Op: op, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}

	switch envelope.Code {
	case codeOK:
		return nil
	case codeNotLogged:
		return &types.ExternalCallError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "marketplace session expired",
			Err:        types.ErrCredentialExpired,
		}
	default:
		msg := envelope.Msg
		if msg == "" {
			msg = fmt.Sprintf("marketplace error code %d", envelope.Code)
		}
		return &types.ExternalCallError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
}
