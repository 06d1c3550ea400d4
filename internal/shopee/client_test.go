// internal/shopee/client_test.go
package shopee

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adspilot/engine/internal/types"
)

func testCreds() types.StoreCredentials {
	return types.StoreCredentials{TokoID: 7, Cookie: "SPC_EC=session-token"}
}

func TestUpdateBudget_Success(t *testing.T) {
	var gotPath, gotCookie string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCookie = r.Header.Get("Cookie")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(apiResponse{Code: codeOK})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	err := client.UpdateBudget(context.Background(), testCreds(), 1001, 200000)
	if err != nil {
		t.Fatalf("UpdateBudget() error = %v, want nil", err)
	}
	if gotPath != "/api/pas/v1/campaign/budget" {
		t.Errorf("path = %q, want budget endpoint", gotPath)
	}
	if gotCookie != "SPC_EC=session-token" {
		t.Errorf("cookie = %q, want store session", gotCookie)
	}
	if gotBody["daily_budget"] != float64(200000) || gotBody["campaign_id"] != float64(1001) {
		t.Errorf("body = %v, want campaign 1001 budget 200000", gotBody)
	}
}

func TestUpdateStatus_Success(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pas/v1/campaign/status" {
			t.Errorf("path = %q, want status endpoint", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(apiResponse{Code: codeOK})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	if err := client.UpdateStatus(context.Background(), testCreds(), 1001, types.CampaignStatusPaused); err != nil {
		t.Fatalf("UpdateStatus() error = %v, want nil", err)
	}
	if gotBody["status"] != types.CampaignStatusPaused {
		t.Errorf("body status = %v, want paused", gotBody["status"])
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		wantExpired    bool
		wantMessagePre string
	}{
		{
			name: "http_401_is_credential_expiry",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantExpired:    true,
			wantMessagePre: "session rejected",
		},
		{
			name: "http_403_is_credential_expiry",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantExpired: true,
		},
		{
			name: "envelope_not_logged_is_credential_expiry",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(apiResponse{Code: codeNotLogged, Msg: "not logged in"})
			},
			wantExpired:    true,
			wantMessagePre: "marketplace session expired",
		},
		{
			name: "envelope_rejection_carries_message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(apiResponse{Code: codeBelowFloor, Msg: "budget below minimum"})
			},
			wantExpired:    false,
			wantMessagePre: "budget below minimum",
		},
		{
			name: "http_500_is_plain_failure",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantExpired:    false,
			wantMessagePre: "unexpected status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, 0)
			err := client.UpdateBudget(context.Background(), testCreds(), 1001, 200000)
			if err == nil {
				t.Fatalf("UpdateBudget() error = nil, want failure")
			}

			var callErr *types.ExternalCallError
			if !errors.As(err, &callErr) {
				t.Fatalf("error = %v, want ExternalCallError", err)
			}
			if got := types.IsCredentialExpired(err); got != tt.wantExpired {
				t.Errorf("IsCredentialExpired = %v, want %v", got, tt.wantExpired)
			}
			if tt.wantMessagePre != "" && callErr.Message[:len(tt.wantMessagePre)] != tt.wantMessagePre {
				t.Errorf("Message = %q, want prefix %q", callErr.Message, tt.wantMessagePre)
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	// Closed server: transport-level failure, classified but not expiry.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, 0)
	err := client.UpdateBudget(context.Background(), testCreds(), 1001, 200000)

	var callErr *types.ExternalCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want ExternalCallError", err)
	}
	if types.IsCredentialExpired(err) {
		t.Errorf("transport failure classified as credential expiry")
	}
}
