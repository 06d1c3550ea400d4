// Package auth provides HMAC-based API key authentication and the
// permission model for the engine's read API.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adspilot/engine/internal/types"
)

// Permissions recognized by the read API.
const (
	PermLogsViewOwn = "logs.view.own"
	PermLogsViewAll = "logs.view.all"
)

// Principal is an authenticated API caller.
type Principal struct {
	UserID       string
	Permissions  map[string]bool
	AllowedTokos map[types.TokoID]bool
}

// Has reports whether the principal holds the permission.
func (p *Principal) Has(perm string) bool {
	return p.Permissions[perm]
}

// CanViewAllLogs reports whether store filtering is bypassed.
func (p *Principal) CanViewAllLogs() bool {
	return p.Has(PermLogsViewAll)
}

// CanAccessToko reports whether the principal may see the store's data.
func (p *Principal) CanAccessToko(tokoID types.TokoID) bool {
	if p.CanViewAllLogs() {
		return true
	}
	return p.AllowedTokos[tokoID]
}

// Queries is the named-query surface authentication needs.
// Implemented by *db.Queries.
type Queries interface {
	Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error
	Exec(ctx context.Context, name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
// Holds an in-memory secret map for O(1) lookup and queries for key verification.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
	}
}

// apiKeyRow mirrors an api_keys row joined for authentication.
type apiKeyRow struct {
	APIKeyID     string       `db:"api_key_id"`
	UserID       string       `db:"user_id"`
	Permissions  string       `db:"permissions"`
	AllowedTokos string       `db:"allowed_tokos"`
	RevokedAt    sql.NullTime `db:"revoked_at"`
	LastUsedAt   sql.NullTime `db:"last_used_at"`
}

// Authenticate validates an API key and returns the caller's principal.
// Failure modes keep their distinct errors: missing/invalid keys must not
// confirm key existence, revoked keys may.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (*Principal, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return nil, ErrUnknownKey
	}

	computedHash := ComputeHMAC(secret, apiKey)

	var row apiKeyRow
	err = a.queries.Get(ctx, "get-api-key-by-hash", &row, fmt.Sprintf("%x", computedHash))
	if err == sql.ErrNoRows {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if row.RevokedAt.Valid {
		return nil, ErrKeyRevoked
	}

	principal, err := buildPrincipal(row)
	if err != nil {
		return nil, err
	}

	// Best-effort usage timestamp; failure must not reject the request.
	_, _ = a.queries.Exec(ctx, "touch-api-key-last-used", time.Now().UTC(), row.APIKeyID)

	return principal, nil
}

// buildPrincipal decodes the permissions and allowed-store JSON columns.
func buildPrincipal(row apiKeyRow) (*Principal, error) {
	var perms []string
	if row.Permissions != "" {
		if err := json.Unmarshal([]byte(row.Permissions), &perms); err != nil {
			return nil, fmt.Errorf("malformed permissions on key %s: %w", row.APIKeyID, err)
		}
	}

	var tokos []int64
	if row.AllowedTokos != "" {
		if err := json.Unmarshal([]byte(row.AllowedTokos), &tokos); err != nil {
			return nil, fmt.Errorf("malformed allowed_tokos on key %s: %w", row.APIKeyID, err)
		}
	}

	p := &Principal{
		UserID:       row.UserID,
		Permissions:  make(map[string]bool, len(perms)),
		AllowedTokos: make(map[types.TokoID]bool, len(tokos)),
	}
	for _, perm := range perms {
		p.Permissions[perm] = true
	}
	for _, toko := range tokos {
		p.AllowedTokos[types.TokoID(toko)] = true
	}
	return p, nil
}
