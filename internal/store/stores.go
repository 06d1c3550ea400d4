package store

import (
	"context"
	"fmt"
	"time"

	"github.com/adspilot/engine/internal/types"
)

// storeRow mirrors a stores row.
type storeRow struct {
	TokoID       int64  `db:"id_toko"`
	Name         string `db:"name"`
	Cookie       string `db:"cookie"`
	NeedsRelogin bool   `db:"needs_relogin"`
}

// Registry is the store registry: per-toko marketplace credentials.
type Registry struct {
	q Queries
}

// NewRegistry creates the store registry repository.
func NewRegistry(q Queries) *Registry {
	return &Registry{q: q}
}

// Credentials returns the session material for one toko.
func (r *Registry) Credentials(ctx context.Context, tokoID types.TokoID) (types.StoreCredentials, error) {
	var row storeRow
	if err := r.q.Get(ctx, "get-store", &row, int64(tokoID)); err != nil {
		if isNoRows(err) {
			return types.StoreCredentials{}, types.ErrStoreNotFound
		}
		return types.StoreCredentials{}, fmt.Errorf("get store %d: %w", tokoID, err)
	}
	return types.StoreCredentials{
		TokoID:       types.TokoID(row.TokoID),
		Name:         row.Name,
		Cookie:       row.Cookie,
		NeedsRelogin: row.NeedsRelogin,
	}, nil
}

// MarkNeedsRelogin flags a store whose marketplace session has expired.
// The panel surfaces the flag to the user; the engine keeps evaluating other
// stores untouched.
func (r *Registry) MarkNeedsRelogin(ctx context.Context, tokoID types.TokoID) error {
	if _, err := r.q.Exec(ctx, "mark-store-needs-relogin", time.Now().UTC(), int64(tokoID)); err != nil {
		return fmt.Errorf("mark store %d needs relogin: %w", tokoID, err)
	}
	return nil
}
