// Package store implements the engine's persistence collaborators over
// named SQL queries: rule definitions, the campaign metrics store, the toko
// credential registry, and the execution log store.
//
// Repositories convert between db row shapes (sql tags, NULL handling) and
// the domain types in internal/types; nothing above this package sees
// database/sql.
package store

import (
	"context"
	"database/sql"

	"github.com/adspilot/engine/internal/core/db"
)

// Queries is the named-query surface the repositories need.
// Implemented by *db.Queries; narrowed so tests can stub it.
type Queries interface {
	Exec(ctx context.Context, name string, args ...interface{}) (sql.Result, error)
	Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error
	Select(ctx context.Context, name string, dest interface{}, args ...interface{}) error
}

var _ Queries = (*db.Queries)(nil)
