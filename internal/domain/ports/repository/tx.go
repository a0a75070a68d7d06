package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through repository methods. Its
// concrete type is infra-defined (pgx.Tx for Postgres). Repositories MUST
// gracefully accept a nil handle and fall back to their own pool.
type Tx interface{}

// NoTX marks an intentionally non-transactional call site.
var NoTX Tx

// TransactionManager executes a function within a store transaction,
// passing the underlying handle via tx. It keeps use-case interfaces clean:
// no storage types leak out, and repository methods that receive the handle
// run their statements tx-bound (including SELECT ... FOR UPDATE).
//
// Approval couples three writes (request flip, subscription insert, user
// pointer move) into one unit; either all land or none do.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
