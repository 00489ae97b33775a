package database

import "context"

// Transactor runs fn with a transaction carried by the context. Repositories pick it up
// through their querier lookup.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
