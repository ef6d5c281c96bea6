package repositories

import "context"

// TxManager is the unit-of-work boundary. Callers open one unit of work per
// logical operation; every repository call made with the returned context
// executes against the same store transaction. The function's error aborts
// the transaction; a nil return commits it. Nested calls join the ambient
// transaction instead of opening a new one.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
