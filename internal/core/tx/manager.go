// Package tx defines the transaction boundary used by domain services.
// The implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs work inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction. An error from fn rolls
	// back, success commits. Nested calls reuse the transaction carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Nop runs fn directly. Used by tests and in-memory wiring.
type Nop struct{}

func (Nop) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
