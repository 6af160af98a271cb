// Package tx defines the transaction contract domain services depend on,
// keeping them free of any database driver import.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction.
//
// Every ledger fan-out (inward approval, consumption) runs inside exactly one
// RunInTransaction call: either all touched rows reflect the change or none do.
// The postgres implementation reuses a transaction already present on the
// context, so nested calls compose into a single commit.
type Manager interface {
	// RunInTransaction commits when fn returns nil and rolls back otherwise.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions for multi-query reads that
// need a consistent snapshot. Writes inside fn fail.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
