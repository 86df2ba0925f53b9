package memory

import (
	"context"

	"github.com/upb/shipment-ledger/repositories"
)

// TransactionManager implements repositories.TransactionManager for the
// in-memory stores. Ledger operations validate fully against a read-only
// snapshot before any write, so under the single-writer precondition a
// failed operation has performed no mutation and there is nothing to roll
// back; the transaction is a sequencing marker only.
type TransactionManager struct{}

// NewTransactionManager creates a new in-memory transaction manager.
func NewTransactionManager() repositories.TransactionManager {
	return &TransactionManager{}
}

// Begin starts a new transaction
func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &Transaction{ctx: ctx}, nil
}

// InTransaction executes a function within a transaction
func (tm *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Transaction implements the repositories.Transaction interface
type Transaction struct {
	ctx context.Context
}

// Commit commits the transaction
func (t *Transaction) Commit() error { return nil }

// Rollback rolls back the transaction
func (t *Transaction) Rollback() error { return nil }

// Context returns the transaction context
func (t *Transaction) Context() context.Context { return t.ctx }
