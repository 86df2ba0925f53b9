package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/shipment-ledger/repositories"
	"go.uber.org/zap"
)

func TestInTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE shipments")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
			// Repositories pick the transaction up through the context.
			executor := GetExecutor(txCtx, db)
			_, err := executor.ExecContext(txCtx, "UPDATE shipments SET status = $2 WHERE id = $1", "S1", "in_transit")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("validation rejected mid-write")
		err := tm.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin().WillReturnError(errors.New("connection lost"))

		err := tm.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
			t.Fatal("function must not run when begin fails")
			return nil
		})
		assert.Error(t, err)
	})
}

func TestGetExecutor(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	t.Run("returns the pool without a transaction", func(t *testing.T) {
		executor := GetExecutor(ctx, db)
		assert.Equal(t, db.DB, executor)
	})

	t.Run("returns the transaction when bound to the context", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		tm := NewTransactionManager(db, zap.NewNop())
		err := tm.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
			tx2, ok := GetTransactionFromContext(txCtx)
			assert.True(t, ok)
			assert.Equal(t, tx, tx2)
			assert.NotEqual(t, db.DB, GetExecutor(txCtx, db))
			return errors.New("unwind")
		})
		assert.Error(t, err)
	})
}
