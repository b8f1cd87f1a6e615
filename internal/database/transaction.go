package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Transaction wraps a GORM transaction. Commit and Rollback are idempotent:
// once either has succeeded the other becomes a no-op.
type Transaction struct {
	tx       *gorm.DB
	finished bool
}

// Begin starts a new database transaction.
func (d Database) Begin(ctx context.Context) (*Transaction, error) {
	tx := d.Session(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &Transaction{tx: tx}, nil
}

// Session returns the transaction session for executing queries.
func (t *Transaction) Session() *gorm.DB {
	return t.tx
}

// Finished reports whether the transaction was committed or rolled back.
func (t *Transaction) Finished() bool {
	return t.finished
}

// Commit commits the transaction.
func (t *Transaction) Commit() error {
	if t.finished {
		return nil
	}
	if err := t.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.finished = true
	return nil
}

// Rollback rolls back the transaction if not already finished.
func (t *Transaction) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if err := t.tx.Rollback().Error; err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
