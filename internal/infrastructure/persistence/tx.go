package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager implements shared.Transactor over GORM. The transaction handle
// travels in the context so repositories join the ambient transaction
// transparently.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over the given database
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transact runs fn inside a database transaction. Nested calls join the
// outer transaction rather than opening a new one.
func (m *TxManager) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the ambient transaction handle if one is present,
// otherwise the base connection
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
