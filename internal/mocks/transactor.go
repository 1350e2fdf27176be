package mocks

import (
	"context"

	"github.com/tasksvc/tasksvc-api/internal/store"
)

// MockTransactor implements store.Transactor without a database: the
// function runs directly with a nil transaction. Pair it with the mock
// stores, whose WithTx returns the store itself.
type MockTransactor struct {
	TransactFn func(ctx context.Context, fn store.TxFn) error
	Err        error
}

// Transact implements the store.Transactor interface.
func (m *MockTransactor) Transact(ctx context.Context, fn store.TxFn) error {
	if m.TransactFn != nil {
		return m.TransactFn(ctx, fn)
	}
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
