package memory

import (
	"context"
	"sync"

	"github.com/KotFed0t/wealth_tracker/data/repository"
	"github.com/KotFed0t/wealth_tracker/internal/accounting"
	"github.com/KotFed0t/wealth_tracker/internal/model"
)

type txKey struct{}

// Memory is a process local ledger. Transactions are serialized by a single
// lock and are not rolled back on error, because every mutation is one step.
type Memory struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	nextID int64
	rows   []model.Transaction
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return tFunc(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return tFunc(context.WithValue(ctx, txKey{}, struct{}{}))
}

func (m *Memory) AppendTransaction(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx.ID = m.nextID
	m.nextID++
	m.rows = append(m.rows, tx)
	return tx, nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return accounting.SortLedger(m.rows), nil
}

func (m *Memory) GetTransaction(_ context.Context, id int64) (model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tx := range m.rows {
		if tx.ID == id {
			return tx, nil
		}
	}
	return model.Transaction{}, repository.ErrNotFound
}

func (m *Memory) DeleteTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.rows {
		if tx.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
