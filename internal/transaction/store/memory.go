package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

// Memory keeps transactions in process memory. Callers only ever see copies.
type Memory struct {
	mu  sync.RWMutex
	txs map[uuid.UUID]*transaction.Transaction
}

func NewMemory() *Memory {
	return &Memory{txs: make(map[uuid.UUID]*transaction.Transaction)}
}

func (m *Memory) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.txs[tx.ID]; ok {
		return fmt.Errorf("creating transaction: duplicate id %s", tx.ID)
	}

	m.txs[tx.ID] = tx.Clone()

	return nil
}

func (m *Memory) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.txs[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return tx.Clone(), nil
}

func (m *Memory) UpdateTransaction(_ context.Context, id uuid.UUID, fn func(*transaction.Transaction) error) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.txs[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	m.txs[id] = next

	return next.Clone(), nil
}

func (m *Memory) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]*transaction.Transaction, 0, len(m.txs))

	for _, tx := range m.txs {
		if filter.Matches(tx) {
			txs = append(txs, tx.Clone())
		}
	}

	sortByCreated(txs)

	return txs, nil
}

func sortByCreated(txs []*transaction.Transaction) {
	slices.SortFunc(txs, func(a, b *transaction.Transaction) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return slices.Compare(a.ID[:], b.ID[:])
	})
}
