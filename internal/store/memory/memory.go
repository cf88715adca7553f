package memory

import (
	"context"
	"sync"

	"spendwise/internal/core"
)

type Store struct {
	mu      sync.Mutex
	items   []core.Transaction
	budgets map[core.Category]core.BudgetEntry
}

func New() *Store {
	return &Store{budgets: make(map[core.Category]core.BudgetEntry)}
}

// Add appends the transaction.
func (s *Store) Add(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return nil
}

// List returns a copy of the transactions in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// Set overwrites the budget for a category.
func (s *Store) Set(_ context.Context, c core.Category, b core.BudgetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[c] = b
	return nil
}

// Get returns the budget for a category, the zero entry when unset.
func (s *Store) Get(_ context.Context, c core.Category) (core.BudgetEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets[c], nil
}

// All returns a copy of every budget set so far.
func (s *Store) All(_ context.Context) (map[core.Category]core.BudgetEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[core.Category]core.BudgetEntry, len(s.budgets))
	for c, b := range s.budgets {
		out[c] = b
	}
	return out, nil
}

// Close drops the session state.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.budgets = make(map[core.Category]core.BudgetEntry)
	return nil
}
