package store

import (
	"context"

	"spendwise/internal/core"
)

// Ports for session state backends.
type (
	// TransactionStore is an append-only, order-preserving list of
	// transactions. It performs no validation; callers validate drafts first.
	TransactionStore interface {
		Add(ctx context.Context, tx core.Transaction) error
		// List returns every transaction in insertion order.
		List(ctx context.Context) ([]core.Transaction, error)
	}

	// BudgetStore maps categories to budgets. Unset categories read as zero.
	BudgetStore interface {
		Set(ctx context.Context, c core.Category, b core.BudgetEntry) error
		Get(ctx context.Context, c core.Category) (core.BudgetEntry, error)
		All(ctx context.Context) (map[core.Category]core.BudgetEntry, error)
	}

	// Stores is the state owned by one session.
	Stores interface {
		TransactionStore
		BudgetStore
		Close() error
	}
)
