package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

var _ store.Stores = (*Repository)(nil)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(fmt.Sprintf(DSNTemplate, uuid.NewString()))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryTransactionsKeepInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dates := []string{"2024-03-01", "2024-01-01", "2024-02-01"}
	for i, d := range dates {
		date, _ := core.ParseDate(d)
		err := repo.Add(ctx, core.Transaction{
			ID:          fmt.Sprintf("tx-%d", i),
			Amount:      core.Money{Cents: 1250},
			AmountText:  "12.50",
			Date:        date,
			Description: "coffee",
			Category:    core.Food,
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got))
	}
	for i, tx := range got {
		if tx.ID != fmt.Sprintf("tx-%d", i) || tx.Date.String() != dates[i] {
			t.Fatalf("position %d: %+v", i, tx)
		}
		if tx.AmountText != "12.50" || tx.Amount.Cents != 1250 || tx.Category != core.Food {
			t.Fatalf("fields did not round-trip: %+v", tx)
		}
	}
}

func TestRepositoryBudgetsUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b, err := repo.Get(ctx, core.Shopping)
	if err != nil || b.Amount.Cents != 0 || b.Text != "" {
		t.Fatalf("unset budget: %+v err=%v", b, err)
	}

	if err := repo.Set(ctx, core.Shopping, core.BudgetEntry{Amount: core.Money{Cents: 5000}, Text: "50"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, core.Shopping, core.BudgetEntry{Amount: core.Money{Cents: 7500}, Text: "75"}); err != nil {
		t.Fatalf("set again: %v", err)
	}

	b, _ = repo.Get(ctx, core.Shopping)
	if b.Amount.Cents != 7500 || b.Text != "75" {
		t.Fatalf("expected overwrite, got %+v", b)
	}

	all, err := repo.All(ctx)
	if err != nil || len(all) != 1 || all[core.Shopping].Amount.Cents != 7500 {
		t.Fatalf("unexpected budgets %v err=%v", all, err)
	}
}

func TestRepositoriesAreIsolated(t *testing.T) {
	a := newTestRepo(t)
	b := newTestRepo(t)
	ctx := context.Background()

	_ = a.Add(ctx, core.Transaction{
		ID:          "only-in-a",
		Amount:      core.Money{Cents: 1},
		AmountText:  "0.01",
		Date:        core.NewDate(2024, 1, 1),
		Description: "x",
		Category:    core.Other,
	})
	got, _ := b.List(ctx)
	if len(got) != 0 {
		t.Fatalf("session databases must not share rows")
	}
}
