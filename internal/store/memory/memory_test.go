package memory

import (
	"context"
	"fmt"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

var _ store.Stores = (*Store)(nil)

func TestMemoryStoreAppendPreservesOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		err := s.Add(ctx, core.Transaction{
			ID:          fmt.Sprintf("tx-%d", i),
			Amount:      core.Money{Cents: int64(i + 1)},
			Date:        core.NewDate(2024, 1, 1),
			Description: "t",
			Category:    core.Food,
		})
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	got, err := s.List(ctx)
	if err != nil || len(got) != 10 {
		t.Fatalf("unexpected list: len=%d err=%v", len(got), err)
	}
	for i, tx := range got {
		if tx.ID != fmt.Sprintf("tx-%d", i) {
			t.Fatalf("position %d holds %s", i, tx.ID)
		}
	}

	// Mutating the returned slice must not touch the store.
	got[0].ID = "changed"
	again, _ := s.List(ctx)
	if again[0].ID != "tx-0" {
		t.Fatalf("List leaked internal slice")
	}
}

func TestMemoryStoreBudgets(t *testing.T) {
	s := New()
	ctx := context.Background()

	b, err := s.Get(ctx, core.Rent)
	if err != nil || b.Amount.Cents != 0 {
		t.Fatalf("unset budget must read as zero: %+v err=%v", b, err)
	}

	_ = s.Set(ctx, core.Rent, core.BudgetEntry{Amount: core.Money{Cents: 100}, Text: "1"})
	_ = s.Set(ctx, core.Rent, core.BudgetEntry{Amount: core.Money{Cents: 900}, Text: "9"})
	b, _ = s.Get(ctx, core.Rent)
	if b.Amount.Cents != 900 || b.Text != "9" {
		t.Fatalf("Set must overwrite: %+v", b)
	}

	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("unexpected budgets %v", all)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if txs, _ := s.List(ctx); len(txs) != 0 {
		t.Fatalf("expected empty store after close")
	}
}
