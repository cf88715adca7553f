package services

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/store/memory"
)

type fakePublisher struct {
	msgs []*amqp.ActivityMessage
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, msg *amqp.ActivityMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func validDraft() core.Draft {
	return core.Draft{Amount: "100", Date: "2024-01-15", Description: "Lunch", Category: "Food"}
}

func TestLedger_RecordTransaction(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	l := NewLedger(pub, nil)
	l.newID = func() string { return "fixed-id" }
	st := memory.New()

	tx, err := l.RecordTransaction(ctx, st, validDraft())
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if tx.ID != "fixed-id" || tx.Amount.Cents != 10000 || tx.Category != core.Food {
		t.Errorf("unexpected transaction %+v", tx)
	}

	got, _ := st.List(ctx)
	if len(got) != 1 || got[0].ID != "fixed-id" {
		t.Fatalf("store = %+v", got)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Event != amqp.EventTransactionRecorded {
		t.Errorf("published = %+v", pub.msgs)
	}
}

func TestLedger_RecordTransactionRejectsInvalidDrafts(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*core.Draft)
		wantErr error
	}{
		{"missing category", func(d *core.Draft) { d.Category = "" }, core.ErrIncompleteSubmission},
		{"missing amount", func(d *core.Draft) { d.Amount = "" }, core.ErrIncompleteSubmission},
		{"non-numeric amount", func(d *core.Draft) { d.Amount = "abc" }, core.ErrInvalidAmount},
		{"bad date", func(d *core.Draft) { d.Date = "15/01/2024" }, core.ErrInvalidDate},
		{"unknown category", func(d *core.Draft) { d.Category = "Travel" }, core.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			pub := &fakePublisher{}
			l := NewLedger(pub, nil)
			st := memory.New()

			d := validDraft()
			tt.modify(&d)
			if _, err := l.RecordTransaction(ctx, st, d); !errors.Is(err, tt.wantErr) {
				t.Fatalf("RecordTransaction() error = %v, want %v", err, tt.wantErr)
			}
			if got, _ := st.List(ctx); len(got) != 0 {
				t.Errorf("store changed: %+v", got)
			}
			if len(pub.msgs) != 0 {
				t.Errorf("published on rejected draft: %+v", pub.msgs)
			}
		})
	}
}

func TestLedger_PublishFailureDoesNotFailAction(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(&fakePublisher{err: errors.New("broker down")}, nil)
	st := memory.New()

	if _, err := l.RecordTransaction(ctx, st, validDraft()); err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if _, err := l.SetBudget(ctx, st, core.Rent, "900"); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	if got, _ := st.List(ctx); len(got) != 1 {
		t.Errorf("transaction not stored")
	}
}

func TestLedger_SetBudget(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	l := NewLedger(pub, nil)
	st := memory.New()

	entry, err := l.SetBudget(ctx, st, core.Food, " 50 ")
	if err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	if entry.Amount.Cents != 5000 || entry.Text != "50" {
		t.Errorf("entry = %+v", entry)
	}

	if _, err := l.SetBudget(ctx, st, core.Food, "-5"); !errors.Is(err, core.ErrInvalidBudget) {
		t.Errorf("negative budget error = %v", err)
	}
	if got, _ := st.Get(ctx, core.Food); got.Amount.Cents != 5000 {
		t.Errorf("rejected input changed the budget: %+v", got)
	}

	if _, err := l.SetBudget(ctx, st, core.Food, ""); err != nil {
		t.Fatalf("clearing budget: %v", err)
	}
	if got, _ := st.Get(ctx, core.Food); got.Amount.Cents != 0 || got.Text != "" {
		t.Errorf("cleared budget = %+v", got)
	}

	if _, err := l.SetBudget(ctx, st, core.Category(0), "5"); !errors.Is(err, core.ErrInvalidCategory) {
		t.Errorf("invalid category error = %v", err)
	}
	if len(pub.msgs) != 2 {
		t.Errorf("published %d messages, want 2", len(pub.msgs))
	}
}
