package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/store"
)

// Publisher sends activity messages. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.ActivityMessage) error
}

// Ledger is the write path for session state: drafts are validated before
// they reach a store and every accepted change is announced on the activity
// feed.
type Ledger struct {
	publisher Publisher
	logger    *applog.StructuredLogger
	newID     func() string
}

// NewLedger creates a ledger. A nil publisher disables the activity feed.
func NewLedger(publisher Publisher, logger *applog.Logger) *Ledger {
	if logger == nil {
		logger = &applog.Logger{Logger: slog.Default()}
	}
	return &Ledger{
		publisher: publisher,
		logger:    applog.NewStructuredLogger(logger),
		newID:     core.NewTransactionID,
	}
}

// RecordTransaction validates the draft and appends it. On any validation
// error the store is left untouched and the error is returned as is, so
// callers can match it with errors.Is.
func (l *Ledger) RecordTransaction(ctx context.Context, st store.TransactionStore, d core.Draft) (core.Transaction, error) {
	tx, err := d.Transaction(l.newID())
	if err != nil {
		return core.Transaction{}, err
	}

	if err := st.Add(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	l.logger.LogTransactionRecorded(ctx, tx.ID, tx.Amount.Cents, tx.Category.String(), tx.Date.String())

	l.publish(ctx, amqp.NewTransactionRecorded(tx))
	return tx, nil
}

// SetBudget upserts one category budget from its raw input. Blank input
// clears the budget to zero.
func (l *Ledger) SetBudget(ctx context.Context, st store.BudgetStore, c core.Category, text string) (core.BudgetEntry, error) {
	if !c.Valid() {
		return core.BudgetEntry{}, core.ErrInvalidCategory
	}
	amount, err := core.ParseBudget(text)
	if err != nil {
		return core.BudgetEntry{}, err
	}

	entry := core.BudgetEntry{Amount: amount, Text: strings.TrimSpace(text)}
	if err := st.Set(ctx, c, entry); err != nil {
		return core.BudgetEntry{}, fmt.Errorf("save budget: %w", err)
	}
	l.logger.LogBudgetSet(ctx, c.String(), amount.Cents)

	l.publish(ctx, amqp.NewBudgetSet(c, entry))
	return entry, nil
}

// publish never fails the caller; the change is already stored.
func (l *Ledger) publish(ctx context.Context, msg *amqp.ActivityMessage) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, msg); err != nil {
		l.logger.LogError(ctx, "Failed to publish activity message", err,
			applog.ComponentAMQP, applog.OpPublish,
			applog.NewFields().WithOperation(applog.OpPublish))
	}
}
