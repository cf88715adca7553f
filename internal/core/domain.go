package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single recorded expense. AmountText keeps the amount
	// exactly as the user typed it so the list shows what was entered.
	Transaction struct {
		ID          string
		Amount      Money
		AmountText  string
		Date        Date
		Description string
		Category    Category
	}

	// BudgetEntry is a category budget. Text is the input as typed; a blank
	// Text means no budget and Amount is zero.
	BudgetEntry struct {
		Amount Money
		Text   string
	}

	// Draft holds the transaction form between edits. Every field is the raw
	// text of its input.
	Draft struct {
		Amount      string
		Date        string
		Description string
		Category    string
	}
)

var (
	ErrIncompleteSubmission = errors.New("All fields are required")
	ErrInvalidAmount        = errors.New("amount must be a positive number")
	ErrInvalidBudget        = errors.New("budget must be a non-negative number")
	ErrInvalidDate          = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidCategory      = errors.New("unknown category")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date the way the date input submits it.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MonthLabel returns the short month and four digit year, e.g. "Jan 2024".
func (d Date) MonthLabel() string {
	return d.Format("Jan 2006")
}

// MonthKey identifies the calendar month the date falls in.
func (d Date) MonthKey() (year int, month time.Month) {
	return d.Year(), d.Month()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewTransactionID returns a time-ordered unique identifier.
func NewTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsComplete reports whether every field carries a value.
func (d Draft) IsComplete() bool {
	return d.Amount != "" && d.Date != "" && d.Description != "" && d.Category != ""
}

// Validate is the only gate a record passes before it reaches a store.
// Missing fields are reported before malformed ones.
func (d Draft) Validate() error {
	_, err := d.parse()
	return err
}

// Transaction converts a valid draft into a record with the given id.
func (d Draft) Transaction(id string) (Transaction, error) {
	tx, err := d.parse()
	if err != nil {
		return Transaction{}, err
	}
	tx.ID = id
	return tx, nil
}

func (d Draft) parse() (Transaction, error) {
	if !d.IsComplete() {
		return Transaction{}, ErrIncompleteSubmission
	}
	if strings.TrimSpace(d.Description) == "" {
		return Transaction{}, ErrIncompleteSubmission
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, err
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, err
	}
	cat, err := ParseCategory(d.Category)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		Amount:      amount,
		AmountText:  strings.TrimSpace(d.Amount),
		Date:        date,
		Description: d.Description,
		Category:    cat,
	}, nil
}
