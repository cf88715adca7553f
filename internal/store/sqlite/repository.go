package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

// DSNTemplate is the default data source for a session database. The %s is
// replaced with the session id; the database lives in memory and disappears
// with its last connection.
const DSNTemplate = "file:spendwise-%s?mode=memory&cache=shared"

type Repository struct {
	db *sql.DB
}

// NewRepository opens the database at dsn and applies migrations.
func NewRepository(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The in-memory database only exists while a connection is open.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Add implements store.TransactionStore
func (r *Repository) Add(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount_cents, amount_text, date, description, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount.Cents, tx.AmountText, tx.Date.String(), tx.Description, tx.Category.String())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category.String())

	return nil
}

// List implements store.TransactionStore
func (r *Repository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, amount_text, date, description, category
		 FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx            core.Transaction
			date, catName string
		)
		if err := rows.Scan(&tx.ID, &tx.Amount.Cents, &tx.AmountText, &date, &tx.Description, &catName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if tx.Category, err = core.ParseCategory(catName); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Set implements store.BudgetStore
func (r *Repository) Set(ctx context.Context, c core.Category, b core.BudgetEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount_cents, amount_text) VALUES (?, ?, ?)
		 ON CONFLICT(category) DO UPDATE SET amount_cents = excluded.amount_cents, amount_text = excluded.amount_text`,
		c.String(), b.Amount.Cents, b.Text)
	if err != nil {
		return fmt.Errorf("upsert budget %s: %w", c, err)
	}
	return nil
}

// Get implements store.BudgetStore
func (r *Repository) Get(ctx context.Context, c core.Category) (core.BudgetEntry, error) {
	var b core.BudgetEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT amount_cents, amount_text FROM budgets WHERE category = ?`, c.String()).
		Scan(&b.Amount.Cents, &b.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetEntry{}, nil
	}
	if err != nil {
		return core.BudgetEntry{}, fmt.Errorf("get budget %s: %w", c, err)
	}
	return b, nil
}

// All implements store.BudgetStore
func (r *Repository) All(ctx context.Context) (map[core.Category]core.BudgetEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, amount_cents, amount_text FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := make(map[core.Category]core.BudgetEntry)
	for rows.Next() {
		var (
			name string
			b    core.BudgetEntry
		)
		if err := rows.Scan(&name, &b.Amount.Cents, &b.Text); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		c, err := core.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("budget %q: %w", name, err)
		}
		out[c] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}
