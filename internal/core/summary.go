package core

import "time"

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthTotal is the sum of all transactions in one calendar month.
type MonthTotal struct {
	Year  int
	Month time.Month
	Label string // "Jan 2024"
	Total Money
}

// BudgetComparison pairs a category budget with what was actually spent.
type BudgetComparison struct {
	Category Category
	Budget   Money
	Spent    Money
}

// BudgetInsight classifies a category against its budget.
type BudgetInsight struct {
	Category  Category
	Delta     Money // budget - spent
	IsOver    bool  // spent > budget
	Magnitude Money // |delta|
}

// Summary holds the three headline figures. MostRecent is nil and HasTop is
// false when there is no data.
type Summary struct {
	TotalExpenses Money
	MostRecent    *Transaction
	TopCategory   Category
	HasTop        bool
}
