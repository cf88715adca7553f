// Package report derives the dashboard figures from a session's
// transactions and budgets. Every function is pure: the same inputs always
// produce the same report, so callers simply rebuild it after each change.
package report

import (
	"sort"
	"time"

	"spendwise/internal/core"
)

// MonthOrder selects how monthly totals are ordered.
type MonthOrder string

const (
	// OrderFirstSeen keeps months in the order their first transaction was added.
	OrderFirstSeen MonthOrder = "first_seen"
	// OrderChronological sorts months by calendar.
	OrderChronological MonthOrder = "chronological"
)

// IsValid returns true if the order is known
func (o MonthOrder) IsValid() bool {
	switch o {
	case OrderFirstSeen, OrderChronological:
		return true
	default:
		return false
	}
}

// BudgetLookup returns the budget for a category, zero when unset.
type BudgetLookup func(core.Category) core.Money

// Budgets adapts a map to a BudgetLookup.
func Budgets(m map[core.Category]core.Money) BudgetLookup {
	return func(c core.Category) core.Money {
		return m[c]
	}
}

// Entries adapts stored budget entries to a BudgetLookup.
func Entries(m map[core.Category]core.BudgetEntry) BudgetLookup {
	return func(c core.Category) core.Money {
		return m[c].Amount
	}
}

// Report is everything the dashboard renders.
type Report struct {
	Monthly    []core.MonthTotal
	Categories []core.CategoryAmount // all six, fixed order
	Chart      []core.CategoryAmount // non-zero only
	Comparison []core.BudgetComparison
	Insights   []core.BudgetInsight
	Summary    core.Summary
}

// Build computes the full report.
func Build(txs []core.Transaction, budgets BudgetLookup, order MonthOrder) Report {
	if budgets == nil {
		budgets = Budgets(nil)
	}
	cats := CategoryTotals(txs)
	cmp := Compare(cats, budgets)
	return Report{
		Monthly:    MonthlyTotals(txs, order),
		Categories: cats,
		Chart:      ChartCategories(cats),
		Comparison: cmp,
		Insights:   Insights(cmp),
		Summary:    Summarize(txs, cats),
	}
}

type monthKey struct {
	year  int
	month time.Month
}

// MonthlyTotals groups transactions by calendar month and sums each group.
func MonthlyTotals(txs []core.Transaction, order MonthOrder) []core.MonthTotal {
	out := []core.MonthTotal{}
	index := map[monthKey]int{}
	for _, tx := range txs {
		y, m := tx.Date.MonthKey()
		k := monthKey{y, m}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, core.MonthTotal{Year: y, Month: m, Label: tx.Date.MonthLabel()})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
	}
	if order == OrderChronological {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Year != out[j].Year {
				return out[i].Year < out[j].Year
			}
			return out[i].Month < out[j].Month
		})
	}
	return out
}

// CategoryTotals sums spend per category for all six categories in fixed
// order, including those with nothing spent.
func CategoryTotals(txs []core.Transaction) []core.CategoryAmount {
	sums := map[core.Category]core.Money{}
	for _, tx := range txs {
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}
	out := make([]core.CategoryAmount, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		out = append(out, core.CategoryAmount{Category: c, Amount: sums[c]})
	}
	return out
}

// ChartCategories drops categories with a zero total.
func ChartCategories(totals []core.CategoryAmount) []core.CategoryAmount {
	out := []core.CategoryAmount{}
	for _, t := range totals {
		if t.Amount.Cents > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Compare pairs every category budget with its spend.
func Compare(totals []core.CategoryAmount, budgets BudgetLookup) []core.BudgetComparison {
	spent := map[core.Category]core.Money{}
	for _, t := range totals {
		spent[t.Category] = t.Amount
	}
	out := make([]core.BudgetComparison, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		out = append(out, core.BudgetComparison{
			Category: c,
			Budget:   budgets(c),
			Spent:    spent[c],
		})
	}
	return out
}

// Insights classifies each category as over budget (spent strictly greater
// than budget) or under/at budget.
func Insights(cmp []core.BudgetComparison) []core.BudgetInsight {
	out := make([]core.BudgetInsight, 0, len(cmp))
	for _, c := range cmp {
		delta := c.Budget.Sub(c.Spent)
		out = append(out, core.BudgetInsight{
			Category:  c.Category,
			Delta:     delta,
			IsOver:    c.Spent.Cents > c.Budget.Cents,
			Magnitude: delta.Abs(),
		})
	}
	return out
}

// Summarize computes total spend, the last inserted transaction and the top
// category. Ties go to the category listed first.
func Summarize(txs []core.Transaction, totals []core.CategoryAmount) core.Summary {
	var s core.Summary
	for _, tx := range txs {
		s.TotalExpenses = s.TotalExpenses.Add(tx.Amount)
	}
	if len(txs) > 0 {
		last := txs[len(txs)-1]
		s.MostRecent = &last
	}
	var top int64
	for _, t := range totals {
		if t.Amount.Cents > top {
			top = t.Amount.Cents
			s.TopCategory = t.Category
			s.HasTop = true
		}
	}
	return s
}
