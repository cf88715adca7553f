package http

import (
	"spendwise/internal/chart"
	"spendwise/internal/core"
	"spendwise/internal/report"
)

const noData = "No data"

type formView struct {
	Draft      core.Draft
	Categories []string
	Error      string
}

type budgetRowView struct {
	Category string
	Text     string
	Error    string
}

type recentView struct {
	Description string
	Date        string
}

type transactionView struct {
	Amount      string
	Date        string
	Description string
	Category    string
}

type insightView struct {
	Category string
	Over     bool
	Text     string
}

type dashboardView struct {
	TotalExpenses string
	Recent        *recentView
	TopCategory   string
	NoData        string
	BudgetChart   chart.BarChart
	MonthlyChart  chart.BarChart
	CategoryPie   chart.PieChart
	Insights      []insightView
	Transactions  []transactionView
}

type pageView struct {
	Form      formView
	Budgets   []budgetRowView
	Dashboard dashboardView
}

func categoryNames() []string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, c.String())
	}
	return names
}

func newFormView(d core.Draft, errMsg string) formView {
	return formView{Draft: d, Categories: categoryNames(), Error: errMsg}
}

func newBudgetRows(entries map[core.Category]core.BudgetEntry) []budgetRowView {
	rows := make([]budgetRowView, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		rows = append(rows, budgetRowView{Category: c.String(), Text: entries[c].Text})
	}
	return rows
}

// newDashboardView formats a report for display. txs is the list view in
// insertion order.
func newDashboardView(rep report.Report, txs []core.Transaction) dashboardView {
	v := dashboardView{
		TotalExpenses: formatRupees(rep.Summary.TotalExpenses.Cents),
		TopCategory:   noData,
		NoData:        noData,
	}
	if tx := rep.Summary.MostRecent; tx != nil {
		v.Recent = &recentView{Description: tx.Description, Date: tx.Date.String()}
	}
	if rep.Summary.HasTop {
		v.TopCategory = rep.Summary.TopCategory.String()
	}

	labels := make([]string, 0, len(rep.Comparison))
	budgets := make([]int64, 0, len(rep.Comparison))
	spent := make([]int64, 0, len(rep.Comparison))
	for _, c := range rep.Comparison {
		labels = append(labels, c.Category.String())
		budgets = append(budgets, c.Budget.Cents)
		spent = append(spent, c.Spent.Cents)
	}
	v.BudgetChart = chart.NewGroupedBarChart(labels,
		[]chart.Series{{Name: "Budget", Color: chart.ColorBudget}, {Name: "Spent", Color: chart.ColorSpent}},
		[][]int64{budgets, spent}, formatRupees)

	monthLabels := make([]string, 0, len(rep.Monthly))
	monthValues := make([]int64, 0, len(rep.Monthly))
	for _, m := range rep.Monthly {
		monthLabels = append(monthLabels, m.Label)
		monthValues = append(monthValues, m.Total.Cents)
	}
	v.MonthlyChart = chart.NewBarChart(monthLabels, monthValues, "Total", chart.ColorMonthly, formatRupees)

	pieLabels := make([]string, 0, len(rep.Chart))
	pieValues := make([]int64, 0, len(rep.Chart))
	for _, c := range rep.Chart {
		pieLabels = append(pieLabels, c.Category.String())
		pieValues = append(pieValues, c.Amount.Cents)
	}
	v.CategoryPie = chart.NewPieChart(pieLabels, pieValues, formatRupees)

	for _, in := range rep.Insights {
		text := "Under Budget by " + formatRupees(in.Magnitude.Cents)
		if in.IsOver {
			text = "Over Budget by " + formatRupees(in.Magnitude.Cents)
		}
		v.Insights = append(v.Insights, insightView{Category: in.Category.String(), Over: in.IsOver, Text: text})
	}

	for _, tx := range txs {
		v.Transactions = append(v.Transactions, transactionView{
			Amount:      "₹" + tx.AmountText,
			Date:        tx.Date.String(),
			Description: tx.Description,
			Category:    tx.Category.String(),
		})
	}
	return v
}

// reportJSON is the /api/report payload. Amounts are decimal strings so no
// client has to deal with float rounding.
type reportJSON struct {
	TotalExpenses string            `json:"total_expenses"`
	MostRecent    *transactionJSON  `json:"most_recent"`
	TopCategory   *string           `json:"top_category"`
	Monthly       []monthJSON       `json:"monthly"`
	Categories    []categoryJSON    `json:"categories"`
	Chart         []categoryJSON    `json:"chart"`
	Comparison    []comparisonJSON  `json:"comparison"`
	Insights      []insightJSON     `json:"insights"`
	Transactions  []transactionJSON `json:"transactions"`
}

type transactionJSON struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type monthJSON struct {
	Month string `json:"month"`
	Total string `json:"total"`
}

type categoryJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type comparisonJSON struct {
	Category string `json:"category"`
	Budget   string `json:"budget"`
	Spent    string `json:"spent"`
}

type insightJSON struct {
	Category  string `json:"category"`
	Delta     string `json:"delta"`
	IsOver    bool   `json:"is_over"`
	Magnitude string `json:"magnitude"`
}

func newTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Amount:      tx.Amount.String(),
		Date:        tx.Date.String(),
		Description: tx.Description,
		Category:    tx.Category.String(),
	}
}

func categoryList(in []core.CategoryAmount) []categoryJSON {
	out := make([]categoryJSON, 0, len(in))
	for _, c := range in {
		out = append(out, categoryJSON{Name: c.Category.String(), Value: c.Amount.String()})
	}
	return out
}

func newReportJSON(rep report.Report, txs []core.Transaction) reportJSON {
	out := reportJSON{
		TotalExpenses: rep.Summary.TotalExpenses.String(),
		Monthly:       make([]monthJSON, 0, len(rep.Monthly)),
		Categories:    categoryList(rep.Categories),
		Chart:         categoryList(rep.Chart),
		Comparison:    make([]comparisonJSON, 0, len(rep.Comparison)),
		Insights:      make([]insightJSON, 0, len(rep.Insights)),
		Transactions:  make([]transactionJSON, 0, len(txs)),
	}
	if tx := rep.Summary.MostRecent; tx != nil {
		recent := newTransactionJSON(*tx)
		out.MostRecent = &recent
	}
	if rep.Summary.HasTop {
		top := rep.Summary.TopCategory.String()
		out.TopCategory = &top
	}
	for _, m := range rep.Monthly {
		out.Monthly = append(out.Monthly, monthJSON{Month: m.Label, Total: m.Total.String()})
	}
	for _, c := range rep.Comparison {
		out.Comparison = append(out.Comparison, comparisonJSON{
			Category: c.Category.String(),
			Budget:   c.Budget.String(),
			Spent:    c.Spent.String(),
		})
	}
	for _, in := range rep.Insights {
		out.Insights = append(out.Insights, insightJSON{
			Category:  in.Category.String(),
			Delta:     in.Delta.String(),
			IsOver:    in.IsOver,
			Magnitude: in.Magnitude.String(),
		})
	}
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, newTransactionJSON(tx))
	}
	return out
}
