// Package report aggregates ledger snapshots into day, month and debt
// summaries. Every function is pure over the rows it is given.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

type SalesSummary struct {
	Count    int             `json:"sale_count"`
	Quantity int             `json:"total_quantity"`
	Revenue  decimal.Decimal `json:"total_revenue"`
	Profit   decimal.Decimal `json:"total_profit"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type ExpenseSummary struct {
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Statement is the combined income/expense view for one day or one month.
type Statement struct {
	Date     string          `json:"date,omitempty"`
	Month    int             `json:"month,omitempty"`
	Year     int             `json:"year,omitempty"`
	Sales    SalesSummary    `json:"sales"`
	Expenses ExpenseSummary  `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// SalesOn returns the sales whose stored date string equals date.
func SalesOn(sales []domain.Sale, date string) []domain.Sale {
	out := make([]domain.Sale, 0)
	for _, s := range sales {
		if strings.TrimSpace(s.Date) == date {
			out = append(out, s)
		}
	}
	return out
}

func ExpensesOn(expenses []domain.Expense, date string) []domain.Expense {
	out := make([]domain.Expense, 0)
	for _, e := range expenses {
		if strings.TrimSpace(e.Date) == date {
			out = append(out, e)
		}
	}
	return out
}

// inMonth skips dates that do not parse.
func inMonth(value string, month time.Month, year int) bool {
	t, err := domain.ParseDate(value)
	if err != nil {
		return false
	}
	return t.Month() == month && t.Year() == year
}

func SalesInMonth(sales []domain.Sale, month time.Month, year int) []domain.Sale {
	out := make([]domain.Sale, 0)
	for _, s := range sales {
		if inMonth(s.Date, month, year) {
			out = append(out, s)
		}
	}
	return out
}

func ExpensesInMonth(expenses []domain.Expense, month time.Month, year int) []domain.Expense {
	out := make([]domain.Expense, 0)
	for _, e := range expenses {
		if inMonth(e.Date, month, year) {
			out = append(out, e)
		}
	}
	return out
}

// SummarizeSales sums the stored totals; revenue is the amount received,
// never price times quantity.
func SummarizeSales(sales []domain.Sale) SalesSummary {
	summary := SalesSummary{Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, s := range sales {
		summary.Count++
		summary.Quantity += s.Quantity
		summary.Revenue = summary.Revenue.Add(s.Revenue)
		summary.Profit = summary.Profit.Add(s.Profit)
	}
	return summary
}

// SummarizeExpenses groups by category in order of first appearance.
func SummarizeExpenses(expenses []domain.Expense) ExpenseSummary {
	summary := ExpenseSummary{Total: decimal.Zero, ByCategory: []CategoryTotal{}}
	index := make(map[string]int)
	for _, e := range expenses {
		summary.Count++
		summary.Total = summary.Total.Add(e.Amount)

		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = string(domain.CategoryOther)
		}
		i, ok := index[category]
		if !ok {
			i = len(summary.ByCategory)
			index[category] = i
			summary.ByCategory = append(summary.ByCategory, CategoryTotal{Category: category, Total: decimal.Zero})
		}
		summary.ByCategory[i].Total = summary.ByCategory[i].Total.Add(e.Amount)
	}
	return summary
}

// Balance is profit minus expenses; it is negative when spending exceeds profit.
func Balance(sales SalesSummary, expenses ExpenseSummary) decimal.Decimal {
	return sales.Profit.Sub(expenses.Total)
}

func Day(sales []domain.Sale, expenses []domain.Expense, date string) Statement {
	st := Statement{
		Date:     date,
		Sales:    SummarizeSales(SalesOn(sales, date)),
		Expenses: SummarizeExpenses(ExpensesOn(expenses, date)),
	}
	st.Balance = Balance(st.Sales, st.Expenses)
	return st
}

func Month(sales []domain.Sale, expenses []domain.Expense, month time.Month, year int) Statement {
	st := Statement{
		Month:    int(month),
		Year:     year,
		Sales:    SummarizeSales(SalesInMonth(sales, month, year)),
		Expenses: SummarizeExpenses(ExpensesInMonth(expenses, month, year)),
	}
	st.Balance = Balance(st.Sales, st.Expenses)
	return st
}

// Recent returns up to limit sales, newest first.
func Recent(sales []domain.Sale, limit int) []domain.Sale {
	start := 0
	if limit > 0 && len(sales) > limit {
		start = len(sales) - limit
	}
	out := make([]domain.Sale, 0, len(sales)-start)
	for i := len(sales) - 1; i >= start; i-- {
		out = append(out, sales[i])
	}
	return out
}
