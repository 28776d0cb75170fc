package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

type CustomerDebt struct {
	Customer string          `json:"customer"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

type DebtOverview struct {
	Total     decimal.Decimal `json:"total_amount"`
	Count     int             `json:"debt_count"`
	Customers int             `json:"customer_count"`
	Top       []CustomerDebt  `json:"top"`
}

func PendingDebts(debts []domain.Debt) []domain.Debt {
	out := make([]domain.Debt, 0)
	for _, d := range debts {
		if d.Pending() {
			out = append(out, d)
		}
	}
	return out
}

// PendingDebtsOf matches the customer exactly and case-sensitively.
func PendingDebtsOf(debts []domain.Debt, customer string) []domain.Debt {
	out := make([]domain.Debt, 0)
	for _, d := range debts {
		if d.Pending() && d.Customer == customer {
			out = append(out, d)
		}
	}
	return out
}

func CustomerDebtTotal(debts []domain.Debt, customer string) decimal.Decimal {
	total := decimal.Zero
	for _, d := range PendingDebtsOf(debts, customer) {
		total = total.Add(d.Amount)
	}
	return total
}

// DebtsByCustomer groups pending debts per customer, largest total first.
func DebtsByCustomer(debts []domain.Debt) []CustomerDebt {
	index := make(map[string]int)
	out := make([]CustomerDebt, 0)
	for _, d := range PendingDebts(debts) {
		i, ok := index[d.Customer]
		if !ok {
			i = len(out)
			index[d.Customer] = i
			out = append(out, CustomerDebt{Customer: d.Customer, Total: decimal.Zero})
		}
		out[i].Count++
		out[i].Total = out[i].Total.Add(d.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Customer < out[j].Customer
	})
	return out
}

func Overview(debts []domain.Debt, top int) DebtOverview {
	pending := PendingDebts(debts)
	grouped := DebtsByCustomer(debts)
	overview := DebtOverview{Total: decimal.Zero, Count: len(pending), Customers: len(grouped)}
	for _, d := range pending {
		overview.Total = overview.Total.Add(d.Amount)
	}
	if top > 0 && len(grouped) > top {
		grouped = grouped[:top]
	}
	overview.Top = grouped
	return overview
}

// ResolveCustomer maps a possibly truncated customer name back to a customer
// with pending debts: an exact match wins, otherwise the prefix must be unique.
func ResolveCustomer(debts []domain.Debt, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	customers := DebtsByCustomer(debts)
	for _, c := range customers {
		if c.Customer == prefix {
			return c.Customer, true
		}
	}
	match := ""
	for _, c := range customers {
		if strings.HasPrefix(c.Customer, prefix) {
			if match != "" {
				return "", false
			}
			match = c.Customer
		}
	}
	return match, match != ""
}
