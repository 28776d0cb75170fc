package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cashflowbot/internal/domain"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEmptyTablesSummariseToZero(t *testing.T) {
	st := Day(nil, nil, "01/03/2025")
	require.Equal(t, 0, st.Sales.Count)
	require.True(t, st.Sales.Profit.IsZero())
	require.True(t, st.Expenses.Total.IsZero())
	require.Empty(t, st.Expenses.ByCategory)
	require.True(t, st.Balance.IsZero())

	require.Empty(t, DebtsByCustomer(nil))
	require.True(t, Overview(nil, 5).Total.IsZero())
}

func TestMonthSkipsUnparseableDates(t *testing.T) {
	sales := []domain.Sale{
		{Date: "05/03/2025", Quantity: 2, Revenue: d(300000), Profit: d(100000)},
		{Date: "not a date", Quantity: 9, Revenue: d(900000), Profit: d(900000)},
		{Date: "2025-03-07", Quantity: 1, Revenue: d(50000), Profit: d(50000)},
		{Date: "31/03/2025", Quantity: 1, Revenue: d(80000), Profit: d(20000)},
		{Date: "01/04/2025", Quantity: 1, Revenue: d(70000), Profit: d(10000)},
	}

	summary := SummarizeSales(SalesInMonth(sales, time.March, 2025))
	require.Equal(t, 2, summary.Count)
	require.Equal(t, 3, summary.Quantity)
	require.True(t, summary.Revenue.Equal(d(380000)))
	require.True(t, summary.Profit.Equal(d(120000)))
}

func TestExpenseSummaryGroupsByCategory(t *testing.T) {
	expenses := []domain.Expense{
		{Date: "02/03/2025", Amount: d(50000), Category: "Food"},
		{Date: "02/03/2025", Amount: d(20000), Category: "Transport"},
		{Date: "02/03/2025", Amount: d(30000), Category: "Food"},
		{Date: "02/03/2025", Amount: d(10000)},
		{Date: "03/03/2025", Amount: d(99000), Category: "Food"},
	}

	summary := SummarizeExpenses(ExpensesOn(expenses, "02/03/2025"))
	require.Equal(t, 4, summary.Count)
	require.True(t, summary.Total.Equal(d(110000)))
	require.Len(t, summary.ByCategory, 3)
	require.Equal(t, "Food", summary.ByCategory[0].Category)
	require.True(t, summary.ByCategory[0].Total.Equal(d(80000)))
	require.Equal(t, "Other", summary.ByCategory[2].Category)
}

func TestNegativeBalanceIsKept(t *testing.T) {
	sales := []domain.Sale{{Date: "02/03/2025", Quantity: 1, Revenue: d(100000), Profit: d(30000)}}
	expenses := []domain.Expense{{Date: "02/03/2025", Amount: d(80000), Category: "Living"}}

	st := Day(sales, expenses, "02/03/2025")
	require.True(t, st.Balance.Equal(d(-50000)))
}

func TestCustomerDebtTotalCountsPendingOnly(t *testing.T) {
	debts := []domain.Debt{
		{Row: 2, Customer: "Lan", Amount: d(100000), Status: domain.DebtPending},
		{Row: 3, Customer: "Lan", Amount: d(50000), Status: domain.DebtPending},
		{Row: 4, Customer: "lan", Amount: d(70000), Status: domain.DebtPending},
		{Row: 5, Customer: "Lan", Amount: d(20000), Status: domain.DebtPaid},
	}
	require.True(t, CustomerDebtTotal(debts, "Lan").Equal(d(150000)))

	debts[0].Status = domain.DebtPaid
	require.True(t, CustomerDebtTotal(debts, "Lan").Equal(d(50000)))
	require.Len(t, debts, 4)
}

func TestDebtsByCustomerSortedByTotal(t *testing.T) {
	debts := []domain.Debt{
		{Customer: "An", Amount: d(100000), Status: domain.DebtPending},
		{Customer: "Binh", Amount: d(300000), Status: domain.DebtPending},
		{Customer: "An", Amount: d(250000), Status: domain.DebtPending},
		{Customer: "Chi", Amount: d(900000), Status: domain.DebtPaid},
	}

	grouped := DebtsByCustomer(debts)
	require.Len(t, grouped, 2)
	require.Equal(t, "An", grouped[0].Customer)
	require.Equal(t, 2, grouped[0].Count)
	require.True(t, grouped[0].Total.Equal(d(350000)))

	overview := Overview(debts, 1)
	require.Equal(t, 3, overview.Count)
	require.Equal(t, 2, overview.Customers)
	require.True(t, overview.Total.Equal(d(650000)))
	require.Len(t, overview.Top, 1)
}

func TestResolveCustomer(t *testing.T) {
	debts := []domain.Debt{
		{Customer: "Nguyễn Văn An Long Tên", Amount: d(1), Status: domain.DebtPending},
		{Customer: "Nguyễn Văn Anh", Amount: d(2), Status: domain.DebtPending},
		{Customer: "Hoa", Amount: d(3), Status: domain.DebtPending},
		{Customer: "Hoang", Amount: d(4), Status: domain.DebtPending},
	}

	name, ok := ResolveCustomer(debts, "Nguyễn Văn An L")
	require.True(t, ok)
	require.Equal(t, "Nguyễn Văn An Long Tên", name)

	_, ok = ResolveCustomer(debts, "Nguyễn Văn")
	require.False(t, ok)

	name, ok = ResolveCustomer(debts, "Hoa")
	require.True(t, ok)
	require.Equal(t, "Hoa", name)
}

func TestRecentNewestFirst(t *testing.T) {
	sales := make([]domain.Sale, 12)
	for i := range sales {
		sales[i].Row = i + 2
	}
	recent := Recent(sales, 10)
	require.Len(t, recent, 10)
	require.Equal(t, 13, recent[0].Row)
	require.Equal(t, 4, recent[9].Row)
}
