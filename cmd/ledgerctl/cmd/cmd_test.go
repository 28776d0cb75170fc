package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/service"
	"cashflowbot/internal/store"
	"cashflowbot/internal/store/memory"
)

var fixedNow = func() time.Time { return time.Date(2025, time.March, 5, 10, 0, 0, 0, domain.LocalZone) }

func seededRepo(t *testing.T) *memory.Store {
	t.Helper()
	repo := memory.NewSeeded()
	svc := service.New(repo, fixedNow)
	ctx := context.Background()

	_, _, err := svc.RecordSale(ctx, service.SaleInput{SKU: "SP01", Revenue: decimal.NewFromInt(150000), Quantity: 1, Customer: "Chị Lan"})
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, decimal.NewFromInt(20000), "Ăn trưa", "Food")
	require.NoError(t, err)
	_, _, err = svc.RecordDebt(ctx, "Chị Lan", decimal.NewFromInt(50000), "")
	require.NoError(t, err)
	return repo
}

func execute(t *testing.T, repo store.Repository, args ...string) (string, error) {
	t.Helper()
	closed := false
	open := func(context.Context, *slog.Logger) (store.Repository, func() error, error) {
		return repo, func() error { closed = true; return nil }, nil
	}
	root := NewRootCmd(open, fixedNow)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	require.True(t, closed, "ledger must be released")
	return out.String(), err
}

func TestProductsCommand(t *testing.T) {
	out, err := execute(t, seededRepo(t), "products")
	require.NoError(t, err)
	require.Contains(t, out, "SP01")
	require.Contains(t, out, "Áo thun")
}

func TestSalesCommand(t *testing.T) {
	out, err := execute(t, seededRepo(t), "sales", "--limit", "5")
	require.NoError(t, err)
	require.Contains(t, out, "05/03/2025")
	require.Contains(t, out, "Chị Lan")
}

func TestDebtsCommandGroupsByCustomer(t *testing.T) {
	out, err := execute(t, seededRepo(t), "debts")
	require.NoError(t, err)
	require.Contains(t, out, "Chị Lan")
	require.Contains(t, out, "TOTAL")
}

func TestSummaryTodayJSON(t *testing.T) {
	out, err := execute(t, seededRepo(t), "summary", "today", "--json")
	require.NoError(t, err)

	var st struct {
		Date    string          `json:"date"`
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Equal(t, "05/03/2025", st.Date)
	require.True(t, st.Balance.Equal(decimal.NewFromInt(130000)), "balance %s", st.Balance)
}

func TestSummaryMonthText(t *testing.T) {
	out, err := execute(t, seededRepo(t), "summary", "month", "--month", "3", "--year", "2025")
	require.NoError(t, err)
	require.Contains(t, out, "Tháng 03/2025")
	require.Contains(t, out, "Food")
}

func TestSummaryMonthRejectsInvalidMonth(t *testing.T) {
	_, err := execute(t, seededRepo(t), "summary", "month", "--month", "13")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestInitCommand(t *testing.T) {
	out, err := execute(t, memory.New(), "init")
	require.NoError(t, err)
	require.Contains(t, out, "ledger ready")
}

func TestStoreFaultPropagates(t *testing.T) {
	repo := seededRepo(t)
	repo.FailWith("ListProducts", errors.New("quota exceeded"))

	_, err := execute(t, repo, "products")
	require.True(t, store.IsFault(err))
}
