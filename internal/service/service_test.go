package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/store"
	"cashflowbot/internal/store/memory"
)

var fixedNow = time.Date(2025, time.March, 5, 9, 30, 0, 0, domain.LocalZone)

func newTestService() (*Service, *memory.Store) {
	repo := memory.New()
	return New(repo, func() time.Time { return fixedNow }), repo
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestRecordSaleComputesProfitFromSnapshotCost(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddProduct(ctx, "sp01", "Áo thun", amount(100000)); err != nil {
		t.Fatalf("add product: %v", err)
	}

	sale, product, err := svc.RecordSale(ctx, SaleInput{SKU: "SP01", Revenue: amount(300000), Quantity: 2})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if product.Name != "Áo thun" {
		t.Fatalf("unexpected product %+v", product)
	}
	if !sale.Profit.Equal(amount(100000)) {
		t.Fatalf("expected profit 100000, got %s", sale.Profit)
	}
	if sale.Date != "05/03/2025" {
		t.Fatalf("expected local date, got %s", sale.Date)
	}

	if _, err := svc.UpdateProductCost(ctx, "sp01", amount(150000)); err != nil {
		t.Fatalf("update cost: %v", err)
	}
	stored, err := svc.GetSale(ctx, sale.Row)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if !stored.UnitCost.Equal(amount(100000)) || !stored.Profit.Equal(amount(100000)) {
		t.Fatalf("expected past sale untouched by cost edit, got %+v", stored)
	}

	st, err := svc.TodayStatement(ctx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if st.Sales.Count != 1 || !st.Sales.Profit.Equal(amount(100000)) {
		t.Fatalf("unexpected today summary %+v", st.Sales)
	}
}

func TestProfitExample(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.AddProduct(ctx, "SP02", "Mũ", amount(50000))

	sale, _, err := svc.RecordSale(ctx, SaleInput{SKU: "SP02", Revenue: amount(250000), Quantity: 3})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if !sale.Profit.Equal(amount(100000)) {
		t.Fatalf("expected 250000-150000=100000, got %s", sale.Profit)
	}
}

func TestAddProductRejectsDuplicateSKUCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.AddProduct(ctx, "SP01", "Áo", amount(1000)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddProduct(ctx, "sp01", "Áo khác", amount(2000)); !errors.Is(err, store.ErrDuplicateSKU) {
		t.Fatalf("expected duplicate sku, got %v", err)
	}
	if _, err := svc.AddProduct(ctx, "SP03", "", amount(2000)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty name, got %v", err)
	}
	// 21 runes but 63 bytes once upper-cased.
	if _, err := svc.AddProduct(ctx, strings.Repeat("Ạ", 21), "Áo dài", amount(2000)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for long sku, got %v", err)
	}
	if _, err := svc.AddProduct(ctx, strings.Repeat("X", domain.MaxSKUBytes), "Áo dài", amount(2000)); err != nil {
		t.Fatalf("expected %d byte sku to fit, got %v", domain.MaxSKUBytes, err)
	}
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	svc, repo := newTestService()
	_, _, err := svc.RecordSale(context.Background(), SaleInput{SKU: "NOPE", Revenue: amount(1000), Quantity: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	sales, _ := repo.ListSales(context.Background())
	if len(sales) != 0 {
		t.Fatalf("expected no sale written")
	}
}

func TestEditSaleDoesNotRecomputeProfit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.AddProduct(ctx, "SP01", "Áo", amount(100000))
	sale, _, _ := svc.RecordSale(ctx, SaleInput{SKU: "SP01", Revenue: amount(300000), Quantity: 2})

	qty := 5
	if err := svc.EditSale(ctx, sale.Row, domain.SaleUpdate{Quantity: &qty}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	stored, _ := svc.GetSale(ctx, sale.Row)
	if stored.Quantity != 5 || !stored.Profit.Equal(amount(100000)) {
		t.Fatalf("unexpected sale after edit %+v", stored)
	}

	zero := 0
	if err := svc.EditSale(ctx, sale.Row, domain.SaleUpdate{Quantity: &zero}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if err := svc.EditSale(ctx, 99, domain.SaleUpdate{Quantity: &qty}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found row, got %v", err)
	}
	if _, err := svc.DeleteSale(ctx, 1); !errors.Is(err, store.ErrInvalidRow) {
		t.Fatalf("expected invalid header row, got %v", err)
	}
}

func TestDebtPayTransitions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, total, err := svc.RecordDebt(ctx, "Lan", amount(100000), "")
	if err != nil {
		t.Fatalf("record debt: %v", err)
	}
	if !total.Equal(amount(100000)) {
		t.Fatalf("expected running total 100000, got %s", total)
	}
	_, total, _ = svc.RecordDebt(ctx, "Lan", amount(50000), "áo")
	if !total.Equal(amount(150000)) {
		t.Fatalf("expected running total 150000, got %s", total)
	}

	if _, err := svc.PayDebt(ctx, first.Row); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := svc.PayDebt(ctx, first.Row); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}
	remaining, _ := svc.CustomerDebtTotal(ctx, "Lan")
	if !remaining.Equal(amount(50000)) {
		t.Fatalf("expected 50000 pending, got %s", remaining)
	}
	all, _ := svc.ListDebts(ctx)
	if len(all) != 2 {
		t.Fatalf("expected paid debt to stay in table, got %d rows", len(all))
	}
}

func TestPayAllDebtsByPrefix(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _, _ = svc.RecordDebt(ctx, "Nguyễn Thị Minh Khai", amount(100000), "")
	_, _, _ = svc.RecordDebt(ctx, "Nguyễn Thị Minh Khai", amount(200000), "")
	_, _, _ = svc.RecordDebt(ctx, "Hoa", amount(10000), "")

	customer, count, total, err := svc.PayAllDebts(ctx, "Nguyễn Thị Min")
	if err != nil {
		t.Fatalf("pay all: %v", err)
	}
	if customer != "Nguyễn Thị Minh Khai" || count != 2 || !total.Equal(amount(300000)) {
		t.Fatalf("unexpected pay all result %s %d %s", customer, count, total)
	}

	if _, _, _, err := svc.PayAllDebts(ctx, "Nguyễn"); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected no pending, got %v", err)
	}
	overview, _ := svc.DebtOverview(ctx, 5)
	if overview.Count != 1 || overview.Customers != 1 {
		t.Fatalf("unexpected overview %+v", overview)
	}
}

func TestMonthStatementRejectsBadMonth(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.MonthStatement(context.Background(), 13, 2025); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid month, got %v", err)
	}
	st, err := svc.MonthStatement(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if st.Month != 3 || st.Year != 2025 {
		t.Fatalf("expected current month, got %d/%d", st.Month, st.Year)
	}
}
