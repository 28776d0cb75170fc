package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/report"
	"cashflowbot/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrAlreadyPaid  = errors.New("debt already paid")
	ErrNoPending    = errors.New("no pending debts")
)

// RecentLimit is how many sales the history and row-pick listings show.
const RecentLimit = 10

type Service struct {
	repo store.Repository
	now  func() time.Time
}

func New(repo store.Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Now is the current time in the ledger's zone.
func (s *Service) Now() time.Time {
	return s.now().In(domain.LocalZone)
}

func (s *Service) Today() string {
	return domain.FormatDate(s.Now())
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) FindProduct(ctx context.Context, sku string) (*domain.Product, error) {
	sku = normalizeSKU(sku)
	if sku == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetProductBySKU(ctx, sku)
}

// CheckSKUAvailable scans the product table for sku; it returns
// store.ErrDuplicateSKU when the sku is taken.
func (s *Service) CheckSKUAvailable(ctx context.Context, sku string) error {
	sku = normalizeSKU(sku)
	if sku == "" || len(sku) > domain.MaxSKUBytes || strings.ContainsAny(sku, " \t\n") {
		return ErrInvalidInput
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if strings.EqualFold(p.SKU, sku) {
			return store.ErrDuplicateSKU
		}
	}
	return nil
}

func (s *Service) AddProduct(ctx context.Context, sku string, name string, cost decimal.Decimal) (domain.Product, error) {
	product := domain.Product{
		SKU:  normalizeSKU(sku),
		Name: strings.TrimSpace(name),
		Cost: cost,
	}
	if err := domain.Validate(product); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.CheckSKUAvailable(ctx, product.SKU); err != nil {
		return domain.Product{}, err
	}
	created, err := s.repo.AppendProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

// UpdateProductCost changes the unit cost used by future sales; it returns the
// product as it was before the change.
func (s *Service) UpdateProductCost(ctx context.Context, sku string, cost decimal.Decimal) (domain.Product, error) {
	if !cost.IsPositive() {
		return domain.Product{}, ErrInvalidInput
	}
	product, err := s.FindProduct(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.repo.UpdateProductCost(ctx, product.Row, cost); err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

// DeleteProduct removes the product row; sales that reference its sku are kept.
func (s *Service) DeleteProduct(ctx context.Context, sku string) (domain.Product, error) {
	product, err := s.FindProduct(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.repo.DeleteProductRow(ctx, product.Row); err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

type SaleInput struct {
	SKU      string
	Revenue  decimal.Decimal
	Quantity int
	Customer string
	Note     string
}

// RecordSale snapshots the product's current cost and stores
// profit = revenue - cost*quantity.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (domain.Sale, domain.Product, error) {
	product, err := s.FindProduct(ctx, in.SKU)
	if err != nil {
		return domain.Sale{}, domain.Product{}, err
	}
	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	sale := domain.Sale{
		Date:     s.Today(),
		SKU:      product.SKU,
		Quantity: in.Quantity,
		Revenue:  in.Revenue,
		UnitCost: product.Cost,
		Customer: strings.TrimSpace(in.Customer),
		Note:     strings.TrimSpace(in.Note),
	}
	sale.Profit = sale.Revenue.Sub(sale.TotalCost())
	if err := domain.Validate(sale); err != nil {
		return domain.Sale{}, domain.Product{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.repo.AppendSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, domain.Product{}, err
	}
	return *created, *product, nil
}

func (s *Service) RecentSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	return report.Recent(sales, limit), nil
}

func (s *Service) GetSale(ctx context.Context, row int) (*domain.Sale, error) {
	return s.repo.GetSaleByRow(ctx, row)
}

// ProductName resolves a sale's sku to the product name, falling back to the
// raw sku when the product no longer exists.
func (s *Service) ProductName(ctx context.Context, sku string) string {
	product, err := s.repo.GetProductBySKU(ctx, sku)
	if err != nil {
		return sku
	}
	return product.Name
}

// EditSale applies a targeted update. Stored profit is not recomputed.
func (s *Service) EditSale(ctx context.Context, row int, update domain.SaleUpdate) error {
	if update.Empty() {
		return ErrInvalidInput
	}
	if update.Quantity != nil && *update.Quantity <= 0 {
		return ErrInvalidInput
	}
	if update.Revenue != nil && !update.Revenue.IsPositive() {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetSaleByRow(ctx, row); err != nil {
		return err
	}
	return s.repo.UpdateSale(ctx, row, update)
}

func (s *Service) DeleteSale(ctx context.Context, row int) (domain.Sale, error) {
	sale, err := s.repo.GetSaleByRow(ctx, row)
	if err != nil {
		return domain.Sale{}, err
	}
	if err := s.repo.DeleteSaleRow(ctx, row); err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) RecordExpense(ctx context.Context, amount decimal.Decimal, description string, category string) (domain.Expense, error) {
	expense := domain.Expense{
		Date:        s.Today(),
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
	}
	if expense.Category == "" {
		expense.Category = string(domain.CategoryLiving)
	}
	if err := domain.Validate(expense); err != nil {
		return domain.Expense{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	created, err := s.repo.AppendExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, err
	}
	return *created, nil
}

func (s *Service) TodayExpenses(ctx context.Context) ([]domain.Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	return report.ExpensesOn(expenses, s.Today()), nil
}

func (s *Service) MonthExpenses(ctx context.Context) (report.ExpenseSummary, error) {
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return report.ExpenseSummary{}, err
	}
	now := s.Now()
	return report.SummarizeExpenses(report.ExpensesInMonth(expenses, now.Month(), now.Year())), nil
}

func (s *Service) GetExpense(ctx context.Context, row int) (*domain.Expense, error) {
	return s.repo.GetExpenseByRow(ctx, row)
}

func (s *Service) DeleteExpense(ctx context.Context, row int) (domain.Expense, error) {
	expense, err := s.repo.GetExpenseByRow(ctx, row)
	if err != nil {
		return domain.Expense{}, err
	}
	if err := s.repo.DeleteExpenseRow(ctx, row); err != nil {
		return domain.Expense{}, err
	}
	return *expense, nil
}

// TodayStatement builds the income/expense statement for the current local date.
func (s *Service) TodayStatement(ctx context.Context) (report.Statement, error) {
	sales, expenses, err := s.snapshot(ctx)
	if err != nil {
		return report.Statement{}, err
	}
	return report.Day(sales, expenses, s.Today()), nil
}

// MonthStatement builds the statement for month/year; zero values mean the
// current month.
func (s *Service) MonthStatement(ctx context.Context, month time.Month, year int) (report.Statement, error) {
	now := s.Now()
	if month == 0 {
		month = now.Month()
	}
	if year == 0 {
		year = now.Year()
	}
	if month < time.January || month > time.December {
		return report.Statement{}, ErrInvalidInput
	}
	sales, expenses, err := s.snapshot(ctx)
	if err != nil {
		return report.Statement{}, err
	}
	return report.Month(sales, expenses, month, year), nil
}

func (s *Service) snapshot(ctx context.Context) ([]domain.Sale, []domain.Expense, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sales, expenses, nil
}
