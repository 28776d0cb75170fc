package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

// WithTimeout bounds every call on repo. A call that runs out of time is
// reported as a Fault.
func WithTimeout(repo Repository, d time.Duration) Repository {
	if d <= 0 {
		return repo
	}
	return &timeoutRepo{next: repo, d: d}
}

type timeoutRepo struct {
	next Repository
	d    time.Duration
}

func do[T any](ctx context.Context, r *timeoutRepo, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.d)
	defer cancel()
	v, err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !IsFault(err) {
		err = NewFault(op, err)
	}
	return v, err
}

func exec(ctx context.Context, r *timeoutRepo, op string, fn func(ctx context.Context) error) error {
	_, err := do(ctx, r, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (r *timeoutRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return do(ctx, r, "ListProducts", r.next.ListProducts)
}

func (r *timeoutRepo) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return do(ctx, r, "GetProductBySKU", func(ctx context.Context) (*domain.Product, error) {
		return r.next.GetProductBySKU(ctx, sku)
	})
}

func (r *timeoutRepo) AppendProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	return do(ctx, r, "AppendProduct", func(ctx context.Context) (*domain.Product, error) {
		return r.next.AppendProduct(ctx, product)
	})
}

func (r *timeoutRepo) UpdateProductCost(ctx context.Context, row int, cost decimal.Decimal) error {
	return exec(ctx, r, "UpdateProductCost", func(ctx context.Context) error {
		return r.next.UpdateProductCost(ctx, row, cost)
	})
}

func (r *timeoutRepo) DeleteProductRow(ctx context.Context, row int) error {
	return exec(ctx, r, "DeleteProductRow", func(ctx context.Context) error {
		return r.next.DeleteProductRow(ctx, row)
	})
}

func (r *timeoutRepo) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return do(ctx, r, "ListSales", r.next.ListSales)
}

func (r *timeoutRepo) GetSaleByRow(ctx context.Context, row int) (*domain.Sale, error) {
	return do(ctx, r, "GetSaleByRow", func(ctx context.Context) (*domain.Sale, error) {
		return r.next.GetSaleByRow(ctx, row)
	})
}

func (r *timeoutRepo) AppendSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	return do(ctx, r, "AppendSale", func(ctx context.Context) (*domain.Sale, error) {
		return r.next.AppendSale(ctx, sale)
	})
}

func (r *timeoutRepo) UpdateSale(ctx context.Context, row int, update domain.SaleUpdate) error {
	return exec(ctx, r, "UpdateSale", func(ctx context.Context) error {
		return r.next.UpdateSale(ctx, row, update)
	})
}

func (r *timeoutRepo) DeleteSaleRow(ctx context.Context, row int) error {
	return exec(ctx, r, "DeleteSaleRow", func(ctx context.Context) error {
		return r.next.DeleteSaleRow(ctx, row)
	})
}

func (r *timeoutRepo) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return do(ctx, r, "ListExpenses", r.next.ListExpenses)
}

func (r *timeoutRepo) GetExpenseByRow(ctx context.Context, row int) (*domain.Expense, error) {
	return do(ctx, r, "GetExpenseByRow", func(ctx context.Context) (*domain.Expense, error) {
		return r.next.GetExpenseByRow(ctx, row)
	})
}

func (r *timeoutRepo) AppendExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	return do(ctx, r, "AppendExpense", func(ctx context.Context) (*domain.Expense, error) {
		return r.next.AppendExpense(ctx, expense)
	})
}

func (r *timeoutRepo) DeleteExpenseRow(ctx context.Context, row int) error {
	return exec(ctx, r, "DeleteExpenseRow", func(ctx context.Context) error {
		return r.next.DeleteExpenseRow(ctx, row)
	})
}

func (r *timeoutRepo) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	return do(ctx, r, "ListDebts", r.next.ListDebts)
}

func (r *timeoutRepo) GetDebtByRow(ctx context.Context, row int) (*domain.Debt, error) {
	return do(ctx, r, "GetDebtByRow", func(ctx context.Context) (*domain.Debt, error) {
		return r.next.GetDebtByRow(ctx, row)
	})
}

func (r *timeoutRepo) AppendDebt(ctx context.Context, debt domain.Debt) (*domain.Debt, error) {
	return do(ctx, r, "AppendDebt", func(ctx context.Context) (*domain.Debt, error) {
		return r.next.AppendDebt(ctx, debt)
	})
}

func (r *timeoutRepo) SetDebtStatus(ctx context.Context, row int, status domain.DebtStatus) error {
	return exec(ctx, r, "SetDebtStatus", func(ctx context.Context) error {
		return r.next.SetDebtStatus(ctx, row, status)
	})
}

func (r *timeoutRepo) DeleteDebtRow(ctx context.Context, row int) error {
	return exec(ctx, r, "DeleteDebtRow", func(ctx context.Context) error {
		return r.next.DeleteDebtRow(ctx, row)
	})
}

// Init forwards to the wrapped backend when it can initialise itself.
func (r *timeoutRepo) Init(ctx context.Context) error {
	if in, ok := r.next.(Initializer); ok {
		return in.Init(ctx)
	}
	return nil
}
