package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

// HeaderRows is the number of header rows above the data in every table, so
// the first entity sits at row HeaderRows+1.
const HeaderRows = 1

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateSKU = errors.New("sku already exists")
	ErrInvalidRow   = errors.New("invalid row")
)

// Fault wraps any failure that came from the ledger backend itself
// (network, auth, quota, timeout) rather than from the caller's input.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("ledger %s: %v", f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func NewFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Fault{Op: op, Err: err}
}

func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// CheckRow reports ErrInvalidRow for row ids that point at or above the
// header.
func CheckRow(row int) error {
	if row <= HeaderRows {
		return ErrInvalidRow
	}
	return nil
}

// RowIndex converts a row id into a zero-based position in a table of the
// given length. Rows past the end report ErrNotFound.
func RowIndex(row int, length int) (int, error) {
	if err := CheckRow(row); err != nil {
		return 0, err
	}
	idx := row - HeaderRows - 1
	if idx >= length {
		return 0, ErrNotFound
	}
	return idx, nil
}

// RowID is the inverse of RowIndex.
func RowID(idx int) int {
	return idx + HeaderRows + 1
}

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	AppendProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProductCost(ctx context.Context, row int, cost decimal.Decimal) error
	DeleteProductRow(ctx context.Context, row int) error

	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSaleByRow(ctx context.Context, row int) (*domain.Sale, error)
	AppendSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, row int, update domain.SaleUpdate) error
	DeleteSaleRow(ctx context.Context, row int) error

	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	GetExpenseByRow(ctx context.Context, row int) (*domain.Expense, error)
	AppendExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	DeleteExpenseRow(ctx context.Context, row int) error

	ListDebts(ctx context.Context) ([]domain.Debt, error)
	GetDebtByRow(ctx context.Context, row int) (*domain.Debt, error)
	AppendDebt(ctx context.Context, debt domain.Debt) (*domain.Debt, error)
	SetDebtStatus(ctx context.Context, row int, status domain.DebtStatus) error
	DeleteDebtRow(ctx context.Context, row int) error
}

// Initializer is implemented by backends that can prepare their tables
// (header rows, schema) before first use.
type Initializer interface {
	Init(ctx context.Context) error
}
