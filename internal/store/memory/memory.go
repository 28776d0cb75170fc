package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/store"
)

// Store keeps the four ledger tables as ordered slices so row ids behave
// exactly like spreadsheet rows: deleting one shifts every later row up.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	sales    []domain.Sale
	expenses []domain.Expense
	debts    []domain.Debt
	faults   map[string]error
}

func New() *Store {
	return &Store{faults: make(map[string]error)}
}

// NewSeeded returns a store with a couple of demo products, used when the
// bot runs with LEDGER_BACKEND=memory.
func NewSeeded() *Store {
	s := New()
	s.products = []domain.Product{
		{SKU: "SP01", Name: "Áo thun", Cost: decimal.NewFromInt(100000)},
		{SKU: "SP02", Name: "Quần jean", Cost: decimal.NewFromInt(250000)},
	}
	slog.Warn("memory ledger in use, data is lost on restart", slog.String("component", "memory-store"))
	return s
}

// FailWith makes every call to op return a store fault wrapping err until
// cleared with a nil err.
func (s *Store) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		return store.NewFault(op, err)
	}
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("ListProducts"); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(s.products))
	for i, p := range s.products {
		p.Row = store.RowID(i)
		out[i] = p
	}
	return out, nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("GetProductBySKU"); err != nil {
		return nil, err
	}
	sku = strings.TrimSpace(sku)
	for i, p := range s.products {
		if strings.EqualFold(p.SKU, sku) {
			p.Row = store.RowID(i)
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) AppendProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("AppendProduct"); err != nil {
		return nil, err
	}
	product.Row = store.RowID(len(s.products))
	s.products = append(s.products, product)
	return &product, nil
}

func (s *Store) UpdateProductCost(_ context.Context, row int, cost decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("UpdateProductCost"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.products))
	if err != nil {
		return err
	}
	s.products[idx].Cost = cost
	return nil
}

func (s *Store) DeleteProductRow(_ context.Context, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteProductRow"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.products))
	if err != nil {
		return err
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	return nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("ListSales"); err != nil {
		return nil, err
	}
	out := make([]domain.Sale, len(s.sales))
	for i, sale := range s.sales {
		sale.Row = store.RowID(i)
		out[i] = sale
	}
	return out, nil
}

func (s *Store) GetSaleByRow(_ context.Context, row int) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("GetSaleByRow"); err != nil {
		return nil, err
	}
	idx, err := store.RowIndex(row, len(s.sales))
	if err != nil {
		return nil, err
	}
	sale := s.sales[idx]
	sale.Row = row
	return &sale, nil
}

func (s *Store) AppendSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("AppendSale"); err != nil {
		return nil, err
	}
	sale.Row = store.RowID(len(s.sales))
	s.sales = append(s.sales, sale)
	return &sale, nil
}

func (s *Store) UpdateSale(_ context.Context, row int, update domain.SaleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("UpdateSale"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.sales))
	if err != nil {
		return err
	}
	sale := &s.sales[idx]
	if update.Quantity != nil {
		sale.Quantity = *update.Quantity
	}
	if update.Revenue != nil {
		sale.Revenue = *update.Revenue
	}
	if update.Customer != nil {
		sale.Customer = *update.Customer
	}
	if update.Note != nil {
		sale.Note = *update.Note
	}
	return nil
}

func (s *Store) DeleteSaleRow(_ context.Context, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteSaleRow"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.sales))
	if err != nil {
		return err
	}
	s.sales = append(s.sales[:idx], s.sales[idx+1:]...)
	return nil
}

func (s *Store) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("ListExpenses"); err != nil {
		return nil, err
	}
	out := make([]domain.Expense, len(s.expenses))
	for i, e := range s.expenses {
		e.Row = store.RowID(i)
		out[i] = e
	}
	return out, nil
}

func (s *Store) GetExpenseByRow(_ context.Context, row int) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("GetExpenseByRow"); err != nil {
		return nil, err
	}
	idx, err := store.RowIndex(row, len(s.expenses))
	if err != nil {
		return nil, err
	}
	e := s.expenses[idx]
	e.Row = row
	return &e, nil
}

func (s *Store) AppendExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("AppendExpense"); err != nil {
		return nil, err
	}
	expense.Row = store.RowID(len(s.expenses))
	s.expenses = append(s.expenses, expense)
	return &expense, nil
}

func (s *Store) DeleteExpenseRow(_ context.Context, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteExpenseRow"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.expenses))
	if err != nil {
		return err
	}
	s.expenses = append(s.expenses[:idx], s.expenses[idx+1:]...)
	return nil
}

func (s *Store) ListDebts(_ context.Context) ([]domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("ListDebts"); err != nil {
		return nil, err
	}
	out := make([]domain.Debt, len(s.debts))
	for i, d := range s.debts {
		d.Row = store.RowID(i)
		out[i] = d
	}
	return out, nil
}

func (s *Store) GetDebtByRow(_ context.Context, row int) (*domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault("GetDebtByRow"); err != nil {
		return nil, err
	}
	idx, err := store.RowIndex(row, len(s.debts))
	if err != nil {
		return nil, err
	}
	d := s.debts[idx]
	d.Row = row
	return &d, nil
}

func (s *Store) AppendDebt(_ context.Context, debt domain.Debt) (*domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("AppendDebt"); err != nil {
		return nil, err
	}
	debt.Row = store.RowID(len(s.debts))
	s.debts = append(s.debts, debt)
	return &debt, nil
}

func (s *Store) SetDebtStatus(_ context.Context, row int, status domain.DebtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("SetDebtStatus"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.debts))
	if err != nil {
		return err
	}
	s.debts[idx].Status = status
	return nil
}

func (s *Store) DeleteDebtRow(_ context.Context, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DeleteDebtRow"); err != nil {
		return err
	}
	idx, err := store.RowIndex(row, len(s.debts))
	if err != nil {
		return err
	}
	s.debts = append(s.debts[:idx], s.debts[idx+1:]...)
	return nil
}
