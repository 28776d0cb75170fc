package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/store"
)

// Store keeps each ledger table in Postgres. Row ids are positional over
// insertion order (ORDER BY id) so they match the spreadsheet backend.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS ledger_products (
	id BIGSERIAL PRIMARY KEY,
	sku TEXT NOT NULL,
	name TEXT NOT NULL,
	cost NUMERIC(18,2) NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ledger_products_sku_idx ON ledger_products (upper(sku));
CREATE TABLE IF NOT EXISTS ledger_sales (
	id BIGSERIAL PRIMARY KEY,
	sale_date TEXT NOT NULL,
	sku TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price NUMERIC(18,2) NOT NULL,
	cost NUMERIC(18,2) NOT NULL,
	profit NUMERIC(18,2) NOT NULL,
	customer TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS ledger_expenses (
	id BIGSERIAL PRIMARY KEY,
	expense_date TEXT NOT NULL,
	amount NUMERIC(18,2) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS ledger_debts (
	id BIGSERIAL PRIMARY KEY,
	customer TEXT NOT NULL,
	amount NUMERIC(18,2) NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	debt_date TEXT NOT NULL
);
`

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return store.NewFault("Init", err)
}

// offset turns a row id into the OFFSET of that row in id order.
func offset(row int) (int, error) {
	if err := store.CheckRow(row); err != nil {
		return 0, err
	}
	return row - store.HeaderRows - 1, nil
}

// rowOf returns the positional row id of the entity with the given id.
func (s *Store) rowOf(ctx context.Context, table string, id int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+table+` WHERE id <= $1`, id).Scan(&n)
	if err != nil {
		return 0, err
	}
	return store.RowID(n - 1), nil
}

// execAtRow runs query with the id of the row-th entity bound as the last
// argument. Header rows report ErrInvalidRow and missing rows ErrNotFound.
func (s *Store) execAtRow(ctx context.Context, op string, table string, row int, query string, args ...any) error {
	idx, err := offset(row)
	if err != nil {
		return err
	}
	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM `+table+` ORDER BY id OFFSET $1 LIMIT 1`, idx).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return store.NewFault(op, err)
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.NewFault(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sku, name, cost FROM ledger_products ORDER BY id`)
	if err != nil {
		return nil, store.NewFault("ListProducts", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.Cost); err != nil {
			return nil, store.NewFault("ListProducts", err)
		}
		p.Row = store.RowID(len(products))
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewFault("ListProducts", err)
	}
	return products, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var (
		p  domain.Product
		id int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name, cost FROM ledger_products
		WHERE upper(sku) = upper($1)
		ORDER BY id LIMIT 1
	`, strings.TrimSpace(sku)).Scan(&id, &p.SKU, &p.Name, &p.Cost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewFault("GetProductBySKU", err)
	}
	if p.Row, err = s.rowOf(ctx, "ledger_products", id); err != nil {
		return nil, store.NewFault("GetProductBySKU", err)
	}
	return &p, nil
}

func (s *Store) AppendProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_products (sku, name, cost) VALUES ($1,$2,$3) RETURNING id
	`, product.SKU, product.Name, product.Cost).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateSKU
		}
		return nil, store.NewFault("AppendProduct", err)
	}
	if product.Row, err = s.rowOf(ctx, "ledger_products", id); err != nil {
		return nil, store.NewFault("AppendProduct", err)
	}
	return &product, nil
}

func (s *Store) UpdateProductCost(ctx context.Context, row int, cost decimal.Decimal) error {
	return s.execAtRow(ctx, "UpdateProductCost", "ledger_products", row,
		`UPDATE ledger_products SET cost = $1 WHERE id = $2`, cost)
}

func (s *Store) DeleteProductRow(ctx context.Context, row int) error {
	return s.execAtRow(ctx, "DeleteProductRow", "ledger_products", row,
		`DELETE FROM ledger_products WHERE id = $1`)
}

const saleColumns = `sale_date, sku, qty, price, cost, profit, customer, note`

func scanSale(row interface{ Scan(...any) error }, sale *domain.Sale) error {
	return row.Scan(&sale.Date, &sale.SKU, &sale.Quantity, &sale.Revenue, &sale.UnitCost, &sale.Profit, &sale.Customer, &sale.Note)
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+saleColumns+` FROM ledger_sales ORDER BY id`)
	if err != nil {
		return nil, store.NewFault("ListSales", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		var sale domain.Sale
		if err := scanSale(rows, &sale); err != nil {
			return nil, store.NewFault("ListSales", err)
		}
		sale.Row = store.RowID(len(sales))
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewFault("ListSales", err)
	}
	return sales, nil
}

func (s *Store) GetSaleByRow(ctx context.Context, row int) (*domain.Sale, error) {
	idx, err := offset(row)
	if err != nil {
		return nil, err
	}
	var sale domain.Sale
	err = scanSale(s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM ledger_sales ORDER BY id OFFSET $1 LIMIT 1`, idx), &sale)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewFault("GetSaleByRow", err)
	}
	sale.Row = row
	return &sale, nil
}

func (s *Store) AppendSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_sales (`+saleColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id
	`, sale.Date, sale.SKU, sale.Quantity, sale.Revenue, sale.UnitCost, sale.Profit, sale.Customer, sale.Note).Scan(&id)
	if err != nil {
		return nil, store.NewFault("AppendSale", err)
	}
	if sale.Row, err = s.rowOf(ctx, "ledger_sales", id); err != nil {
		return nil, store.NewFault("AppendSale", err)
	}
	return &sale, nil
}

func (s *Store) UpdateSale(ctx context.Context, row int, update domain.SaleUpdate) error {
	if update.Empty() {
		return errors.New("empty sale update")
	}
	return s.execAtRow(ctx, "UpdateSale", "ledger_sales", row, `
		UPDATE ledger_sales SET
			qty = COALESCE($1, qty),
			price = COALESCE($2, price),
			customer = COALESCE($3, customer),
			note = COALESCE($4, note)
		WHERE id = $5
	`, update.Quantity, nullDecimal(update.Revenue), update.Customer, update.Note)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (s *Store) DeleteSaleRow(ctx context.Context, row int) error {
	return s.execAtRow(ctx, "DeleteSaleRow", "ledger_sales", row,
		`DELETE FROM ledger_sales WHERE id = $1`)
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT expense_date, amount, description, category FROM ledger_expenses ORDER BY id
	`)
	if err != nil {
		return nil, store.NewFault("ListExpenses", err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 128)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.Date, &e.Amount, &e.Description, &e.Category); err != nil {
			return nil, store.NewFault("ListExpenses", err)
		}
		e.Row = store.RowID(len(expenses))
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewFault("ListExpenses", err)
	}
	return expenses, nil
}

func (s *Store) GetExpenseByRow(ctx context.Context, row int) (*domain.Expense, error) {
	idx, err := offset(row)
	if err != nil {
		return nil, err
	}
	var e domain.Expense
	err = s.db.QueryRowContext(ctx, `
		SELECT expense_date, amount, description, category FROM ledger_expenses ORDER BY id OFFSET $1 LIMIT 1
	`, idx).Scan(&e.Date, &e.Amount, &e.Description, &e.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewFault("GetExpenseByRow", err)
	}
	e.Row = row
	return &e, nil
}

func (s *Store) AppendExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_expenses (expense_date, amount, description, category) VALUES ($1,$2,$3,$4) RETURNING id
	`, expense.Date, expense.Amount, expense.Description, expense.Category).Scan(&id)
	if err != nil {
		return nil, store.NewFault("AppendExpense", err)
	}
	if expense.Row, err = s.rowOf(ctx, "ledger_expenses", id); err != nil {
		return nil, store.NewFault("AppendExpense", err)
	}
	return &expense, nil
}

func (s *Store) DeleteExpenseRow(ctx context.Context, row int) error {
	return s.execAtRow(ctx, "DeleteExpenseRow", "ledger_expenses", row,
		`DELETE FROM ledger_expenses WHERE id = $1`)
}

func (s *Store) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer, amount, note, status, debt_date FROM ledger_debts ORDER BY id
	`)
	if err != nil {
		return nil, store.NewFault("ListDebts", err)
	}
	defer rows.Close()

	debts := make([]domain.Debt, 0, 64)
	for rows.Next() {
		var d domain.Debt
		if err := rows.Scan(&d.Customer, &d.Amount, &d.Note, &d.Status, &d.Date); err != nil {
			return nil, store.NewFault("ListDebts", err)
		}
		d.Row = store.RowID(len(debts))
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewFault("ListDebts", err)
	}
	return debts, nil
}

func (s *Store) GetDebtByRow(ctx context.Context, row int) (*domain.Debt, error) {
	idx, err := offset(row)
	if err != nil {
		return nil, err
	}
	var d domain.Debt
	err = s.db.QueryRowContext(ctx, `
		SELECT customer, amount, note, status, debt_date FROM ledger_debts ORDER BY id OFFSET $1 LIMIT 1
	`, idx).Scan(&d.Customer, &d.Amount, &d.Note, &d.Status, &d.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewFault("GetDebtByRow", err)
	}
	d.Row = row
	return &d, nil
}

func (s *Store) AppendDebt(ctx context.Context, debt domain.Debt) (*domain.Debt, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_debts (customer, amount, note, status, debt_date) VALUES ($1,$2,$3,$4,$5) RETURNING id
	`, debt.Customer, debt.Amount, debt.Note, string(debt.Status), debt.Date).Scan(&id)
	if err != nil {
		return nil, store.NewFault("AppendDebt", err)
	}
	if debt.Row, err = s.rowOf(ctx, "ledger_debts", id); err != nil {
		return nil, store.NewFault("AppendDebt", err)
	}
	return &debt, nil
}

func (s *Store) SetDebtStatus(ctx context.Context, row int, status domain.DebtStatus) error {
	return s.execAtRow(ctx, "SetDebtStatus", "ledger_debts", row,
		`UPDATE ledger_debts SET status = $1 WHERE id = $2`, string(status))
}

func (s *Store) DeleteDebtRow(ctx context.Context, row int) error {
	return s.execAtRow(ctx, "DeleteDebtRow", "ledger_debts", row,
		`DELETE FROM ledger_debts WHERE id = $1`)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
