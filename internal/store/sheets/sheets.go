// Package sheets stores the ledger in a Google Spreadsheet, one worksheet per
// table, with a single header row and positional row ids.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/store"
)

type Tables struct {
	Products string
	Sales    string
	Expenses string
	Debts    string
}

type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	Tables          Tables
	Timeout         time.Duration
	// Endpoint points the client at a local Sheets emulator; credentials are
	// not used when it is set.
	Endpoint string
}

// Store owns its Sheets client; the client is created on first use and kept
// for the lifetime of the Store.
type Store struct {
	cfg Config

	mu       sync.Mutex
	svc      *gsheets.Service
	sheetIDs map[string]int64
}

func New(cfg Config) *Store {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Tables.Products == "" {
		cfg.Tables.Products = "Products"
	}
	if cfg.Tables.Sales == "" {
		cfg.Tables.Sales = "Sales"
	}
	if cfg.Tables.Expenses == "" {
		cfg.Tables.Expenses = "Expenses"
	}
	if cfg.Tables.Debts == "" {
		cfg.Tables.Debts = "Debts"
	}
	return &Store{cfg: cfg, sheetIDs: make(map[string]int64)}
}

func (s *Store) service(ctx context.Context) (*gsheets.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.svc != nil {
		return s.svc, nil
	}

	var opts []option.ClientOption
	if s.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.cfg.Endpoint), option.WithoutAuthentication())
	} else {
		credJSON := []byte(s.cfg.CredentialsJSON)
		if len(credJSON) == 0 {
			data, err := os.ReadFile(s.cfg.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("unable to read credentials file: %w", err)
			}
			credJSON = data
		}
		creds, err := google.CredentialsFromJSON(ctx, credJSON, gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	// The client outlives the call that happened to create it.
	svc, err := gsheets.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// call runs fn with a per-call timeout and classifies every failure as a store fault.
func (s *Store) call(ctx context.Context, op string, fn func(ctx context.Context, svc *gsheets.Service) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	svc, err := s.service(ctx)
	if err != nil {
		return store.NewFault(op, err)
	}
	return store.NewFault(op, fn(ctx, svc))
}

func (s *Store) readRows(ctx context.Context, op string, table string, header []any) ([][]any, error) {
	rng := fmt.Sprintf("%s!A%d:%s", quoteTitle(table), store.HeaderRows+1, lastColumn(header))
	var rows [][]any
	err := s.call(ctx, op, func(ctx context.Context, svc *gsheets.Service) error {
		resp, err := svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).Do()
		if err != nil {
			return err
		}
		rows = resp.Values
		return nil
	})
	return rows, err
}

func (s *Store) readRow(ctx context.Context, op string, table string, header []any, row int) ([]any, error) {
	if err := store.CheckRow(row); err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", quoteTitle(table), row, lastColumn(header), row)
	var values []any
	err := s.call(ctx, op, func(ctx context.Context, svc *gsheets.Service) error {
		resp, err := svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Values) > 0 {
			values = resp.Values[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if blank(values) {
		return nil, store.ErrNotFound
	}
	return values, nil
}

func (s *Store) appendRow(ctx context.Context, op string, table string, values []any) (int, error) {
	row := 0
	err := s.call(ctx, op, func(ctx context.Context, svc *gsheets.Service) error {
		resp, err := svc.Spreadsheets.Values.Append(s.cfg.SpreadsheetID, quoteTitle(table)+"!A1", &gsheets.ValueRange{
			Values: [][]any{values},
		}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return err
		}
		if resp.Updates != nil {
			row, _ = updatedRow(resp.Updates.UpdatedRange)
		}
		return nil
	})
	return row, err
}

type cellUpdate struct {
	col   string
	value any
}

func (s *Store) updateCells(ctx context.Context, op string, table string, row int, cells []cellUpdate) error {
	if err := store.CheckRow(row); err != nil {
		return err
	}
	data := make([]*gsheets.ValueRange, 0, len(cells))
	for _, c := range cells {
		data = append(data, &gsheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", quoteTitle(table), c.col, row),
			Values: [][]any{{c.value}},
		})
	}
	return s.call(ctx, op, func(ctx context.Context, svc *gsheets.Service) error {
		_, err := svc.Spreadsheets.Values.BatchUpdate(s.cfg.SpreadsheetID, &gsheets.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data:             data,
		}).Context(ctx).Do()
		return err
	})
}

func (s *Store) sheetID(ctx context.Context, svc *gsheets.Service, table string) (int64, error) {
	s.mu.Lock()
	id, ok := s.sheetIDs[table]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	resp, err := svc.Spreadsheets.Get(s.cfg.SpreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok = s.sheetIDs[table]
	if !ok {
		return 0, fmt.Errorf("worksheet %q not found", table)
	}
	return id, nil
}

func (s *Store) deleteRow(ctx context.Context, op string, table string, row int) error {
	if err := store.CheckRow(row); err != nil {
		return err
	}
	return s.call(ctx, op, func(ctx context.Context, svc *gsheets.Service) error {
		id, err := s.sheetID(ctx, svc, table)
		if err != nil {
			return err
		}
		_, err = svc.Spreadsheets.BatchUpdate(s.cfg.SpreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				DeleteDimension: &gsheets.DeleteDimensionRequest{
					Range: &gsheets.DimensionRange{
						SheetId:    id,
						Dimension:  "ROWS",
						StartIndex: int64(row - 1),
						EndIndex:   int64(row),
					},
				},
			}},
		}).Context(ctx).Do()
		return err
	})
}

// Init writes the header row into any table whose first row is empty.
func (s *Store) Init(ctx context.Context) error {
	tables := []struct {
		name   string
		header []any
	}{
		{s.cfg.Tables.Products, productHeader},
		{s.cfg.Tables.Sales, saleHeader},
		{s.cfg.Tables.Expenses, expenseHeader},
		{s.cfg.Tables.Debts, debtHeader},
	}
	for _, t := range tables {
		rng := fmt.Sprintf("%s!A1:%s1", quoteTitle(t.name), lastColumn(t.header))
		err := s.call(ctx, "Init", func(ctx context.Context, svc *gsheets.Service) error {
			resp, err := svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, rng).Context(ctx).Do()
			if err != nil {
				return err
			}
			if len(resp.Values) > 0 && !blank(resp.Values[0]) {
				return nil
			}
			_, err = svc.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, rng, &gsheets.ValueRange{
				Values: [][]any{t.header},
			}).ValueInputOption("RAW").Context(ctx).Do()
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.readRows(ctx, "ListProducts", s.cfg.Tables.Products, productHeader)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		p := decodeProduct(row)
		p.Row = store.RowID(i)
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	sku = strings.TrimSpace(sku)
	for _, p := range products {
		if strings.EqualFold(p.SKU, sku) {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) AppendProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	row, err := s.appendRow(ctx, "AppendProduct", s.cfg.Tables.Products, encodeProduct(product))
	if err != nil {
		return nil, err
	}
	product.Row = row
	return &product, nil
}

func (s *Store) UpdateProductCost(ctx context.Context, row int, cost decimal.Decimal) error {
	return s.updateCells(ctx, "UpdateProductCost", s.cfg.Tables.Products, row, []cellUpdate{
		{productCostCol, cost.InexactFloat64()},
	})
}

func (s *Store) DeleteProductRow(ctx context.Context, row int) error {
	return s.deleteRow(ctx, "DeleteProductRow", s.cfg.Tables.Products, row)
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.readRows(ctx, "ListSales", s.cfg.Tables.Sales, saleHeader)
	if err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		sale := decodeSale(row)
		sale.Row = store.RowID(i)
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s *Store) GetSaleByRow(ctx context.Context, row int) (*domain.Sale, error) {
	values, err := s.readRow(ctx, "GetSaleByRow", s.cfg.Tables.Sales, saleHeader, row)
	if err != nil {
		return nil, err
	}
	sale := decodeSale(values)
	sale.Row = row
	return &sale, nil
}

func (s *Store) AppendSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	row, err := s.appendRow(ctx, "AppendSale", s.cfg.Tables.Sales, encodeSale(sale))
	if err != nil {
		return nil, err
	}
	sale.Row = row
	return &sale, nil
}

func (s *Store) UpdateSale(ctx context.Context, row int, update domain.SaleUpdate) error {
	if update.Empty() {
		return errors.New("empty sale update")
	}
	cells := make([]cellUpdate, 0, 4)
	if update.Quantity != nil {
		cells = append(cells, cellUpdate{saleQtyCol, *update.Quantity})
	}
	if update.Revenue != nil {
		cells = append(cells, cellUpdate{salePriceCol, update.Revenue.InexactFloat64()})
	}
	if update.Customer != nil {
		cells = append(cells, cellUpdate{saleCustomerCol, *update.Customer})
	}
	if update.Note != nil {
		cells = append(cells, cellUpdate{saleNoteCol, *update.Note})
	}
	return s.updateCells(ctx, "UpdateSale", s.cfg.Tables.Sales, row, cells)
}

func (s *Store) DeleteSaleRow(ctx context.Context, row int) error {
	return s.deleteRow(ctx, "DeleteSaleRow", s.cfg.Tables.Sales, row)
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.readRows(ctx, "ListExpenses", s.cfg.Tables.Expenses, expenseHeader)
	if err != nil {
		return nil, err
	}
	expenses := make([]domain.Expense, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		e := decodeExpense(row)
		e.Row = store.RowID(i)
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (s *Store) GetExpenseByRow(ctx context.Context, row int) (*domain.Expense, error) {
	values, err := s.readRow(ctx, "GetExpenseByRow", s.cfg.Tables.Expenses, expenseHeader, row)
	if err != nil {
		return nil, err
	}
	e := decodeExpense(values)
	e.Row = row
	return &e, nil
}

func (s *Store) AppendExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	row, err := s.appendRow(ctx, "AppendExpense", s.cfg.Tables.Expenses, encodeExpense(expense))
	if err != nil {
		return nil, err
	}
	expense.Row = row
	return &expense, nil
}

func (s *Store) DeleteExpenseRow(ctx context.Context, row int) error {
	return s.deleteRow(ctx, "DeleteExpenseRow", s.cfg.Tables.Expenses, row)
}

func (s *Store) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	rows, err := s.readRows(ctx, "ListDebts", s.cfg.Tables.Debts, debtHeader)
	if err != nil {
		return nil, err
	}
	debts := make([]domain.Debt, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		d := decodeDebt(row)
		d.Row = store.RowID(i)
		debts = append(debts, d)
	}
	return debts, nil
}

func (s *Store) GetDebtByRow(ctx context.Context, row int) (*domain.Debt, error) {
	values, err := s.readRow(ctx, "GetDebtByRow", s.cfg.Tables.Debts, debtHeader, row)
	if err != nil {
		return nil, err
	}
	d := decodeDebt(values)
	d.Row = row
	return &d, nil
}

func (s *Store) AppendDebt(ctx context.Context, debt domain.Debt) (*domain.Debt, error) {
	row, err := s.appendRow(ctx, "AppendDebt", s.cfg.Tables.Debts, encodeDebt(debt))
	if err != nil {
		return nil, err
	}
	debt.Row = row
	return &debt, nil
}

func (s *Store) SetDebtStatus(ctx context.Context, row int, status domain.DebtStatus) error {
	return s.updateCells(ctx, "SetDebtStatus", s.cfg.Tables.Debts, row, []cellUpdate{
		{debtStatusCol, string(status)},
	})
}

func (s *Store) DeleteDebtRow(ctx context.Context, row int) error {
	return s.deleteRow(ctx, "DeleteDebtRow", s.cfg.Tables.Debts, row)
}
