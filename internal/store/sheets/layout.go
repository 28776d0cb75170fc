package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

// Column headers per table; the order is the on-sheet column order.
var (
	productHeader = []any{"SKU", "Name", "Cost"}
	saleHeader    = []any{"Date", "SKU", "Qty", "Price", "Cost", "Profit", "Customer", "Note"}
	expenseHeader = []any{"Date", "Amount", "Description", "Category"}
	debtHeader    = []any{"Customer", "Amount", "Note", "Status", "Date"}
)

const (
	productCostCol = "C"

	saleQtyCol      = "C"
	salePriceCol    = "D"
	saleCustomerCol = "G"
	saleNoteCol     = "H"

	debtStatusCol = "D"
)

func lastColumn(header []any) string {
	return string(rune('A' + len(header) - 1))
}

func encodeProduct(p domain.Product) []any {
	return []any{p.SKU, p.Name, p.Cost.InexactFloat64()}
}

func decodeProduct(row []any) domain.Product {
	return domain.Product{
		SKU:  cellString(row, 0),
		Name: cellString(row, 1),
		Cost: cellDecimal(row, 2),
	}
}

func encodeSale(s domain.Sale) []any {
	return []any{
		s.Date, s.SKU, s.Quantity,
		s.Revenue.InexactFloat64(), s.UnitCost.InexactFloat64(), s.Profit.InexactFloat64(),
		s.Customer, s.Note,
	}
}

func decodeSale(row []any) domain.Sale {
	return domain.Sale{
		Date:     cellString(row, 0),
		SKU:      cellString(row, 1),
		Quantity: cellInt(row, 2),
		Revenue:  cellDecimal(row, 3),
		UnitCost: cellDecimal(row, 4),
		Profit:   cellDecimal(row, 5),
		Customer: cellString(row, 6),
		Note:     cellString(row, 7),
	}
}

func encodeExpense(e domain.Expense) []any {
	return []any{e.Date, e.Amount.InexactFloat64(), e.Description, e.Category}
}

func decodeExpense(row []any) domain.Expense {
	return domain.Expense{
		Date:        cellString(row, 0),
		Amount:      cellDecimal(row, 1),
		Description: cellString(row, 2),
		Category:    cellString(row, 3),
	}
}

func encodeDebt(d domain.Debt) []any {
	return []any{d.Customer, d.Amount.InexactFloat64(), d.Note, string(d.Status), d.Date}
}

func decodeDebt(row []any) domain.Debt {
	return domain.Debt{
		Customer: cellString(row, 0),
		Amount:   cellDecimal(row, 1),
		Note:     cellString(row, 2),
		Status:   domain.DebtStatus(strings.ToLower(cellString(row, 3))),
		Date:     cellString(row, 4),
	}
}

func cellString(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// cellDecimal reads numeric cells; blank or unreadable cells count as zero,
// matching how the sheet treats them in totals.
func cellDecimal(row []any, idx int) decimal.Decimal {
	if idx >= len(row) || row[idx] == nil {
		return decimal.Zero
	}
	switch v := row[idx].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		clean := strings.NewReplacer(",", "", "đ", "", " ", "").Replace(strings.TrimSpace(v))
		d, err := decimal.NewFromString(clean)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func cellInt(row []any, idx int) int {
	return int(cellDecimal(row, idx).IntPart())
}

func blank(row []any) bool {
	for i := range row {
		if cellString(row, i) != "" {
			return false
		}
	}
	return true
}

// updatedRow extracts the row number from an A1 range such as "Sales!A7:H7".
func updatedRow(a1 string) (int, bool) {
	if idx := strings.LastIndex(a1, "!"); idx >= 0 {
		a1 = a1[idx+1:]
	}
	if idx := strings.Index(a1, ":"); idx >= 0 {
		a1 = a1[:idx]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return 0, false
	}
	return row, true
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
