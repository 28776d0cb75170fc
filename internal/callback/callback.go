// Package callback holds the identifiers carried by inline buttons.
package callback

import (
	"strings"
	"unicode/utf8"

	"cashflowbot/internal/domain"
)

const (
	MenuMain     = "menu_main"
	MenuExpenses = "menu_chi"
	MenuSales    = "menu_ban"
	MenuProducts = "menu_sanpham"
	MenuStats    = "menu_thongke"
	MenuDebts    = "menu_no"
	MenuHelp     = "menu_help"

	ProductList   = "sanpham_list"
	ProductAdd    = "sanpham_add"
	ProductEdit   = "sanpham_edit"
	ProductDelete = "sanpham_delete"

	SaleAdd     = "sales_add"
	SaleHistory = "sales_history"
	SaleDetail  = "sales_detail"
	SaleEdit    = "sales_edit"
	SaleProfit  = "sales_profit"
	SaleDelete  = "sales_delete"

	ExpenseAdd    = "expense_add"
	ExpenseToday  = "chitieu_today"
	ExpenseMonth  = "expense_month"
	ExpenseDelete = "expense_delete"

	StatsToday  = "stats_today"
	StatsMonth  = "stats_month"
	StatsProfit = "stats_profit"

	DebtAdd        = "debt_add"
	DebtList       = "debt_list"
	DebtByCustomer = "debt_by_customer"
	DebtPay        = "debt_pay"
	DebtSummary    = "debt_summary"
	DebtDelete     = "debt_delete"

	SkipStep     = "skip_step"
	DebtSkipNote = "debt_skip_note"

	CancelSales        = "cancel_sales"
	CancelExpense      = "cancel_expense"
	CancelDebt         = "cancel_debt"
	CancelConversation = "cancel_conversation"
)

const (
	PrefixProduct      = "sp_"
	PrefixCategory     = "cat_"
	PrefixEditField    = "edit_"
	PrefixDebtCustomer = "debt_customer_"
	PrefixDebtPayAll   = "debt_payall_"
)

// MaxData is Telegram's limit on callback data, in bytes.
const MaxData = 64

// CustomerKeyLen bounds, in runes, the customer name carried in debt buttons.
const CustomerKeyLen = 15

func Product(sku string) string {
	return PrefixProduct + sku
}

func Category(c domain.Category) string {
	return PrefixCategory + string(c)
}

func EditField(f domain.SaleField) string {
	return PrefixEditField + string(f)
}

func DebtCustomer(customer string) string {
	return customerKey(PrefixDebtCustomer, customer)
}

func DebtPayAll(customer string) string {
	return customerKey(PrefixDebtPayAll, customer)
}

// customerKey keeps CustomerKeyLen runes of the name, then cuts it further on
// a rune boundary if the payload would pass MaxData.
func customerKey(prefix string, customer string) string {
	return prefix + TruncateBytes(Truncate(customer, CustomerKeyLen), MaxData-len(prefix))
}

// Truncate keeps the first n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// TruncateBytes keeps at most n bytes of s without splitting a rune.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// IsCancel reports whether id is one of the per-area cancel buttons.
func IsCancel(id string) bool {
	switch id {
	case CancelSales, CancelExpense, CancelDebt, CancelConversation:
		return true
	}
	return false
}

// CutPrefix splits a parameterised id into its prefix and payload.
func CutPrefix(id string) (prefix string, payload string, ok bool) {
	for _, p := range []string{PrefixDebtCustomer, PrefixDebtPayAll, PrefixProduct, PrefixCategory, PrefixEditField} {
		if rest, found := strings.CutPrefix(id, p); found {
			return p, rest, true
		}
	}
	return "", "", false
}
