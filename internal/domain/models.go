package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the DD/MM/YYYY layout stored in every dated ledger column.
const DateLayout = "02/01/2006"

// LocalZone is the fixed UTC+7 offset every ledger date is written in.
var LocalZone = time.FixedZone("UTC+7", 7*60*60)

func FormatDate(t time.Time) string {
	return t.In(LocalZone).Format(DateLayout)
}

func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), LocalZone)
}

// MaxSKUBytes keeps "sp_"+sku inside Telegram's 64 byte callback data.
const MaxSKUBytes = 61

type Product struct {
	Row  int             `json:"row"`
	SKU  string          `json:"sku" validate:"required,max=61"`
	Name string          `json:"name" validate:"required,max=256"`
	Cost decimal.Decimal `json:"cost" validate:"gt=0"`
}

type Sale struct {
	Row      int             `json:"row"`
	Date     string          `json:"date" validate:"required"`
	SKU      string          `json:"sku" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Revenue  decimal.Decimal `json:"revenue" validate:"gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Profit   decimal.Decimal `json:"profit"`
	Customer string          `json:"customer"`
	Note     string          `json:"note"`
}

// TotalCost is the snapshotted unit cost times quantity.
func (s Sale) TotalCost() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// SaleUpdate carries the fields an edit touches; nil fields are left as stored.
// Profit is never part of an update.
type SaleUpdate struct {
	Quantity *int             `json:"quantity,omitempty"`
	Revenue  *decimal.Decimal `json:"revenue,omitempty"`
	Customer *string          `json:"customer,omitempty"`
	Note     *string          `json:"note,omitempty"`
}

func (u SaleUpdate) Empty() bool {
	return u.Quantity == nil && u.Revenue == nil && u.Customer == nil && u.Note == nil
}

// SaleField names an editable sale column.
type SaleField string

const (
	SaleFieldQuantity SaleField = "qty"
	SaleFieldRevenue  SaleField = "price"
	SaleFieldCustomer SaleField = "customer"
	SaleFieldNote     SaleField = "note"
)

func ParseSaleField(value string) (SaleField, bool) {
	switch SaleField(value) {
	case SaleFieldQuantity, SaleFieldRevenue, SaleFieldCustomer, SaleFieldNote:
		return SaleField(value), true
	}
	return "", false
}

type Expense struct {
	Row         int             `json:"row"`
	Date        string          `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

type DebtStatus string

const (
	DebtPending DebtStatus = "pending"
	DebtPaid    DebtStatus = "paid"
)

type Debt struct {
	Row      int             `json:"row"`
	Customer string          `json:"customer" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Note     string          `json:"note"`
	Status   DebtStatus      `json:"status" validate:"oneof=pending paid"`
	Date     string          `json:"date" validate:"required"`
}

func (d Debt) Pending() bool {
	return d.Status == DebtPending
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}
