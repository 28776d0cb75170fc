// Package session keeps the per-chat scratch data of an in-progress
// conversation between updates.
package session

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

// State names a step of a conversation; the empty State means idle.
type State string

type Session struct {
	State     State     `json:"state"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft holds the fields collected so far. Exactly one member is set while a
// workflow that collects fields is active.
type Draft struct {
	Product  *ProductDraft  `json:"product,omitempty"`
	Sale     *SaleDraft     `json:"sale,omitempty"`
	SaleEdit *SaleEditDraft `json:"sale_edit,omitempty"`
	Expense  *ExpenseDraft  `json:"expense,omitempty"`
	Debt     *DebtDraft     `json:"debt,omitempty"`
}

type ProductDraft struct {
	SKU  string          `json:"sku,omitempty"`
	Name string          `json:"name,omitempty"`
	Cost decimal.Decimal `json:"cost"`
}

type SaleDraft struct {
	SKU         string           `json:"sku"`
	ProductName string           `json:"product_name"`
	UnitCost    decimal.Decimal  `json:"unit_cost"`
	Revenue     *decimal.Decimal `json:"revenue,omitempty"`
	Quantity    int              `json:"quantity,omitempty"`
	Customer    *string          `json:"customer,omitempty"`
}

type SaleEditDraft struct {
	Row   int              `json:"row"`
	Field domain.SaleField `json:"field,omitempty"`
	Sale  domain.Sale      `json:"sale"`
}

type ExpenseDraft struct {
	Category domain.Category  `json:"category"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

type DebtDraft struct {
	Customer string           `json:"customer"`
	Existing decimal.Decimal  `json:"existing"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

// Store persists sessions by key. Load returns nil without error when no
// live session exists for the key.
type Store interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, s *Session) error
	Clear(ctx context.Context, key string) error
}
