package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
)

func TestDeleteRowShiftsPositionalIDs(t *testing.T) {
	databaseURL := os.Getenv("CASHFLOW_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set CASHFLOW_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM ledger_debts`)
		_ = s.Close()
	})
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ledger_debts`); err != nil {
		t.Fatalf("reset debts: %v", err)
	}

	for _, customer := range []string{"An", "Binh", "Chi"} {
		_, err := s.AppendDebt(ctx, domain.Debt{
			Customer: customer,
			Amount:   decimal.NewFromInt(100000),
			Status:   domain.DebtPending,
			Date:     "01/02/2025",
		})
		if err != nil {
			t.Fatalf("append %s: %v", customer, err)
		}
	}

	if err := s.DeleteDebtRow(ctx, 3); err != nil {
		t.Fatalf("delete row 3: %v", err)
	}
	debt, err := s.GetDebtByRow(ctx, 3)
	if err != nil {
		t.Fatalf("get row 3: %v", err)
	}
	if debt.Customer != "Chi" {
		t.Fatalf("expected Chi to shift into row 3, got %s", debt.Customer)
	}

	if err := s.SetDebtStatus(ctx, 2, domain.DebtPaid); err != nil {
		t.Fatalf("set status: %v", err)
	}
	debts, err := s.ListDebts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(debts) != 2 || debts[0].Status != domain.DebtPaid || debts[1].Row != 3 {
		t.Fatalf("unexpected debts after update: %+v", debts)
	}
}
