package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/report"
)

func (s *Service) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	return s.repo.ListDebts(ctx)
}

func (s *Service) PendingDebts(ctx context.Context) ([]domain.Debt, error) {
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return nil, err
	}
	return report.PendingDebts(debts), nil
}

func (s *Service) CustomerDebtTotal(ctx context.Context, customer string) (decimal.Decimal, error) {
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return report.CustomerDebtTotal(debts, customer), nil
}

// RecordDebt appends a pending debt and returns it with the customer's new
// pending total.
func (s *Service) RecordDebt(ctx context.Context, customer string, amount decimal.Decimal, note string) (domain.Debt, decimal.Decimal, error) {
	debt := domain.Debt{
		Customer: strings.TrimSpace(customer),
		Amount:   amount,
		Note:     strings.TrimSpace(note),
		Status:   domain.DebtPending,
		Date:     s.Today(),
	}
	if err := domain.Validate(debt); err != nil {
		return domain.Debt{}, decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	created, err := s.repo.AppendDebt(ctx, debt)
	if err != nil {
		return domain.Debt{}, decimal.Zero, err
	}
	total, err := s.CustomerDebtTotal(ctx, created.Customer)
	if err != nil {
		return *created, decimal.Zero, err
	}
	return *created, total, nil
}

func (s *Service) GetDebt(ctx context.Context, row int) (*domain.Debt, error) {
	return s.repo.GetDebtByRow(ctx, row)
}

// PayDebt marks a pending debt as paid; the row stays in the table.
func (s *Service) PayDebt(ctx context.Context, row int) (domain.Debt, error) {
	debt, err := s.repo.GetDebtByRow(ctx, row)
	if err != nil {
		return domain.Debt{}, err
	}
	if !debt.Pending() {
		return *debt, ErrAlreadyPaid
	}
	if err := s.repo.SetDebtStatus(ctx, row, domain.DebtPaid); err != nil {
		return domain.Debt{}, err
	}
	debt.Status = domain.DebtPaid
	return *debt, nil
}

// PayAllDebts marks every pending debt of the customer whose name starts with
// prefix as paid. It returns the resolved customer, the number of rows
// updated and their total.
func (s *Service) PayAllDebts(ctx context.Context, prefix string) (string, int, decimal.Decimal, error) {
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return "", 0, decimal.Zero, err
	}
	customer, ok := report.ResolveCustomer(debts, prefix)
	if !ok {
		return prefix, 0, decimal.Zero, ErrNoPending
	}

	count, total := 0, decimal.Zero
	for _, d := range report.PendingDebtsOf(debts, customer) {
		if err := s.repo.SetDebtStatus(ctx, d.Row, domain.DebtPaid); err != nil {
			return customer, count, total, err
		}
		count++
		total = total.Add(d.Amount)
	}
	return customer, count, total, nil
}

func (s *Service) DeleteDebt(ctx context.Context, row int) (domain.Debt, error) {
	debt, err := s.repo.GetDebtByRow(ctx, row)
	if err != nil {
		return domain.Debt{}, err
	}
	if err := s.repo.DeleteDebtRow(ctx, row); err != nil {
		return domain.Debt{}, err
	}
	return *debt, nil
}

func (s *Service) DebtsByCustomer(ctx context.Context) ([]report.CustomerDebt, error) {
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return nil, err
	}
	return report.DebtsByCustomer(debts), nil
}

// CustomerDebts resolves prefix to a customer and lists their pending debts.
func (s *Service) CustomerDebts(ctx context.Context, prefix string) (string, []domain.Debt, decimal.Decimal, error) {
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return "", nil, decimal.Zero, err
	}
	customer, ok := report.ResolveCustomer(debts, prefix)
	if !ok {
		return prefix, nil, decimal.Zero, nil
	}
	return customer, report.PendingDebtsOf(debts, customer), report.CustomerDebtTotal(debts, customer), nil
}

func (s *Service) DebtOverview(ctx context.Context, top int) (report.DebtOverview, error) {
	debts, err := s.repo.ListDebts(ctx)
	if err != nil {
		return report.DebtOverview{}, err
	}
	return report.Overview(debts, top), nil
}
