package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/money"
	"cashflowbot/internal/render"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store"
)

func (e *Engine) startDebt(ctx context.Context, s *session.Session) (Reply, error) {
	*s = session.Session{}
	return e.advance(ctx, s, StateDebtCustomer)
}

func (e *Engine) startDebtPay(ctx context.Context, s *session.Session) (Reply, error) {
	pending, err := e.svc.PendingDebts(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(pending) == 0 {
		*s = session.Session{}
		return Reply{Text: "🎉 Không có ai nợ!", Keyboard: areaDebts.keyboard()}, nil
	}
	*s = session.Session{State: StateDebtPayRow}
	return debtPickPrompt(StateDebtPayRow, pending), nil
}

func (e *Engine) startDebtDelete(ctx context.Context, s *session.Session) (Reply, error) {
	debts, err := e.svc.ListDebts(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(debts) == 0 {
		*s = session.Session{}
		return Reply{Text: "📭 Chưa có khoản nợ nào.", Keyboard: areaDebts.keyboard()}, nil
	}
	*s = session.Session{State: StateDebtDeleteRow}
	return debtPickPrompt(StateDebtDeleteRow, debts), nil
}

func (e *Engine) debtCustomer(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	customer := strings.TrimSpace(in.Text)
	existing, err := e.svc.CustomerDebtTotal(ctx, customer)
	if err != nil {
		return Reply{}, err
	}
	s.Draft.Debt = &session.DebtDraft{Customer: customer, Existing: existing}
	return e.advance(ctx, s, StateDebtAmount)
}

func (e *Engine) debtAmount(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	amount, ok := money.Parse(in.Text)
	if !ok {
		return invalid(s, "❌ Số tiền không hợp lệ!\n\nVui lòng nhập lại (ví dụ: 500k, 1.5m):"), nil
	}
	s.Draft.Debt.Amount = &amount
	return e.advance(ctx, s, StateDebtNote)
}

func (e *Engine) debtNote(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	note := ""
	if in.Kind == InputText {
		note = in.Text
	}
	d := *s.Draft.Debt
	return e.commit(s, func() (Reply, error) {
		debt, total, err := e.svc.RecordDebt(ctx, d.Customer, *d.Amount, note)
		if err != nil {
			if debt.Row == 0 {
				return Reply{}, err
			}
			// Stored, but the new total could not be read back.
			e.logger.Warn("debt total unavailable", slog.Any("error", err))
			total = d.Existing.Add(debt.Amount)
		}
		return Reply{Text: render.DebtRecorded(debt, total)}, nil
	})
}

// lookupDebt resolves a typed row id; ok is false when the user has to retry.
func (e *Engine) lookupDebt(ctx context.Context, s *session.Session, text string) (*domain.Debt, Reply, bool, error) {
	row, valid := parseRow(text)
	if !valid {
		return nil, invalid(s, invalidRow), false, nil
	}
	debt, err := e.svc.GetDebt(ctx, row)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidRow):
		return nil, invalid(s, rowNotFound(row)), false, nil
	case err != nil:
		return nil, Reply{}, false, err
	}
	return debt, Reply{}, true, nil
}

func (e *Engine) debtPayRow(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	debt, retry, ok, err := e.lookupDebt(ctx, s, in.Text)
	if err != nil || !ok {
		return retry, err
	}
	if !debt.Pending() {
		return invalid(s, fmt.Sprintf("ℹ️ Row %d đã được trả rồi!\n\nVui lòng nhập row khác:", debt.Row)), nil
	}
	row := debt.Row
	return e.commit(s, func() (Reply, error) {
		paid, err := e.svc.PayDebt(ctx, row)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("✅ *ĐÃ TRẢ NỢ!*\n\n👤 %s\n💰 %s", render.Escape(paid.Customer), render.Money(paid.Amount))}, nil
	})
}

func (e *Engine) debtDeleteRow(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	debt, retry, ok, err := e.lookupDebt(ctx, s, in.Text)
	if err != nil || !ok {
		return retry, err
	}
	row := debt.Row
	return e.commit(s, func() (Reply, error) {
		deleted, err := e.svc.DeleteDebt(ctx, row)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("✅ *ĐÃ XÓA!*\n\n🗑 Row %d: %s - %s", row, render.Escape(deleted.Customer), render.Money(deleted.Amount))}, nil
	})
}
