package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/money"
	"cashflowbot/internal/render"
	"cashflowbot/internal/report"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store"
)

func (e *Engine) startExpense(ctx context.Context, s *session.Session) (Reply, error) {
	*s = session.Session{}
	return e.advance(ctx, s, StateExpenseCategory)
}

func (e *Engine) startExpenseDelete(ctx context.Context, s *session.Session) (Reply, error) {
	expenses, err := e.svc.TodayExpenses(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(expenses) == 0 {
		*s = session.Session{}
		return Reply{Text: "📭 Chưa có chi tiêu nào hôm nay.", Keyboard: areaExpenses.keyboard()}, nil
	}
	*s = session.Session{State: StateExpenseDeleteRow}
	return expensePickPrompt(expenses), nil
}

func (e *Engine) expenseCategory(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	c, ok := domain.LookupCategory(in.Text)
	if !ok {
		return e.reprompt(ctx, s, "❌ Loại chi tiêu không hợp lệ!")
	}
	s.Draft.Expense = &session.ExpenseDraft{Category: c.Name}
	return e.advance(ctx, s, StateExpenseAmount)
}

func (e *Engine) expenseAmount(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	amount, ok := money.Parse(in.Text)
	if !ok {
		return invalid(s, "❌ Số tiền không hợp lệ!\n\nVui lòng nhập lại (ví dụ: 50k, 50000):"), nil
	}
	s.Draft.Expense.Amount = &amount
	return e.advance(ctx, s, StateExpenseDescription)
}

func (e *Engine) expenseDescription(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	d := *s.Draft.Expense
	return e.commit(s, func() (Reply, error) {
		expense, err := e.svc.RecordExpense(ctx, *d.Amount, in.Text, string(d.Category))
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.ExpenseRecorded(expense, e.todaySummary(ctx))}, nil
	})
}

// todaySummary is best effort: the expense is already stored when it runs.
func (e *Engine) todaySummary(ctx context.Context) *report.ExpenseSummary {
	today, err := e.svc.TodayExpenses(ctx)
	if err != nil {
		e.logger.Warn("today summary unavailable", slog.Any("error", err))
		return nil
	}
	summary := report.SummarizeExpenses(today)
	return &summary
}

func (e *Engine) expenseDeleteRow(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	row, valid := parseRow(in.Text)
	if !valid {
		return invalid(s, invalidRow), nil
	}
	_, err := e.svc.GetExpense(ctx, row)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidRow):
		return invalid(s, rowNotFound(row)), nil
	case err != nil:
		return Reply{}, err
	}
	return e.commit(s, func() (Reply, error) {
		deleted, err := e.svc.DeleteExpense(ctx, row)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: "✅ *ĐÃ XÓA!*\n\n🗑 Row " + strconv.Itoa(row) + ": " + render.Money(deleted.Amount) + " - " + render.Escape(deleted.Description)}, nil
	})
}
