package conversation

import (
	"context"
	"errors"
	"fmt"

	"cashflowbot/internal/callback"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
)

// debtTop is how many customers the debt overview ranks.
const debtTop = 5

// view answers the read-only menu buttons.
func (e *Engine) view(ctx context.Context, action string) (Reply, error) {
	switch action {
	case callback.MenuMain:
		return areaMain.menu(), nil
	case callback.MenuExpenses:
		return areaExpenses.menu(), nil
	case callback.MenuSales:
		return areaSales.menu(), nil
	case callback.MenuProducts:
		return areaProducts.menu(), nil
	case callback.MenuStats:
		return areaStats.menu(), nil
	case callback.MenuDebts:
		return areaDebts.menu(), nil
	case callback.MenuHelp:
		return Reply{Text: render.QuickHelp, Keyboard: render.BackToMain()}, nil

	case callback.ProductList:
		products, err := e.svc.ListProducts(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.ProductList(products), Keyboard: areaProducts.keyboard()}, nil

	case callback.SaleHistory:
		sales, err := e.svc.RecentSales(ctx, service.RecentLimit)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.SalesHistory(sales), Keyboard: areaSales.keyboard()}, nil
	case callback.SaleProfit, callback.StatsProfit:
		st, err := e.svc.MonthStatement(ctx, 0, 0)
		if err != nil {
			return Reply{}, err
		}
		a := areaSales
		if action == callback.StatsProfit {
			a = areaStats
		}
		return Reply{Text: render.MonthProfit(st), Keyboard: a.keyboard()}, nil

	case callback.ExpenseToday:
		expenses, err := e.svc.TodayExpenses(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.TodayExpenses(e.svc.Today(), expenses), Keyboard: areaExpenses.keyboard()}, nil
	case callback.ExpenseMonth:
		st, err := e.svc.MonthStatement(ctx, 0, 0)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.MonthExpenses(st), Keyboard: areaExpenses.keyboard()}, nil

	case callback.StatsToday:
		st, err := e.svc.TodayStatement(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.TodayStats(st), Keyboard: areaStats.keyboard()}, nil
	case callback.StatsMonth:
		st, err := e.svc.MonthStatement(ctx, 0, 0)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.MonthStats(st), Keyboard: areaStats.keyboard()}, nil

	case callback.DebtList:
		pending, err := e.svc.PendingDebts(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.DebtList(pending), Keyboard: areaDebts.keyboard()}, nil
	case callback.DebtByCustomer:
		customers, err := e.svc.DebtsByCustomer(ctx)
		if err != nil {
			return Reply{}, err
		}
		if len(customers) == 0 {
			return Reply{Text: render.DebtsByCustomer(nil), Keyboard: areaDebts.keyboard()}, nil
		}
		return Reply{Text: render.DebtsByCustomer(customers), Keyboard: render.CustomerPicker(customers)}, nil
	case callback.DebtSummary:
		ov, err := e.svc.DebtOverview(ctx, debtTop)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.DebtOverview(ov), Keyboard: areaDebts.keyboard()}, nil
	}
	return Reply{Text: render.StaleButton, Keyboard: render.BackToMain()}, nil
}

func (e *Engine) customerDetail(ctx context.Context, prefix string) (Reply, error) {
	customer, debts, total, err := e.svc.CustomerDebts(ctx, prefix)
	if err != nil {
		return Reply{}, err
	}
	kb := render.BackToDebts()
	if len(debts) > 0 {
		kb = render.PayAll(customer)
	}
	return Reply{Text: render.CustomerDebts(customer, debts, total), Keyboard: kb}, nil
}

func (e *Engine) payAll(ctx context.Context, prefix string) (Reply, error) {
	customer, count, total, err := e.svc.PayAllDebts(ctx, prefix)
	switch {
	case errors.Is(err, service.ErrNoPending):
		return Reply{Text: fmt.Sprintf("ℹ️ %s không có nợ pending", render.Escape(customer)), Keyboard: render.BackToDebts()}, nil
	case err != nil:
		return Reply{Keyboard: render.BackToDebts()}, err
	}
	if count == 0 {
		return Reply{Text: fmt.Sprintf("ℹ️ %s không có nợ pending", render.Escape(customer)), Keyboard: render.BackToDebts()}, nil
	}
	e.metrics.Commit("debt_pay_all", "ok")
	return Reply{Text: render.DebtsPaid(customer, count, total), Keyboard: render.BackToDebts()}, nil
}
