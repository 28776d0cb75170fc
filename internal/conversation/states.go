package conversation

import (
	"cashflowbot/internal/callback"
	"cashflowbot/internal/render"
	"cashflowbot/internal/session"
)

const StateIdle session.State = ""

const (
	StateProductSKU     session.State = "product_add_sku"
	StateProductName    session.State = "product_add_name"
	StateProductCost    session.State = "product_add_cost"
	StateProductEditSKU session.State = "product_edit_sku"
	StateProductNewCost session.State = "product_edit_cost"
	StateProductDelete  session.State = "product_delete_sku"

	StateSaleProduct   session.State = "sale_product"
	StateSaleRevenue   session.State = "sale_revenue"
	StateSaleQuantity  session.State = "sale_quantity"
	StateSaleCustomer  session.State = "sale_customer"
	StateSaleNote      session.State = "sale_note"
	StateSaleEditRow   session.State = "sale_edit_row"
	StateSaleEditField session.State = "sale_edit_field"
	StateSaleEditValue session.State = "sale_edit_value"
	StateSaleDeleteRow session.State = "sale_delete_row"
	StateSaleDetailRow session.State = "sale_detail_row"

	StateExpenseCategory    session.State = "expense_category"
	StateExpenseAmount      session.State = "expense_amount"
	StateExpenseDescription session.State = "expense_description"
	StateExpenseDeleteRow   session.State = "expense_delete_row"

	StateDebtCustomer  session.State = "debt_customer"
	StateDebtAmount    session.State = "debt_amount"
	StateDebtNote      session.State = "debt_note"
	StateDebtPayRow    session.State = "debt_pay_row"
	StateDebtDeleteRow session.State = "debt_delete_row"
)

type area int

const (
	areaMain area = iota
	areaProducts
	areaSales
	areaExpenses
	areaStats
	areaDebts
)

func (a area) menu() Reply {
	switch a {
	case areaProducts:
		return Reply{Text: render.ProductMenuText, Keyboard: render.ProductMenu()}
	case areaSales:
		return Reply{Text: render.SalesMenuText, Keyboard: render.SalesMenu()}
	case areaExpenses:
		return Reply{Text: render.ExpenseMenuText, Keyboard: render.ExpenseMenu()}
	case areaStats:
		return Reply{Text: render.StatsMenuText, Keyboard: render.StatsMenu()}
	case areaDebts:
		return Reply{Text: render.DebtMenuText, Keyboard: render.DebtMenu()}
	}
	return Reply{Text: render.MainMenuText, Keyboard: render.MainMenu()}
}

func (a area) keyboard() render.Keyboard {
	return a.menu().Keyboard
}

// workflow describes one multi-step dialog, named by its entry button.
type workflow struct {
	id     string
	area   area
	cancel string
	states []session.State
}

var workflows = []workflow{
	{callback.ProductAdd, areaProducts, callback.CancelConversation, []session.State{StateProductSKU, StateProductName, StateProductCost}},
	{callback.ProductEdit, areaProducts, callback.CancelConversation, []session.State{StateProductEditSKU, StateProductNewCost}},
	{callback.ProductDelete, areaProducts, callback.CancelConversation, []session.State{StateProductDelete}},
	{callback.SaleAdd, areaSales, callback.CancelSales, []session.State{StateSaleProduct, StateSaleRevenue, StateSaleQuantity, StateSaleCustomer, StateSaleNote}},
	{callback.SaleEdit, areaSales, callback.CancelSales, []session.State{StateSaleEditRow, StateSaleEditField, StateSaleEditValue}},
	{callback.SaleDelete, areaSales, callback.CancelSales, []session.State{StateSaleDeleteRow}},
	{callback.SaleDetail, areaSales, callback.CancelSales, []session.State{StateSaleDetailRow}},
	{callback.ExpenseAdd, areaExpenses, callback.CancelExpense, []session.State{StateExpenseCategory, StateExpenseAmount, StateExpenseDescription}},
	{callback.ExpenseDelete, areaExpenses, callback.CancelExpense, []session.State{StateExpenseDeleteRow}},
	{callback.DebtAdd, areaDebts, callback.CancelDebt, []session.State{StateDebtCustomer, StateDebtAmount, StateDebtNote}},
	{callback.DebtPay, areaDebts, callback.CancelDebt, []session.State{StateDebtPayRow}},
	{callback.DebtDelete, areaDebts, callback.CancelDebt, []session.State{StateDebtDeleteRow}},
}

var stateOwner = func() map[session.State]workflow {
	owners := make(map[session.State]workflow)
	for _, wf := range workflows {
		for _, st := range wf.states {
			owners[st] = wf
		}
	}
	return owners
}()

func workflowOf(st session.State) (workflow, bool) {
	wf, ok := stateOwner[st]
	return wf, ok
}

// cancelArea maps a cancel button to the menu shown after cancelling.
func cancelArea(id string) area {
	switch id {
	case callback.CancelSales:
		return areaSales
	case callback.CancelExpense:
		return areaExpenses
	case callback.CancelDebt:
		return areaDebts
	case callback.CancelConversation:
		return areaProducts
	}
	return areaMain
}

func (wf workflow) cancelKeyboard() render.Keyboard {
	return render.Cancel(wf.cancel)
}
