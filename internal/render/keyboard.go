package render

import (
	"fmt"

	"cashflowbot/internal/callback"
	"cashflowbot/internal/domain"
	"cashflowbot/internal/money"
	"cashflowbot/internal/report"
)

type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of inline buttons, one slice per row.
type Keyboard [][]Button

func row(buttons ...Button) []Button {
	return buttons
}

func btn(text, data string) Button {
	return Button{Text: text, Data: data}
}

func MainMenu() Keyboard {
	return Keyboard{
		row(btn("💸 Chi Tiêu", callback.MenuExpenses), btn("🛒 Bán Hàng", callback.MenuSales)),
		row(btn("📦 Sản Phẩm", callback.MenuProducts), btn("📊 Thống Kê", callback.MenuStats)),
		row(btn("💳 Quản Lý Nợ", callback.MenuDebts), btn("❓ Hướng Dẫn", callback.MenuHelp)),
	}
}

func ExpenseMenu() Keyboard {
	return Keyboard{
		row(btn("💸 Ghi Chi Tiêu", callback.ExpenseAdd)),
		row(btn("📋 Hôm Nay", callback.ExpenseToday), btn("📊 Tháng", callback.ExpenseMonth)),
		row(btn("🗑 Xóa Chi Tiêu", callback.ExpenseDelete), btn("🔙 Menu", callback.MenuMain)),
	}
}

func ProductMenu() Keyboard {
	return Keyboard{
		row(btn("📋 Xem Danh Sách", callback.ProductList)),
		row(btn("➕ Thêm SP", callback.ProductAdd), btn("✏️ Sửa Giá", callback.ProductEdit), btn("🗑 Xóa SP", callback.ProductDelete)),
		row(btn("🔙 Menu Chính", callback.MenuMain)),
	}
}

func SalesMenu() Keyboard {
	return Keyboard{
		row(btn("🛒 Ghi Bán", callback.SaleAdd), btn("📋 Lịch Sử", callback.SaleHistory)),
		row(btn("🔍 Chi Tiết", callback.SaleDetail), btn("✏️ Sửa Đơn", callback.SaleEdit)),
		row(btn("💹 Lãi Tháng", callback.SaleProfit), btn("🗑 Xóa", callback.SaleDelete)),
		row(btn("🔙 Menu", callback.MenuMain)),
	}
}

func StatsMenu() Keyboard {
	return Keyboard{
		row(btn("📅 Hôm Nay", callback.StatsToday), btn("📆 Tháng Này", callback.StatsMonth)),
		row(btn("💹 Lợi Nhuận", callback.StatsProfit), btn("🔙 Menu", callback.MenuMain)),
	}
}

func DebtMenu() Keyboard {
	return Keyboard{
		row(btn("📝 Ghi Nợ", callback.DebtAdd), btn("📋 DS Nợ", callback.DebtList)),
		row(btn("👤 Theo Khách", callback.DebtByCustomer), btn("✅ Trả Nợ", callback.DebtPay)),
		row(btn("📊 Tổng Kết", callback.DebtSummary), btn("🗑 Xóa", callback.DebtDelete)),
		row(btn("🔙 Menu", callback.MenuMain)),
	}
}

func BackToMain() Keyboard {
	return Keyboard{row(btn("🔙 Menu Chính", callback.MenuMain))}
}

func BackToDebts() Keyboard {
	return Keyboard{row(btn("🔙 Quản Lý Nợ", callback.MenuDebts))}
}

// Cancel offers only the given cancel button.
func Cancel(cancelID string) Keyboard {
	return Keyboard{row(btn("❌ Hủy", cancelID))}
}

// Skip offers a skip button above the cancel button.
func Skip(skipID, cancelID string) Keyboard {
	return Keyboard{
		row(btn("⏭ Bỏ qua", skipID)),
		row(btn("❌ Hủy", cancelID)),
	}
}

// ProductPicker lists one product per row for the sale flow.
func ProductPicker(products []domain.Product) Keyboard {
	kb := make(Keyboard, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("🏷 %s - %s (%s)", p.SKU, p.Name, money.Format(p.Cost))
		kb = append(kb, row(btn(label, callback.Product(p.SKU))))
	}
	return append(kb, row(btn("❌ Hủy", callback.CancelSales)))
}

// CategoryPicker lays the expense categories out two per row.
func CategoryPicker() Keyboard {
	kb := Keyboard{}
	var current []Button
	for _, c := range domain.Categories {
		current = append(current, btn(c.Emoji+" "+c.Label, callback.Category(c.Name)))
		if len(current) == 2 {
			kb = append(kb, current)
			current = nil
		}
	}
	if len(current) > 0 {
		kb = append(kb, current)
	}
	return append(kb, row(btn("❌ Hủy", callback.CancelExpense)))
}

func EditFieldPicker() Keyboard {
	return Keyboard{
		row(btn("📦 Số lượng", callback.EditField(domain.SaleFieldQuantity)), btn("💰 Tổng thu", callback.EditField(domain.SaleFieldRevenue))),
		row(btn("👤 Người mua", callback.EditField(domain.SaleFieldCustomer)), btn("📝 Ghi chú", callback.EditField(domain.SaleFieldNote))),
		row(btn("❌ Hủy", callback.CancelSales)),
	}
}

// CustomerButtons is how many customers get a detail button.
const CustomerButtons = 8

// CustomerPicker puts the largest debtors two per row.
func CustomerPicker(customers []report.CustomerDebt) Keyboard {
	kb := Keyboard{}
	var current []Button
	for i, c := range customers {
		if i == CustomerButtons {
			break
		}
		current = append(current, btn("👤 "+callback.Truncate(c.Customer, 10), callback.DebtCustomer(c.Customer)))
		if len(current) == 2 {
			kb = append(kb, current)
			current = nil
		}
	}
	if len(current) > 0 {
		kb = append(kb, current)
	}
	return append(kb, row(btn("🔙 Quản Lý Nợ", callback.MenuDebts)))
}

func PayAll(customer string) Keyboard {
	return Keyboard{
		row(btn(fmt.Sprintf("✅ Trả Hết Nợ (%s)", customer), callback.DebtPayAll(customer))),
		row(btn("🔙 Quản Lý Nợ", callback.MenuDebts)),
	}
}
