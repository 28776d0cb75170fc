package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/report"
)

const (
	GenericError   = "❌ Có lỗi xảy ra. Vui lòng thử lại sau."
	UnknownCommand = "❓ Lệnh không được nhận dạng.\n\n💡 Dùng `/start` để mở menu hoặc `/help` để xem hướng dẫn."
	StaleButton    = "⌛ Nút này đã hết hạn.\n\n💡 Dùng `/start` để mở menu."
	Cancelled      = "❌ *Đã hủy!*"
	IdleText       = "💡 Dùng `/start` để mở menu hoặc `/help` để xem hướng dẫn."
)

func Welcome(firstName string) string {
	if strings.TrimSpace(firstName) == "" {
		firstName = "bạn"
	}
	return fmt.Sprintf("🎉 *Chào mừng %s!*\n\n*CashFlow Bot* - Quản lý thu chi & tính lãi bán hàng tự động.\n\n%s\n📌 *Chọn chức năng bên dưới:*",
		Escape(firstName), divider)
}

const (
	MainMenuText    = "🎉 *MENU CHÍNH*\n\n📌 *Chọn chức năng:*"
	ExpenseMenuText = "💸 *CHI TIÊU*\n\nBấm nút bên dưới để thao tác:"
	ProductMenuText = "📦 *SẢN PHẨM*\n\nBấm nút bên dưới để thao tác:"
	SalesMenuText   = "🛒 *BÁN HÀNG*\n\nBấm nút bên dưới để thao tác:"
	StatsMenuText   = "📊 *THỐNG KÊ*\n\nXem báo cáo thu chi và lợi nhuận:"
	DebtMenuText    = "💳 *QUẢN LÝ NỢ*\n\nChọn chức năng:"
)

const Help = `📖 *HƯỚNG DẪN SỬ DỤNG*

━━━ *💸 CHI TIÊU* ━━━
Bấm nút 💸 Ghi Chi Tiêu để được hướng dẫn từng bước.
Hoặc: ` + "`/chi 50k Ăn trưa`" + `

━━━ *📦 SẢN PHẨM* ━━━
Bấm nút ➕ Thêm SP để thêm sản phẩm mới.
Hoặc: ` + "`/themsp SP01 Áo thun 150k`" + `

━━━ *🛒 BÁN HÀNG* ━━━
Bấm nút 🛒 Ghi Bán để ghi nhận bán hàng.
Hoặc: ` + "`/ban SP01 250k`" + `

━━━ *💳 CÔNG NỢ* ━━━
` + "`/no`" + ` - Mở menu quản lý nợ

━━━ *📊 THỐNG KÊ* ━━━
` + "`/homnay`" + ` - Tổng kết hôm nay
` + "`/thang`" + ` - Tổng kết tháng

━━━ *💡 MẸO* ━━━
• ` + "`50k`" + ` = 50.000đ
• ` + "`1m`" + ` = 1.000.000đ
• ` + "`/cancel`" + ` - Hủy thao tác đang làm`

const QuickHelp = `📖 *HƯỚNG DẪN NHANH*

*💸 Chi Tiêu:* Bấm nút → chọn loại → nhập số tiền → nhập mô tả

*📦 Sản Phẩm:* Thêm SP trước khi bán

*🛒 Bán Hàng:* Chọn SP → nhập tổng thu → nhập SL → nhập người mua → ghi chú

*💳 Nợ:* Ghi nợ theo tên khách, trả từng khoản hoặc trả hết

━━━ *💡 Mẹo* ━━━
• ` + "`50k`" + ` = 50.000đ
• ` + "`1m`" + ` = 1.000.000đ`

func ProductList(products []domain.Product) string {
	var b strings.Builder
	b.WriteString("📦 *DANH SÁCH SẢN PHẨM*\n\n")
	if len(products) == 0 {
		b.WriteString("📭 Chưa có sản phẩm nào.")
		return b.String()
	}
	for _, p := range products {
		fmt.Fprintf(&b, "🏷 %s - %s\n   💵 Cost: %s\n\n", Code(p.SKU), Escape(p.Name), Money(p.Cost))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ProductPickList renders the products above a free-text SKU prompt.
func ProductPickList(title string, products []domain.Product, prompt string, withCost bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	if len(products) == 0 {
		b.WriteString("📭 Chưa có sản phẩm nào.")
		return b.String()
	}
	b.WriteString("📦 *Danh sách hiện tại:*\n")
	for _, p := range products {
		if withCost {
			fmt.Fprintf(&b, "• %s - %s (%s)\n", Code(p.SKU), Escape(p.Name), Money(p.Cost))
		} else {
			fmt.Fprintf(&b, "• %s - %s\n", Code(p.SKU), Escape(p.Name))
		}
	}
	fmt.Fprintf(&b, "\n%s", prompt)
	return b.String()
}

func ProductAdded(p domain.Product) string {
	return fmt.Sprintf("✅ *ĐÃ THÊM SẢN PHẨM!*\n\n🏷 *SKU:* %s\n📦 *Tên:* %s\n💵 *Giá gốc:* %s\n\n💡 Dùng %s để ghi bán hàng.",
		Code(p.SKU), Escape(p.Name), Money(p.Cost), Code("/ban "+p.SKU+" [giá bán]"))
}

func ProductCostUpdated(before domain.Product, cost decimal.Decimal) string {
	return fmt.Sprintf("✅ *ĐÃ CẬP NHẬT!*\n\n🏷 %s - %s\n💵 Giá cũ: %s\n💵 *Giá mới: %s*",
		Code(before.SKU), Escape(before.Name), Money(before.Cost), Money(cost))
}

func ProductDeleted(p domain.Product) string {
	return fmt.Sprintf("✅ *ĐÃ XÓA SẢN PHẨM!*\n\n🗑 %s - %s", Code(p.SKU), Escape(p.Name))
}

func SalesHistory(sales []domain.Sale) string {
	var b strings.Builder
	b.WriteString("🛒 *LỊCH SỬ BÁN HÀNG*\n\n")
	if len(sales) == 0 {
		b.WriteString("📭 Chưa có giao dịch nào.")
		return b.String()
	}
	for _, s := range sales {
		fmt.Fprintf(&b, "🏷 %s - Row %d\n   📅 %s | Qty: %d\n   %s Profit: %s\n\n",
			Code(s.SKU), s.Row, s.Date, s.Quantity, Trend(s.Profit), Money(s.Profit))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SalePickList renders recent sales above a row-number prompt.
func SalePickList(title string, sales []domain.Sale, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	if len(sales) == 0 {
		b.WriteString("📭 Chưa có giao dịch nào.")
		return b.String()
	}
	b.WriteString("📋 *Giao dịch gần đây:*\n")
	for _, s := range sales {
		fmt.Fprintf(&b, "• *Row %d*: %s - %s (%s)\n", s.Row, Code(s.SKU), Money(s.Profit), s.Date)
	}
	fmt.Fprintf(&b, "\n%s", prompt)
	return b.String()
}

func SaleRecorded(s domain.Sale, productName string) string {
	var b strings.Builder
	b.WriteString("✅ *ĐÃ GHI BÁN HÀNG!*\n\n")
	fmt.Fprintf(&b, "🏷 *Sản phẩm:* %s (%s)\n", Escape(productName), Code(s.SKU))
	fmt.Fprintf(&b, "📦 *Số lượng:* %d\n", s.Quantity)
	fmt.Fprintf(&b, "👤 *Người mua:* %s\n", orNA(s.Customer))
	if s.Note != "" {
		fmt.Fprintf(&b, "📝 *Ghi chú:* %s\n", Escape(s.Note))
	}
	fmt.Fprintf(&b, "\n━━━ *Chi tiết* ━━━\n💵 Giá gốc: %s × %d = %s\n💰 Tổng thu: %s\n",
		Money(s.UnitCost), s.Quantity, Money(s.TotalCost()), Money(s.Revenue))
	fmt.Fprintf(&b, "\n━━━ *Kết quả* ━━━\n%s *Lợi nhuận: %s*", Trend(s.Profit), Money(s.Profit))
	return b.String()
}

// SaleShort is the one-line confirmation used by the /ban command.
func SaleShort(s domain.Sale) string {
	return fmt.Sprintf("✅ *Đã ghi bán!*\n\n🏷 %s × %d @ %s\n%s Lãi: %s",
		Code(s.SKU), s.Quantity, Money(s.Revenue), Trend(s.Profit), Money(s.Profit))
}

func SaleDetail(s domain.Sale, productName string) string {
	return fmt.Sprintf(`🔍 *CHI TIẾT ĐƠN HÀNG - Row %d*

📅 *Ngày:* %s
🏷 *Sản phẩm:* %s (%s)
📦 *Số lượng:* %d
👤 *Người mua:* %s
📝 *Ghi chú:* %s

━━━ *Chi tiết tài chính* ━━━
💵 Giá gốc/SP: %s
💰 Tổng gốc: %s
💎 Tổng thu: %s

%s *Lợi nhuận: %s*`,
		s.Row, s.Date, Escape(productName), Code(s.SKU), s.Quantity, orNA(s.Customer), orNA(s.Note),
		Money(s.UnitCost), Money(s.TotalCost()), Money(s.Revenue), Trend(s.Profit), Money(s.Profit))
}

// SaleEditChoices shows the editable fields of a sale before the field picker.
func SaleEditChoices(s domain.Sale) string {
	return fmt.Sprintf("✏️ *SỬA ĐƠN HÀNG - Row %d*\n\n📦 Số lượng: %d\n💰 Tổng thu: %s\n👤 Người mua: %s\n📝 Ghi chú: %s\n\n🔧 *Chọn trường cần sửa:*",
		s.Row, s.Quantity, Money(s.Revenue), orNA(s.Customer), orNA(s.Note))
}

func FieldLabel(f domain.SaleField) string {
	switch f {
	case domain.SaleFieldQuantity:
		return "Số lượng"
	case domain.SaleFieldRevenue:
		return "Tổng thu"
	case domain.SaleFieldCustomer:
		return "Người mua"
	case domain.SaleFieldNote:
		return "Ghi chú"
	}
	return string(f)
}

// FieldValue renders the current value of one editable sale field.
func FieldValue(s domain.Sale, f domain.SaleField) string {
	switch f {
	case domain.SaleFieldQuantity:
		return fmt.Sprintf("%d", s.Quantity)
	case domain.SaleFieldRevenue:
		return Money(s.Revenue)
	case domain.SaleFieldCustomer:
		return orNA(s.Customer)
	case domain.SaleFieldNote:
		return orNA(s.Note)
	}
	return "N/A"
}

func MonthProfit(st report.Statement) string {
	return fmt.Sprintf("💹 *LỢI NHUẬN %s*\n\n🛒 Số lần bán: %d\n📦 Tổng SP: %d\n💰 Doanh thu: %s\n%s\n%s *Lợi nhuận: %s*",
		monthTitle(st.Month, st.Year), st.Sales.Count, st.Sales.Quantity, Money(st.Sales.Revenue),
		divider, Trend(st.Sales.Profit), Money(st.Sales.Profit))
}

func TodayExpenses(date string, expenses []domain.Expense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💸 *CHI TIÊU - %s*\n\n", date)
	if len(expenses) == 0 {
		b.WriteString("📭 Chưa có chi tiêu nào hôm nay.")
		return b.String()
	}
	for _, e := range expenses {
		fmt.Fprintf(&b, "%s *Row %d*: %s\n   📝 %s\n\n", domain.CategoryEmoji(e.Category), e.Row, Money(e.Amount), Escape(e.Description))
	}
	summary := report.SummarizeExpenses(expenses)
	fmt.Fprintf(&b, "%s\n💸 *Tổng chi: %s*", divider, Money(summary.Total))
	return b.String()
}

func MonthExpenses(st report.Statement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *CHI TIÊU %s*\n\n📊 Số lần chi: %d\n💸 *Tổng chi: %s*",
		monthTitle(st.Month, st.Year), st.Expenses.Count, Money(st.Expenses.Total))
	if len(st.Expenses.ByCategory) > 0 {
		b.WriteString("\n\n📂 *Theo loại:*")
		for _, c := range st.Expenses.ByCategory {
			fmt.Fprintf(&b, "\n   %s %s: %s", domain.CategoryEmoji(c.Category), Escape(c.Category), Money(c.Total))
		}
	}
	return b.String()
}

func ExpenseRecorded(e domain.Expense, today *report.ExpenseSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *ĐÃ GHI CHI TIÊU!*\n\n💸 Số tiền: %s\n📝 Mô tả: %s\n%s Loại: %s\n📅 Ngày: %s",
		Money(e.Amount), Escape(e.Description), domain.CategoryEmoji(e.Category), Escape(e.Category), e.Date)
	if today != nil {
		fmt.Fprintf(&b, "\n━━━ Chi tiêu hôm nay ━━━\n📊 Số lần: %d | 💸 Tổng: %s", today.Count, Money(today.Total))
	}
	return b.String()
}

func ExpenseShort(e domain.Expense) string {
	return fmt.Sprintf("✅ *Đã ghi chi tiêu!*\n\n💸 %s | %s %s\n📝 %s",
		Money(e.Amount), domain.CategoryEmoji(e.Category), Escape(e.Category), Escape(e.Description))
}

func ExpensePickList(expenses []domain.Expense) string {
	var b strings.Builder
	b.WriteString("🗑 *XÓA CHI TIÊU*\n\n")
	if len(expenses) == 0 {
		b.WriteString("📭 Chưa có chi tiêu nào hôm nay.")
		return b.String()
	}
	b.WriteString("📋 *Chi tiêu hôm nay:*\n")
	for _, e := range expenses {
		fmt.Fprintf(&b, "• *Row %d*: %s - %s\n", e.Row, Money(e.Amount), Escape(e.Description))
	}
	b.WriteString("\n⚠️ Nhập số row cần xóa:")
	return b.String()
}

func TodayStats(st report.Statement) string {
	return fmt.Sprintf("📊 *TỔNG KẾT %s*\n\n━━━ *💰 Thu nhập* ━━━\n🛒 Bán: %d | 📈 Lãi: %s\n\n━━━ *💸 Chi tiêu* ━━━\n📊 Số lần: %d | 💸 Tổng: %s\n\n%s\n%s *Còn lại: %s*",
		st.Date, st.Sales.Count, Money(st.Sales.Profit), st.Expenses.Count, Money(st.Expenses.Total),
		divider, Trend(st.Balance), Money(st.Balance))
}

func MonthStats(st report.Statement) string {
	return fmt.Sprintf("📅 *TỔNG KẾT %s*\n\n━━━ *💰 Thu nhập* ━━━\n🛒 Bán: %d | Doanh thu: %s\n📈 Lợi nhuận: %s\n\n━━━ *💸 Chi tiêu* ━━━\n📊 Số lần: %d | 💸 Tổng: %s\n\n%s\n%s *Còn lại: %s*",
		monthTitle(st.Month, st.Year), st.Sales.Count, Money(st.Sales.Revenue), Money(st.Sales.Profit),
		st.Expenses.Count, Money(st.Expenses.Total), divider, Trend(st.Balance), Money(st.Balance))
}

// DebtListLimit bounds the pending debts shown in one list.
const DebtListLimit = 15

func lastDebts(debts []domain.Debt) []domain.Debt {
	if len(debts) > DebtListLimit {
		return debts[len(debts)-DebtListLimit:]
	}
	return debts
}

func debtsTotal(debts []domain.Debt) decimal.Decimal {
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.Amount)
	}
	return total
}

func DebtList(pending []domain.Debt) string {
	if len(pending) == 0 {
		return "📋 *DANH SÁCH NỢ*\n\n🎉 Không có ai nợ!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *DANH SÁCH NỢ* (%d khoản)\n\n", len(pending))
	for _, d := range lastDebts(pending) {
		note := ""
		if d.Note != "" {
			note = " - " + Escape(d.Note)
		}
		fmt.Fprintf(&b, "• Row %d: %s - %s%s\n", d.Row, Escape(d.Customer), Money(d.Amount), note)
	}
	if len(pending) > DebtListLimit {
		fmt.Fprintf(&b, "\n... và %d khoản khác\n", len(pending)-DebtListLimit)
	}
	fmt.Fprintf(&b, "\n%s\n💰 Tổng nợ: %s", divider, Money(debtsTotal(pending)))
	return b.String()
}

func DebtsByCustomer(customers []report.CustomerDebt) string {
	if len(customers) == 0 {
		return "👤 *NỢ THEO KHÁCH*\n\n🎉 Không có ai nợ!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👤 *NỢ THEO KHÁCH* (%d người)\n\n", len(customers))
	total := decimal.Zero
	for _, c := range customers {
		fmt.Fprintf(&b, "• %s: %s (%d khoản)\n", Escape(c.Customer), Money(c.Total), c.Count)
		total = total.Add(c.Total)
	}
	fmt.Fprintf(&b, "\n%s\n💰 Tổng nợ: %s", divider, Money(total))
	return b.String()
}

func CustomerDebts(customer string, debts []domain.Debt, total decimal.Decimal) string {
	if len(debts) == 0 {
		return fmt.Sprintf("👤 *NỢ CỦA:* %s\n\n🎉 Đã trả hết!", Escape(customer))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👤 *NỢ CỦA:* %s\n\n", Escape(customer))
	for _, d := range debts {
		note := ""
		if d.Note != "" {
			note = " (" + Escape(d.Note) + ")"
		}
		fmt.Fprintf(&b, "• %s: %s%s\n", d.Date, Money(d.Amount), note)
	}
	fmt.Fprintf(&b, "\n%s\n💰 Tổng nợ: %s", divider, Money(total))
	return b.String()
}

func DebtOverview(ov report.DebtOverview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *TỔNG KẾT NỢ*\n\n💰 Tổng nợ: %s\n📝 Số khoản: %d\n👥 Số người nợ: %d",
		Money(ov.Total), ov.Count, ov.Customers)
	if len(ov.Top) > 0 {
		b.WriteString("\n\n📋 Top nợ nhiều nhất:")
		for _, c := range ov.Top {
			fmt.Fprintf(&b, "\n   • %s: %s", Escape(c.Customer), Money(c.Total))
		}
	}
	return b.String()
}

func DebtRecorded(d domain.Debt, total decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *ĐÃ GHI NỢ!*\n\n👤 Khách hàng: %s\n💰 Số tiền: %s\n", Escape(d.Customer), Money(d.Amount))
	if d.Note != "" {
		fmt.Fprintf(&b, "📝 Ghi chú: %s\n", Escape(d.Note))
	}
	fmt.Fprintf(&b, "%s\n💳 Tổng nợ hiện tại: %s", divider, Money(total))
	return b.String()
}

// DebtPickList renders debts above a row prompt; paid debts carry a check mark
// when withStatus is set.
func DebtPickList(title string, debts []domain.Debt, prompt string, withStatus bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n📋 Danh sách nợ:\n", title)
	for _, d := range lastDebts(debts) {
		status := ""
		if withStatus {
			status = "⏳ "
			if !d.Pending() {
				status = "✅ "
			}
		}
		fmt.Fprintf(&b, "• Row %d: %s%s - %s\n", d.Row, status, Escape(d.Customer), Money(d.Amount))
	}
	fmt.Fprintf(&b, "\n%s", prompt)
	return b.String()
}

func DebtsPaid(customer string, count int, total decimal.Decimal) string {
	return fmt.Sprintf("✅ Đã đánh dấu %d khoản nợ của %s đã trả!\n💰 Tổng: %s", count, Escape(customer), Money(total))
}
