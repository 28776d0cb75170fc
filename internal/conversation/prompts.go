package conversation

import (
	"context"
	"fmt"

	"cashflowbot/internal/callback"
	"cashflowbot/internal/domain"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
	"cashflowbot/internal/session"
)

// skipKeyboards lists the states whose field is optional.
var skipKeyboards = map[session.State]render.Keyboard{
	StateSaleQuantity: render.Skip(callback.SkipStep, callback.CancelSales),
	StateSaleCustomer: render.Skip(callback.SkipStep, callback.CancelSales),
	StateSaleNote:     render.Skip(callback.SkipStep, callback.CancelSales),
	StateDebtNote:     render.Skip(callback.DebtSkipNote, callback.CancelDebt),
}

// prompt renders the question asked in the session's current state.
func (e *Engine) prompt(ctx context.Context, s *session.Session) (Reply, error) {
	wf, _ := workflowOf(s.State)
	cancel := wf.cancelKeyboard()
	d := s.Draft

	switch s.State {
	case StateProductSKU:
		return Reply{Text: "➕ *THÊM SẢN PHẨM MỚI*\n\n📝 Bước 1/3: Nhập mã SKU:\n\n💡 Ví dụ: `SP01`, `AO001`", Keyboard: cancel}, nil
	case StateProductName:
		return Reply{Text: fmt.Sprintf("✅ SKU: %s\n\n📝 Bước 2/3: Nhập tên sản phẩm:", render.Code(d.Product.SKU)), Keyboard: cancel}, nil
	case StateProductCost:
		return Reply{Text: fmt.Sprintf("✅ SKU: %s\n✅ Tên: %s\n\n📝 Bước 3/3: Nhập giá gốc:\n\n💡 Ví dụ: `150k`, `150000`",
			render.Code(d.Product.SKU), render.Escape(d.Product.Name)), Keyboard: cancel}, nil

	case StateProductEditSKU, StateProductDelete:
		products, err := e.svc.ListProducts(ctx)
		if err != nil {
			return Reply{}, err
		}
		return productPickPrompt(s.State, products), nil
	case StateProductNewCost:
		return Reply{Text: fmt.Sprintf("🏷 %s - %s\n💵 Giá hiện tại: %s\n\n📝 Nhập giá mới:",
			render.Code(d.Product.SKU), render.Escape(d.Product.Name), render.Money(d.Product.Cost)), Keyboard: cancel}, nil

	case StateSaleProduct:
		products, err := e.svc.ListProducts(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: "🛒 *GHI BÁN HÀNG*\n\n📦 Bước 1/5: Chọn sản phẩm:", Keyboard: render.ProductPicker(products)}, nil
	case StateSaleRevenue:
		return Reply{Text: fmt.Sprintf("✅ Sản phẩm: %s (%s)\n💵 Giá gốc: %s\n\n💰 Bước 2/5: Nhập *tổng thu* (tổng tiền khách trả):\n\n💡 Ví dụ: `250k`, `250000`",
			render.Escape(d.Sale.ProductName), render.Code(d.Sale.SKU), render.Money(d.Sale.UnitCost)), Keyboard: cancel}, nil
	case StateSaleQuantity:
		return Reply{Text: fmt.Sprintf("✅ Tổng thu: %s\n\n📦 Bước 3/5: Nhập số lượng:\n\n💡 Bấm ⏭ Bỏ qua nếu số lượng là 1", render.Money(*d.Sale.Revenue)),
			Keyboard: skipKeyboards[StateSaleQuantity]}, nil
	case StateSaleCustomer:
		return Reply{Text: fmt.Sprintf("✅ Số lượng: %d\n\n👤 Bước 4/5: Nhập tên người mua:", d.Sale.Quantity),
			Keyboard: skipKeyboards[StateSaleCustomer]}, nil
	case StateSaleNote:
		return Reply{Text: "📝 Bước 5/5: Nhập ghi chú:", Keyboard: skipKeyboards[StateSaleNote]}, nil

	case StateSaleEditRow, StateSaleDeleteRow, StateSaleDetailRow:
		sales, err := e.svc.RecentSales(ctx, service.RecentLimit)
		if err != nil {
			return Reply{}, err
		}
		return salePickPrompt(s.State, sales), nil
	case StateSaleEditField:
		return Reply{Text: render.SaleEditChoices(d.SaleEdit.Sale), Keyboard: render.EditFieldPicker()}, nil
	case StateSaleEditValue:
		return Reply{Text: fmt.Sprintf("✏️ *Sửa %s*\n\nGiá trị hiện tại: %s\n\n📝 Nhập giá trị mới:",
			render.FieldLabel(d.SaleEdit.Field), render.FieldValue(d.SaleEdit.Sale, d.SaleEdit.Field)), Keyboard: cancel}, nil

	case StateExpenseCategory:
		return Reply{Text: "💸 *GHI CHI TIÊU*\n\n📂 Bước 1/3: Chọn loại chi tiêu:", Keyboard: render.CategoryPicker()}, nil
	case StateExpenseAmount:
		c, _ := domain.LookupCategory(string(d.Expense.Category))
		return Reply{Text: fmt.Sprintf("%s Loại: *%s*\n\n💰 Bước 2/3: Nhập số tiền:\n\n💡 Ví dụ: `50k`, `50000`", c.Emoji, c.Label), Keyboard: cancel}, nil
	case StateExpenseDescription:
		return Reply{Text: fmt.Sprintf("✅ Số tiền: %s\n\n📝 Bước 3/3: Nhập mô tả:", render.Money(*d.Expense.Amount)), Keyboard: cancel}, nil
	case StateExpenseDeleteRow:
		expenses, err := e.svc.TodayExpenses(ctx)
		if err != nil {
			return Reply{}, err
		}
		return expensePickPrompt(expenses), nil

	case StateDebtCustomer:
		return Reply{Text: "📝 *GHI NỢ MỚI*\n\n👤 Bước 1/3: Nhập tên khách hàng nợ:", Keyboard: cancel}, nil
	case StateDebtAmount:
		text := fmt.Sprintf("👤 Khách hàng: *%s*\n", render.Escape(d.Debt.Customer))
		if d.Debt.Existing.IsPositive() {
			text += fmt.Sprintf("⚠️ Nợ cũ: %s\n", render.Money(d.Debt.Existing))
		}
		text += "\n💰 Bước 2/3: Nhập số tiền nợ:\n\n💡 Ví dụ: `500k`, `1.5m`"
		return Reply{Text: text, Keyboard: cancel}, nil
	case StateDebtNote:
		return Reply{Text: fmt.Sprintf("✅ Số tiền: %s\n\n📝 Bước 3/3: Nhập ghi chú (hoặc bỏ qua):", render.Money(*d.Debt.Amount)),
			Keyboard: skipKeyboards[StateDebtNote]}, nil
	case StateDebtPayRow:
		pending, err := e.svc.PendingDebts(ctx)
		if err != nil {
			return Reply{}, err
		}
		return debtPickPrompt(s.State, pending), nil
	case StateDebtDeleteRow:
		debts, err := e.svc.ListDebts(ctx)
		if err != nil {
			return Reply{}, err
		}
		return debtPickPrompt(s.State, debts), nil
	}

	return Reply{Text: render.MainMenuText, Keyboard: render.MainMenu()}, nil
}

// The pick prompts render from rows the caller already fetched, so a starter
// can show the list it just checked for emptiness.

func productPickPrompt(st session.State, products []domain.Product) Reply {
	cancel := cancelFor(st)
	if st == StateProductEditSKU {
		return Reply{Text: render.ProductPickList("✏️ *SỬA GIÁ SẢN PHẨM*", products, "📝 Nhập SKU cần sửa:", true), Keyboard: cancel}
	}
	return Reply{Text: render.ProductPickList("🗑 *XÓA SẢN PHẨM*", products, "⚠️ Nhập SKU cần xóa:", false), Keyboard: cancel}
}

func salePickPrompt(st session.State, sales []domain.Sale) Reply {
	cancel := cancelFor(st)
	switch st {
	case StateSaleEditRow:
		return Reply{Text: render.SalePickList("✏️ *SỬA ĐƠN HÀNG*", sales, "📝 Nhập số row cần sửa:"), Keyboard: cancel}
	case StateSaleDeleteRow:
		return Reply{Text: render.SalePickList("🗑 *XÓA GIAO DỊCH*", sales, "⚠️ Nhập số row cần xóa:"), Keyboard: cancel}
	}
	return Reply{Text: render.SalePickList("🔍 *XEM CHI TIẾT ĐƠN HÀNG*", sales, "📝 Nhập số row để xem chi tiết:"), Keyboard: cancel}
}

func debtPickPrompt(st session.State, debts []domain.Debt) Reply {
	cancel := cancelFor(st)
	if st == StateDebtPayRow {
		return Reply{Text: render.DebtPickList("✅ *TRẢ NỢ*", debts, "📝 Nhập số row đã trả:", false), Keyboard: cancel}
	}
	return Reply{Text: render.DebtPickList("🗑 *XÓA NỢ*", debts, "⚠️ Nhập số row cần xóa:", true), Keyboard: cancel}
}

func expensePickPrompt(expenses []domain.Expense) Reply {
	return Reply{Text: render.ExpensePickList(expenses), Keyboard: cancelFor(StateExpenseDeleteRow)}
}

func cancelFor(st session.State) render.Keyboard {
	wf, _ := workflowOf(st)
	return wf.cancelKeyboard()
}
