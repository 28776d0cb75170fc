package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/money"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store"
)

func (e *Engine) startSale(ctx context.Context, s *session.Session) (Reply, error) {
	products, err := e.svc.ListProducts(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		*s = session.Session{}
		return Reply{Text: "📭 Chưa có sản phẩm nào!\n\n💡 Thêm sản phẩm trước ở menu 📦 Sản Phẩm.", Keyboard: areaSales.keyboard()}, nil
	}
	*s = session.Session{State: StateSaleProduct}
	return Reply{Text: "🛒 *GHI BÁN HÀNG*\n\n📦 Bước 1/5: Chọn sản phẩm:", Keyboard: render.ProductPicker(products)}, nil
}

func (e *Engine) startSaleEdit(ctx context.Context, s *session.Session) (Reply, error) {
	return e.startSalePick(ctx, s, StateSaleEditRow)
}

func (e *Engine) startSaleDelete(ctx context.Context, s *session.Session) (Reply, error) {
	return e.startSalePick(ctx, s, StateSaleDeleteRow)
}

func (e *Engine) startSaleDetail(ctx context.Context, s *session.Session) (Reply, error) {
	return e.startSalePick(ctx, s, StateSaleDetailRow)
}

func (e *Engine) startSalePick(ctx context.Context, s *session.Session, st session.State) (Reply, error) {
	sales, err := e.svc.RecentSales(ctx, service.RecentLimit)
	if err != nil {
		return Reply{}, err
	}
	if len(sales) == 0 {
		*s = session.Session{}
		return Reply{Text: "📭 Chưa có giao dịch nào.", Keyboard: areaSales.keyboard()}, nil
	}
	*s = session.Session{State: st}
	return salePickPrompt(st, sales), nil
}

func (e *Engine) saleProduct(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	p, err := e.svc.FindProduct(ctx, in.Text)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrInvalidInput):
		return e.reprompt(ctx, s, "❌ Sản phẩm không còn tồn tại!")
	case err != nil:
		return Reply{}, err
	}
	s.Draft.Sale = &session.SaleDraft{SKU: p.SKU, ProductName: p.Name, UnitCost: p.Cost}
	return e.advance(ctx, s, StateSaleRevenue)
}

func (e *Engine) saleRevenue(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	revenue, ok := money.Parse(in.Text)
	if !ok {
		return invalid(s, "❌ Số tiền không hợp lệ!\n\nVui lòng nhập lại (ví dụ: 250k, 250000):"), nil
	}
	s.Draft.Sale.Revenue = &revenue
	return e.advance(ctx, s, StateSaleQuantity)
}

func (e *Engine) saleQuantity(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	qty := 1
	if in.Kind == InputText {
		qty = money.ParseQuantity(in.Text)
	}
	s.Draft.Sale.Quantity = qty
	return e.advance(ctx, s, StateSaleCustomer)
}

func (e *Engine) saleCustomer(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	customer := ""
	if in.Kind == InputText {
		customer = in.Text
	}
	s.Draft.Sale.Customer = &customer
	return e.advance(ctx, s, StateSaleNote)
}

func (e *Engine) saleNote(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	note := ""
	if in.Kind == InputText {
		note = in.Text
	}
	d := *s.Draft.Sale
	input := service.SaleInput{SKU: d.SKU, Revenue: *d.Revenue, Quantity: d.Quantity, Note: note}
	if d.Customer != nil {
		input.Customer = *d.Customer
	}
	return e.commit(s, func() (Reply, error) {
		sale, product, err := e.svc.RecordSale(ctx, input)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.SaleRecorded(sale, product.Name)}, nil
	})
}

// lookupSale resolves a typed row id; ok is false when the user has to retry.
func (e *Engine) lookupSale(ctx context.Context, s *session.Session, text string) (*domain.Sale, Reply, bool, error) {
	row, valid := parseRow(text)
	if !valid {
		return nil, invalid(s, invalidRow), false, nil
	}
	sale, err := e.svc.GetSale(ctx, row)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidRow):
		return nil, invalid(s, rowNotFound(row)), false, nil
	case err != nil:
		return nil, Reply{}, false, err
	}
	return sale, Reply{}, true, nil
}

func (e *Engine) saleEditRow(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	sale, retry, ok, err := e.lookupSale(ctx, s, in.Text)
	if err != nil || !ok {
		return retry, err
	}
	s.Draft.SaleEdit = &session.SaleEditDraft{Row: sale.Row, Sale: *sale}
	return e.advance(ctx, s, StateSaleEditField)
}

func (e *Engine) saleEditField(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	field, ok := domain.ParseSaleField(in.Text)
	if !ok {
		return e.reprompt(ctx, s, "❌ Trường không hợp lệ!")
	}
	s.Draft.SaleEdit.Field = field
	return e.advance(ctx, s, StateSaleEditValue)
}

func (e *Engine) saleEditValue(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	d := *s.Draft.SaleEdit
	var update domain.SaleUpdate
	switch d.Field {
	case domain.SaleFieldQuantity:
		qty, err := strconv.Atoi(strings.TrimSpace(in.Text))
		if err != nil || qty <= 0 {
			return invalid(s, "❌ Giá trị không hợp lệ!\n\nVui lòng nhập số lượng lớn hơn 0:"), nil
		}
		update.Quantity = &qty
	case domain.SaleFieldRevenue:
		revenue, ok := money.Parse(in.Text)
		if !ok {
			return invalid(s, "❌ Giá trị không hợp lệ!\n\nVui lòng nhập lại (ví dụ: 250k):"), nil
		}
		update.Revenue = &revenue
	case domain.SaleFieldCustomer:
		update.Customer = &in.Text
	case domain.SaleFieldNote:
		update.Note = &in.Text
	default:
		*s = session.Session{}
		return Reply{Text: render.StaleButton, Keyboard: areaSales.keyboard()}, nil
	}

	return e.commit(s, func() (Reply, error) {
		if err := e.svc.EditSale(ctx, d.Row, update); err != nil {
			return Reply{}, err
		}
		edited := d.Sale
		applyUpdate(&edited, update)
		return Reply{Text: "✅ *ĐÃ CẬP NHẬT!*\n\n" + render.FieldLabel(d.Field) + ": " + render.FieldValue(edited, d.Field) +
			"\n\n💡 Lợi nhuận đã lưu không thay đổi."}, nil
	})
}

func applyUpdate(sale *domain.Sale, u domain.SaleUpdate) {
	if u.Quantity != nil {
		sale.Quantity = *u.Quantity
	}
	if u.Revenue != nil {
		sale.Revenue = *u.Revenue
	}
	if u.Customer != nil {
		sale.Customer = *u.Customer
	}
	if u.Note != nil {
		sale.Note = *u.Note
	}
}

func (e *Engine) saleDeleteRow(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	sale, retry, ok, err := e.lookupSale(ctx, s, in.Text)
	if err != nil || !ok {
		return retry, err
	}
	row := sale.Row
	return e.commit(s, func() (Reply, error) {
		deleted, err := e.svc.DeleteSale(ctx, row)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: "✅ *ĐÃ XÓA!*\n\n🗑 Row " + strconv.Itoa(row) + ": " + render.Code(deleted.SKU) + " - " + render.Money(deleted.Revenue)}, nil
	})
}

func (e *Engine) saleDetailRow(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	sale, retry, ok, err := e.lookupSale(ctx, s, in.Text)
	if err != nil || !ok {
		return retry, err
	}
	name := e.svc.ProductName(ctx, sale.SKU)
	*s = session.Session{}
	return Reply{Text: render.SaleDetail(*sale, name), Keyboard: areaSales.keyboard()}, nil
}
