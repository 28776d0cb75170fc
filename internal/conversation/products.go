package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/money"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store"
)

func (e *Engine) startProductAdd(ctx context.Context, s *session.Session) (Reply, error) {
	*s = session.Session{Draft: session.Draft{Product: &session.ProductDraft{}}}
	return e.advance(ctx, s, StateProductSKU)
}

func (e *Engine) startProductEdit(ctx context.Context, s *session.Session) (Reply, error) {
	return e.startProductPick(ctx, s, StateProductEditSKU)
}

func (e *Engine) startProductDelete(ctx context.Context, s *session.Session) (Reply, error) {
	return e.startProductPick(ctx, s, StateProductDelete)
}

func (e *Engine) startProductPick(ctx context.Context, s *session.Session, st session.State) (Reply, error) {
	products, err := e.svc.ListProducts(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		*s = session.Session{}
		return Reply{Text: "📭 Chưa có sản phẩm nào.", Keyboard: areaProducts.keyboard()}, nil
	}
	*s = session.Session{State: st, Draft: session.Draft{Product: &session.ProductDraft{}}}
	return productPickPrompt(st, products), nil
}

func (e *Engine) productSKU(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	sku := strings.ToUpper(strings.TrimSpace(in.Text))
	err := e.svc.CheckSKUAvailable(ctx, sku)
	switch {
	case errors.Is(err, store.ErrDuplicateSKU):
		return invalid(s, fmt.Sprintf("❌ SKU %s đã tồn tại!\n\nVui lòng nhập SKU khác:", render.Code(sku))), nil
	case errors.Is(err, service.ErrInvalidInput):
		return invalid(s, fmt.Sprintf("❌ SKU không hợp lệ (không chứa khoảng trắng, tối đa %d byte)!\n\nVui lòng nhập lại:", domain.MaxSKUBytes)), nil
	case err != nil:
		return Reply{}, err
	}
	s.Draft.Product.SKU = sku
	return e.advance(ctx, s, StateProductName)
}

func (e *Engine) productName(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	s.Draft.Product.Name = in.Text
	return e.advance(ctx, s, StateProductCost)
}

func (e *Engine) productCost(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	cost, ok := money.Parse(in.Text)
	if !ok {
		return invalid(s, "❌ Giá không hợp lệ!\n\nVui lòng nhập lại (ví dụ: 150k, 150000):"), nil
	}
	draft := *s.Draft.Product
	return e.commit(s, func() (Reply, error) {
		p, err := e.svc.AddProduct(ctx, draft.SKU, draft.Name, cost)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.ProductAdded(p)}, nil
	})
}

func (e *Engine) productEditSKU(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	p, err := e.svc.FindProduct(ctx, in.Text)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrInvalidInput):
		return invalid(s, fmt.Sprintf("❌ Không tìm thấy %s!\n\nVui lòng nhập SKU khác:", render.Code(in.Text))), nil
	case err != nil:
		return Reply{}, err
	}
	s.Draft.Product = &session.ProductDraft{SKU: p.SKU, Name: p.Name, Cost: p.Cost}
	return e.advance(ctx, s, StateProductNewCost)
}

func (e *Engine) productNewCost(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	cost, ok := money.Parse(in.Text)
	if !ok {
		return invalid(s, "❌ Giá không hợp lệ!\n\nVui lòng nhập lại:"), nil
	}
	sku := s.Draft.Product.SKU
	return e.commit(s, func() (Reply, error) {
		before, err := e.svc.UpdateProductCost(ctx, sku, cost)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.ProductCostUpdated(before, cost)}, nil
	})
}

func (e *Engine) productDeleteSKU(ctx context.Context, s *session.Session, in Input) (Reply, error) {
	_, err := e.svc.FindProduct(ctx, in.Text)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, service.ErrInvalidInput):
		return invalid(s, fmt.Sprintf("❌ Không tìm thấy %s!\n\nVui lòng nhập SKU khác:", render.Code(in.Text))), nil
	case err != nil:
		return Reply{}, err
	}
	sku := in.Text
	return e.commit(s, func() (Reply, error) {
		p, err := e.svc.DeleteProduct(ctx, sku)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: render.ProductDeleted(p)}, nil
	})
}
