package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cashflowbot/internal/callback"
	"cashflowbot/internal/domain"
	"cashflowbot/internal/money"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
	"cashflowbot/internal/store"
)

const (
	usageAddProduct = "❌ Cách dùng: `/themsp SKU Tên sản phẩm Giá_gốc`\n\nVí dụ: `/themsp SP01 Áo thun 150k`"
	usageEditCost   = "❌ Cách dùng: `/suasp SKU Giá_mới`\n\nVí dụ: `/suasp SP01 160k`"
	usageDelProduct = "❌ Cách dùng: `/xoasp SKU`"
	usageSale       = "❌ Cách dùng: `/ban SKU Tổng_thu [Số_lượng] [Người_mua]`\n\nVí dụ: `/ban SP01 250k 2 Lan`"
	usageDelSale    = "❌ Cách dùng: `/xoabh Row`"
	usageExpense    = "❌ Cách dùng: `/chi Số_tiền Mô_tả [Loại]`\n\nVí dụ: `/chi 50k Ăn trưa Food`"
	usageDelExpense = "❌ Cách dùng: `/xoachi Row`"
)

// command runs the one-line slash commands available while idle.
func (e *Engine) command(ctx context.Context, in Input, u Update) (Reply, error) {
	args := in.Args
	switch in.Command {
	case "start", "menu":
		return Reply{Text: render.Welcome(u.FirstName), Keyboard: render.MainMenu()}, nil
	case "help":
		return Reply{Text: render.Help, Keyboard: render.BackToMain()}, nil
	case "sanpham":
		return e.view(ctx, callback.ProductList)
	case "themsp":
		return e.addProductCommand(ctx, args)
	case "suasp":
		return e.editCostCommand(ctx, args)
	case "xoasp":
		return e.deleteProductCommand(ctx, args)
	case "ban":
		return e.saleCommand(ctx, args)
	case "dsbh":
		return e.view(ctx, callback.SaleHistory)
	case "laithang":
		return e.view(ctx, callback.SaleProfit)
	case "xoabh":
		return e.deleteRowCommand(args, usageDelSale, func(row int) (string, error) {
			sale, err := e.svc.DeleteSale(ctx, row)
			return fmt.Sprintf("✅ Đã xóa row %d: %s - %s", row, render.Code(sale.SKU), render.Money(sale.Revenue)), err
		})
	case "chi":
		return e.expenseCommand(ctx, args)
	case "chitieu":
		return e.view(ctx, callback.ExpenseToday)
	case "homnay":
		return e.view(ctx, callback.StatsToday)
	case "thang":
		return e.view(ctx, callback.StatsMonth)
	case "xoachi":
		return e.deleteRowCommand(args, usageDelExpense, func(row int) (string, error) {
			expense, err := e.svc.DeleteExpense(ctx, row)
			return fmt.Sprintf("✅ Đã xóa row %d: %s - %s", row, render.Money(expense.Amount), render.Escape(expense.Description)), err
		})
	case "no":
		return areaDebts.menu(), nil
	}
	return Reply{Text: render.UnknownCommand, Keyboard: render.BackToMain()}, nil
}

func usage(text string) (Reply, error) {
	return Reply{Text: text, Keyboard: render.BackToMain()}, nil
}

// rejected turns a business error of a one-line command into a message;
// backend faults pass through.
func rejected(err error) (Reply, error) {
	if store.IsFault(err) {
		return Reply{Keyboard: render.BackToMain()}, err
	}
	return Reply{Text: rejection(err), Keyboard: render.BackToMain()}, nil
}

func (e *Engine) addProductCommand(ctx context.Context, args []string) (Reply, error) {
	if len(args) < 3 {
		return usage(usageAddProduct)
	}
	cost, ok := money.Parse(args[len(args)-1])
	if !ok {
		return usage("❌ Giá không hợp lệ!\n\n" + usageAddProduct)
	}
	name := strings.Join(args[1:len(args)-1], " ")
	p, err := e.svc.AddProduct(ctx, args[0], name, cost)
	if errors.Is(err, store.ErrDuplicateSKU) {
		return usage(fmt.Sprintf("❌ SKU %s đã tồn tại!", render.Code(strings.ToUpper(args[0]))))
	}
	if err != nil {
		return rejected(err)
	}
	e.metrics.Commit("command_themsp", "ok")
	return Reply{Text: render.ProductAdded(p), Keyboard: render.BackToMain()}, nil
}

func (e *Engine) editCostCommand(ctx context.Context, args []string) (Reply, error) {
	if len(args) != 2 {
		return usage(usageEditCost)
	}
	cost, ok := money.Parse(args[1])
	if !ok {
		return usage("❌ Giá không hợp lệ!\n\n" + usageEditCost)
	}
	before, err := e.svc.UpdateProductCost(ctx, args[0], cost)
	if errors.Is(err, store.ErrNotFound) {
		return usage(fmt.Sprintf("❌ Không tìm thấy %s!", render.Code(args[0])))
	}
	if err != nil {
		return rejected(err)
	}
	e.metrics.Commit("command_suasp", "ok")
	return Reply{Text: render.ProductCostUpdated(before, cost), Keyboard: render.BackToMain()}, nil
}

func (e *Engine) deleteProductCommand(ctx context.Context, args []string) (Reply, error) {
	if len(args) != 1 {
		return usage(usageDelProduct)
	}
	p, err := e.svc.DeleteProduct(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return usage(fmt.Sprintf("❌ Không tìm thấy %s!", render.Code(args[0])))
	}
	if err != nil {
		return rejected(err)
	}
	e.metrics.Commit("command_xoasp", "ok")
	return Reply{Text: render.ProductDeleted(p), Keyboard: render.BackToMain()}, nil
}

// saleCommand parses "/ban SKU total [qty] [customer...]". A third argument
// that is not an integer starts the customer name.
func (e *Engine) saleCommand(ctx context.Context, args []string) (Reply, error) {
	if len(args) < 2 {
		return usage(usageSale)
	}
	revenue, ok := money.Parse(args[1])
	if !ok {
		return usage("❌ Số tiền không hợp lệ!\n\n" + usageSale)
	}
	in := service.SaleInput{SKU: args[0], Revenue: revenue, Quantity: 1}
	rest := args[2:]
	if len(rest) > 0 {
		if qty, err := strconv.Atoi(rest[0]); err == nil {
			in.Quantity = qty
			rest = rest[1:]
		}
	}
	in.Customer = strings.Join(rest, " ")

	sale, _, err := e.svc.RecordSale(ctx, in)
	if errors.Is(err, store.ErrNotFound) {
		return usage(fmt.Sprintf("❌ Không tìm thấy sản phẩm %s!\n\n💡 Thêm bằng `/themsp` trước.", render.Code(args[0])))
	}
	if err != nil {
		return rejected(err)
	}
	e.metrics.Commit("command_ban", "ok")
	return Reply{Text: render.SaleShort(sale), Keyboard: render.BackToMain()}, nil
}

// expenseCommand parses "/chi amount description [category]"; the last word
// is taken as the category only when it names one.
func (e *Engine) expenseCommand(ctx context.Context, args []string) (Reply, error) {
	if len(args) < 2 {
		return usage(usageExpense)
	}
	amount, description, ok := money.ParseEntry(strings.Join(args, " "))
	if !ok {
		return usage("❌ Số tiền không hợp lệ!\n\n" + usageExpense)
	}
	category := domain.CategoryLiving
	if i := strings.LastIndexByte(description, ' '); i > 0 {
		if c, ok := domain.LookupCategory(description[i+1:]); ok {
			category = c.Name
			description = strings.TrimSpace(description[:i])
		}
	}

	expense, err := e.svc.RecordExpense(ctx, amount, description, string(category))
	if err != nil {
		return rejected(err)
	}
	e.metrics.Commit("command_chi", "ok")
	return Reply{Text: render.ExpenseShort(expense), Keyboard: render.BackToMain()}, nil
}

func (e *Engine) deleteRowCommand(args []string, usageText string, del func(row int) (string, error)) (Reply, error) {
	if len(args) != 1 {
		return usage(usageText)
	}
	row, ok := parseRow(args[0])
	if !ok {
		return usage("❌ Số row không hợp lệ!\n\n" + usageText)
	}
	text, err := del(row)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidRow) {
		return usage(fmt.Sprintf("❌ Không tìm thấy row %d!", row))
	}
	if err != nil {
		return rejected(err)
	}
	return Reply{Text: text, Keyboard: render.BackToMain()}, nil
}
