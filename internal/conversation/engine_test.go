package conversation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflowbot/internal/access"
	"cashflowbot/internal/callback"
	"cashflowbot/internal/domain"
	"cashflowbot/internal/observability"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store/memory"
)

const owner int64 = 42

type harness struct {
	t        *testing.T
	engine   *Engine
	repo     *memory.Store
	sessions *session.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := memory.New()
	clock := func() time.Time { return time.Date(2025, time.March, 5, 10, 0, 0, 0, domain.LocalZone) }
	sessions := session.NewMemoryStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := New(service.New(repo, clock), sessions, access.New(owner), observability.NewMetrics(), logger)
	return &harness{t: t, engine: engine, repo: repo, sessions: sessions}
}

func (h *harness) send(text string) Reply {
	return h.engine.Handle(context.Background(), Update{UserID: owner, ChatID: owner, FirstName: "Lan", Text: text})
}

func (h *harness) press(data string) Reply {
	return h.engine.Handle(context.Background(), Update{UserID: owner, ChatID: owner, Data: data})
}

func (h *harness) session() *session.Session {
	h.t.Helper()
	s, err := h.sessions.Load(context.Background(), "42")
	require.NoError(h.t, err)
	return s
}

func TestSaleWorkflowRecordsProfit(t *testing.T) {
	h := newHarness(t)

	r := h.send("/themsp SP01 Áo thun 100k")
	require.Contains(t, r.Text, "ĐÃ THÊM SẢN PHẨM")

	r = h.press(callback.SaleAdd)
	require.Contains(t, r.Text, "Bước 1/5")
	assert.Equal(t, callback.Product("SP01"), r.Keyboard[0][0].Data)

	r = h.press(callback.Product("SP01"))
	require.Contains(t, r.Text, "Bước 2/5")
	r = h.send("250k")
	require.Contains(t, r.Text, "Bước 3/5")
	r = h.send("2")
	require.Contains(t, r.Text, "Bước 4/5")
	r = h.press(callback.SkipStep)
	require.Contains(t, r.Text, "Bước 5/5")
	r = h.send("giao nhanh")
	assert.Contains(t, r.Text, "ĐÃ GHI BÁN HÀNG")
	assert.Contains(t, r.Text, "Lợi nhuận: 50.000đ")
	assert.Nil(t, h.session())

	sales, err := h.repo.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 2, sales[0].Quantity)
	assert.Equal(t, "", sales[0].Customer)
	assert.Equal(t, "giao nhanh", sales[0].Note)
	assert.Equal(t, "05/03/2025", sales[0].Date)

	r = h.press(callback.StatsToday)
	assert.Contains(t, r.Text, "Lãi: 50.000đ")
}

func TestInvalidRevenueKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.send("/themsp SP01 Áo thun 100k")
	h.press(callback.SaleAdd)
	h.press(callback.Product("SP01"))

	r := h.send("abc")
	assert.Contains(t, r.Text, "Số tiền không hợp lệ")
	assert.Equal(t, callback.CancelSales, r.Keyboard[0][0].Data)

	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, StateSaleRevenue, s.State)
	require.NotNil(t, s.Draft.Sale)
	assert.Equal(t, "SP01", s.Draft.Sale.SKU)
}

func TestCancelWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.press(callback.ExpenseAdd)
	h.press(callback.Category(domain.CategoryFood))
	h.send("50k")

	r := h.press(callback.CancelExpense)
	assert.Contains(t, r.Text, render.Cancelled)
	assert.Equal(t, render.ExpenseMenu(), r.Keyboard)
	assert.Nil(t, h.session())

	expenses, err := h.repo.ListExpenses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestCancelCommandUsesWorkflowArea(t *testing.T) {
	h := newHarness(t)
	h.press(callback.DebtAdd)

	r := h.send("/cancel")
	assert.Equal(t, render.DebtMenu(), r.Keyboard)
	assert.Nil(t, h.session())
}

func TestReadFaultMidWorkflowKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.press(callback.DebtAdd)

	h.repo.FailWith("ListDebts", errors.New("quota exceeded"))
	r := h.send("Lan")
	assert.Equal(t, render.GenericError, r.Text)
	assert.Equal(t, callback.CancelDebt, r.Keyboard[0][0].Data)
	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, StateDebtCustomer, s.State)

	h.repo.FailWith("ListDebts", nil)
	r = h.send("Lan")
	require.Contains(t, r.Text, "Bước 2/3")
	r = h.send("500k")
	require.Contains(t, r.Text, "Bước 3/3")
	r = h.press(callback.DebtSkipNote)
	assert.Contains(t, r.Text, "ĐÃ GHI NỢ")
	assert.Contains(t, r.Text, "500.000đ")
	assert.Nil(t, h.session())
}

func TestWriteFaultEndsWorkflow(t *testing.T) {
	h := newHarness(t)
	h.press(callback.ExpenseAdd)
	h.press(callback.Category(domain.CategoryFood))
	h.send("50k")

	h.repo.FailWith("AppendExpense", errors.New("timeout"))
	r := h.send("Ăn trưa")
	assert.Equal(t, render.GenericError, r.Text)
	assert.Equal(t, render.ExpenseMenu(), r.Keyboard)
	assert.Nil(t, h.session())
}

func TestDeniedUserGetsAlert(t *testing.T) {
	h := newHarness(t)
	r := h.engine.Handle(context.Background(), Update{UserID: 7, ChatID: 7, Data: callback.ExpenseAdd})
	assert.Equal(t, access.DeniedMessage, r.Text)
	assert.True(t, r.Alert)
	assert.Equal(t, 0, h.sessions.Len())

	r = h.engine.Handle(context.Background(), Update{UserID: 7, ChatID: 7, Text: "/start"})
	assert.False(t, r.Alert)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	r := h.send("/foo")
	assert.Equal(t, render.UnknownCommand, r.Text)

	r = h.send("xin chào")
	assert.Equal(t, render.IdleText, r.Text)
}

func TestStartingWorkflowReplacesActiveOne(t *testing.T) {
	h := newHarness(t)
	h.press(callback.ProductAdd)
	h.send("SP09")

	r := h.press(callback.ExpenseAdd)
	assert.Contains(t, r.Text, "Bước 1/3")
	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, StateExpenseCategory, s.State)
	assert.Nil(t, s.Draft.Product)
}

func TestStrayInputRepromptsCurrentStep(t *testing.T) {
	h := newHarness(t)
	h.press(callback.ExpenseAdd)

	r := h.send("50k")
	assert.Contains(t, r.Text, "Bạn đang trong một thao tác")
	assert.Contains(t, r.Text, "Chọn loại chi tiêu")
	assert.Equal(t, StateExpenseCategory, h.session().State)
}

func TestDeleteExpenseShiftsRows(t *testing.T) {
	h := newHarness(t)
	h.send("/chi 10k một")
	h.send("/chi 20k hai")
	h.send("/chi 30k ba")

	r := h.press(callback.ExpenseDelete)
	require.Contains(t, r.Text, "Row 4")

	r = h.send("1")
	assert.Contains(t, r.Text, "Số row không hợp lệ")
	r = h.send("9")
	assert.Contains(t, r.Text, "Không tìm thấy row 9")
	assert.Equal(t, StateExpenseDeleteRow, h.session().State)

	r = h.send("2")
	assert.Contains(t, r.Text, "ĐÃ XÓA")
	assert.Nil(t, h.session())

	expenses, err := h.repo.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, 2, expenses[0].Row)
	assert.Equal(t, "hai", expenses[0].Description)
	assert.Equal(t, 3, expenses[1].Row)
}

func TestExpenseCommandCategory(t *testing.T) {
	h := newHarness(t)
	h.send("/chi 50k Ăn trưa Food")
	h.send("/chi 30k cafe")

	expenses, err := h.repo.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Food", expenses[0].Category)
	assert.Equal(t, "Ăn trưa", expenses[0].Description)
	assert.Equal(t, "Living", expenses[1].Category)
	assert.Equal(t, "cafe", expenses[1].Description)

	r := h.send("/chi 15k Food")
	assert.Contains(t, r.Text, "15.000đ")
	r = h.send("/chi abc cafe")
	assert.Contains(t, r.Text, "Số tiền không hợp lệ")

	expenses, err = h.repo.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 3)
	assert.Equal(t, "Food", expenses[2].Description)
	assert.Equal(t, "Living", expenses[2].Category)
}

func TestEditSaleKeepsStoredProfit(t *testing.T) {
	h := newHarness(t)
	h.send("/themsp SP01 Áo thun 100k")
	h.send("/ban SP01 250k 2 Chị Hoa")

	h.press(callback.SaleEdit)
	r := h.send("2")
	require.Contains(t, r.Text, "SỬA ĐƠN HÀNG - Row 2")
	r = h.press(callback.EditField(domain.SaleFieldQuantity))
	require.Contains(t, r.Text, "Sửa Số lượng")
	r = h.send("3")
	assert.Contains(t, r.Text, "ĐÃ CẬP NHẬT")

	sale, err := h.repo.GetSaleByRow(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, sale.Quantity)
	assert.Equal(t, "Chị Hoa", sale.Customer)
	assert.True(t, sale.Profit.Equal(decimal.NewFromInt(50000)))
}

func TestPayAllByTruncatedName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, amount := range []int64{100000, 200000} {
		_, err := h.repo.AppendDebt(ctx, domain.Debt{
			Customer: "Nguyen Thi Minh Khai", Amount: decimal.NewFromInt(amount),
			Status: domain.DebtPending, Date: "01/03/2025",
		})
		require.NoError(t, err)
	}

	r := h.press(callback.DebtCustomer("Nguyen Thi Minh Khai"))
	assert.Contains(t, r.Text, "300.000đ")
	assert.Equal(t, callback.DebtPayAll("Nguyen Thi Minh Khai"), r.Keyboard[0][0].Data)

	r = h.press(callback.DebtPayAll("Nguyen Thi Minh Khai"))
	assert.Contains(t, r.Text, "Đã đánh dấu 2 khoản")

	debts, err := h.repo.ListDebts(ctx)
	require.NoError(t, err)
	for _, d := range debts {
		assert.False(t, d.Pending())
	}

	r = h.press(callback.DebtPayAll("Nguyen Thi Minh Khai"))
	assert.Contains(t, r.Text, "không có nợ pending")
}

func TestPayDebtRejectsPaidRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.repo.AppendDebt(ctx, domain.Debt{Customer: "Lan", Amount: decimal.NewFromInt(1000), Status: domain.DebtPaid, Date: "01/03/2025"})
	require.NoError(t, err)
	_, err = h.repo.AppendDebt(ctx, domain.Debt{Customer: "Minh", Amount: decimal.NewFromInt(2000), Status: domain.DebtPending, Date: "01/03/2025"})
	require.NoError(t, err)

	h.press(callback.DebtPay)
	r := h.send("2")
	assert.Contains(t, r.Text, "đã được trả rồi")
	r = h.send("3")
	assert.Contains(t, r.Text, "ĐÃ TRẢ NỢ")

	debt, err := h.repo.GetDebtByRow(ctx, 3)
	require.NoError(t, err)
	assert.False(t, debt.Pending())
}

func TestEmptyListDoesNotStartWorkflow(t *testing.T) {
	h := newHarness(t)
	r := h.press(callback.SaleAdd)
	assert.Contains(t, r.Text, "Chưa có sản phẩm")
	assert.Nil(t, h.session())
}

func TestDuplicateSKUKeepsAskingForSKU(t *testing.T) {
	h := newHarness(t)
	h.send("/themsp SP01 Áo thun 100k")

	h.press(callback.ProductAdd)
	r := h.send("sp01")
	assert.Contains(t, r.Text, "đã tồn tại")
	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, StateProductSKU, s.State)
	assert.Empty(t, s.Draft.Product.SKU)

	r = h.send("SP02")
	assert.Contains(t, r.Text, "Bước 2/3")
	assert.Equal(t, StateProductName, h.session().State)
}

func TestEditProductCost(t *testing.T) {
	h := newHarness(t)
	h.send("/themsp SP01 Áo thun 100k")

	r := h.press(callback.ProductEdit)
	require.Contains(t, r.Text, "SP01")

	r = h.send("SP99")
	assert.Contains(t, r.Text, "Không tìm thấy")
	assert.Equal(t, StateProductEditSKU, h.session().State)

	r = h.send("sp01")
	assert.Contains(t, r.Text, "Giá hiện tại: 100.000đ")
	assert.Equal(t, StateProductNewCost, h.session().State)

	r = h.send("120k")
	assert.Contains(t, r.Text, "ĐÃ CẬP NHẬT")
	assert.Nil(t, h.session())

	p, err := h.repo.GetProductBySKU(context.Background(), "SP01")
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(120000)))
}

func TestDeleteProductShiftsRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.send("/themsp SP01 Áo thun 100k")
	h.send("/themsp SP02 Quần 200k")
	h.send("/themsp SP03 Mũ 50k")

	p, err := h.repo.GetProductBySKU(ctx, "SP03")
	require.NoError(t, err)
	require.Equal(t, 4, p.Row)

	h.press(callback.ProductDelete)
	r := h.send("sp02")
	assert.Contains(t, r.Text, "ĐÃ XÓA SẢN PHẨM")
	assert.Contains(t, r.Text, "`SP02`")
	assert.Nil(t, h.session())

	p, err = h.repo.GetProductBySKU(ctx, "SP03")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Row)
	_, err = h.repo.GetProductBySKU(ctx, "SP02")
	assert.Error(t, err)
}

func TestSaleDetailFallsBackToSKU(t *testing.T) {
	h := newHarness(t)
	h.send("/themsp SP01 Áo thun 100k")
	h.send("/ban SP01 250k 1 Chị Hoa")
	r := h.send("/xoasp SP01")
	require.Contains(t, r.Text, "ĐÃ XÓA SẢN PHẨM")

	h.press(callback.SaleDetail)
	r = h.send("2")
	assert.Contains(t, r.Text, "CHI TIẾT ĐƠN HÀNG - Row 2")
	assert.Contains(t, r.Text, "SP01 (`SP01`)")
	assert.Contains(t, r.Text, "Chị Hoa")
	assert.Nil(t, h.session())
}

func TestDeleteDebtShiftsRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, customer := range []string{"Lan", "Minh", "Hoa"} {
		_, err := h.repo.AppendDebt(ctx, domain.Debt{
			Customer: customer, Amount: decimal.NewFromInt(100000),
			Status: domain.DebtPending, Date: "01/03/2025",
		})
		require.NoError(t, err)
	}

	r := h.press(callback.DebtDelete)
	require.Contains(t, r.Text, "XÓA NỢ")
	assert.Equal(t, StateDebtDeleteRow, h.session().State)

	r = h.send("3")
	assert.Contains(t, r.Text, "ĐÃ XÓA")
	assert.Contains(t, r.Text, "Minh")
	assert.Nil(t, h.session())

	debts, err := h.repo.ListDebts(ctx)
	require.NoError(t, err)
	require.Len(t, debts, 2)
	assert.Equal(t, 3, debts[1].Row)
	assert.Equal(t, "Hoa", debts[1].Customer)
}

type countingRepo struct {
	*memory.Store
	listDebts int
}

func (c *countingRepo) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	c.listDebts++
	return c.Store.ListDebts(ctx)
}

func TestPickWorkflowReadsTableOnce(t *testing.T) {
	repo := &countingRepo{Store: memory.New()}
	_, err := repo.AppendDebt(context.Background(), domain.Debt{
		Customer: "Lan", Amount: decimal.NewFromInt(1000), Status: domain.DebtPending, Date: "01/03/2025",
	})
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2025, time.March, 5, 10, 0, 0, 0, domain.LocalZone) }
	sessions := session.NewMemoryStore(time.Hour)
	engine := New(service.New(repo, clock), sessions, access.New(owner), observability.NewMetrics(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := engine.Handle(context.Background(), Update{UserID: owner, ChatID: owner, Data: callback.DebtPay})
	assert.Contains(t, r.Text, "Lan")
	assert.Equal(t, 1, repo.listDebts)
}

func TestPickWorkflowReadFaultKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.press(callback.ExpenseAdd)

	h.repo.FailWith("ListProducts", errors.New("quota exceeded"))
	r := h.press(callback.ProductEdit)
	assert.Equal(t, render.GenericError, r.Text)
	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, StateExpenseCategory, s.State)
}
