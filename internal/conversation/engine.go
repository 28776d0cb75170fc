// Package conversation runs the bot's dialogs as explicit state machines.
// Each update is decoded into an Input, looked up in the transition table for
// the session's current state, and answered with a Reply.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"cashflowbot/internal/access"
	"cashflowbot/internal/observability"
	"cashflowbot/internal/render"
	"cashflowbot/internal/service"
	"cashflowbot/internal/session"
	"cashflowbot/internal/store"
)

// Reply is what the transport sends back for one update.
type Reply struct {
	Text     string
	Keyboard render.Keyboard
	// Alert asks the transport to answer a button press with a popup instead
	// of editing the message.
	Alert bool
}

type step func(ctx context.Context, s *session.Session, in Input) (Reply, error)

type Engine struct {
	svc         *service.Service
	sessions    session.Store
	gate        access.Gate
	metrics     *observability.Metrics
	logger      *slog.Logger
	transitions map[session.State]map[InputKind]step
	entries     map[string]func(ctx context.Context, s *session.Session) (Reply, error)
}

func New(svc *service.Service, sessions session.Store, gate access.Gate, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		svc:      svc,
		sessions: sessions,
		gate:     gate,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "conversation")),
	}
	e.transitions = map[session.State]map[InputKind]step{
		StateProductSKU:     {InputText: e.productSKU},
		StateProductName:    {InputText: e.productName},
		StateProductCost:    {InputText: e.productCost},
		StateProductEditSKU: {InputText: e.productEditSKU},
		StateProductNewCost: {InputText: e.productNewCost},
		StateProductDelete:  {InputText: e.productDeleteSKU},

		StateSaleProduct:   {InputProduct: e.saleProduct},
		StateSaleRevenue:   {InputText: e.saleRevenue},
		StateSaleQuantity:  {InputText: e.saleQuantity, InputSkip: e.saleQuantity},
		StateSaleCustomer:  {InputText: e.saleCustomer, InputSkip: e.saleCustomer},
		StateSaleNote:      {InputText: e.saleNote, InputSkip: e.saleNote},
		StateSaleEditRow:   {InputText: e.saleEditRow},
		StateSaleEditField: {InputEditField: e.saleEditField},
		StateSaleEditValue: {InputText: e.saleEditValue},
		StateSaleDeleteRow: {InputText: e.saleDeleteRow},
		StateSaleDetailRow: {InputText: e.saleDetailRow},

		StateExpenseCategory:    {InputCategory: e.expenseCategory},
		StateExpenseAmount:      {InputText: e.expenseAmount},
		StateExpenseDescription: {InputText: e.expenseDescription},
		StateExpenseDeleteRow:   {InputText: e.expenseDeleteRow},

		StateDebtCustomer:  {InputText: e.debtCustomer},
		StateDebtAmount:    {InputText: e.debtAmount},
		StateDebtNote:      {InputText: e.debtNote, InputSkip: e.debtNote},
		StateDebtPayRow:    {InputText: e.debtPayRow},
		StateDebtDeleteRow: {InputText: e.debtDeleteRow},
	}
	e.entries = map[string]func(ctx context.Context, s *session.Session) (Reply, error){
		workflows[0].id:  e.startProductAdd,
		workflows[1].id:  e.startProductEdit,
		workflows[2].id:  e.startProductDelete,
		workflows[3].id:  e.startSale,
		workflows[4].id:  e.startSaleEdit,
		workflows[5].id:  e.startSaleDelete,
		workflows[6].id:  e.startSaleDetail,
		workflows[7].id:  e.startExpense,
		workflows[8].id:  e.startExpenseDelete,
		workflows[9].id:  e.startDebt,
		workflows[10].id: e.startDebtPay,
		workflows[11].id: e.startDebtDelete,
	}
	return e
}

func sessionKey(u Update) string {
	return strconv.FormatInt(u.UserID, 10)
}

// Handle processes one update to completion.
func (e *Engine) Handle(ctx context.Context, u Update) Reply {
	in := Decode(u)
	e.metrics.Update(in.Kind.String())

	if !e.gate.Allowed(u.UserID) {
		e.metrics.Denied()
		e.logger.Warn("update denied", slog.Int64("user_id", u.UserID))
		return Reply{Text: access.DeniedMessage, Alert: in.Button}
	}

	key := sessionKey(u)
	loaded, err := e.sessions.Load(ctx, key)
	if err != nil {
		e.metrics.StoreFault("session_load")
		e.logger.Error("load session", slog.String("key", key), slog.Any("error", err))
		return Reply{Text: render.GenericError, Keyboard: render.BackToMain()}
	}
	sess := &session.Session{}
	if loaded != nil {
		sess = loaded
	}

	reply, err := e.dispatch(ctx, sess, in, u)
	if err != nil {
		reply = e.failure(sess, reply, err)
	}

	if err := e.persist(ctx, key, loaded != nil, sess); err != nil {
		e.metrics.StoreFault("session_save")
		e.logger.Error("save session", slog.String("key", key), slog.Any("error", err))
	}
	return reply
}

func (e *Engine) persist(ctx context.Context, key string, existed bool, s *session.Session) error {
	if s.State == StateIdle {
		if !existed {
			return nil
		}
		return e.sessions.Clear(ctx, key)
	}
	return e.sessions.Save(ctx, key, s)
}

func (e *Engine) dispatch(ctx context.Context, s *session.Session, in Input, u Update) (Reply, error) {
	if in.Kind == InputCancel || (in.Kind == InputCommand && in.Command == "cancel") {
		return e.cancel(s, in), nil
	}
	if in.Kind == InputMenu {
		if start, ok := e.entries[in.Action]; ok {
			return start(ctx, s)
		}
	}

	if s.State != StateIdle {
		steps, ok := e.transitions[s.State]
		if !ok {
			e.logger.Warn("dropping session in unknown state", slog.String("state", string(s.State)))
			*s = session.Session{}
			return e.idle(ctx, in, u)
		}
		if next, ok := steps[in.Kind]; ok {
			return next(ctx, s, in)
		}
		return e.reprompt(ctx, s, "⚠️ Bạn đang trong một thao tác. Hoàn tất bước dưới đây hoặc bấm ❌ Hủy (/cancel).")
	}
	return e.idle(ctx, in, u)
}

func (e *Engine) idle(ctx context.Context, in Input, u Update) (Reply, error) {
	switch in.Kind {
	case InputCommand:
		return e.command(ctx, in, u)
	case InputMenu:
		return e.view(ctx, in.Action)
	case InputDebtCustomer:
		return e.customerDetail(ctx, in.Text)
	case InputDebtPayAll:
		return e.payAll(ctx, in.Text)
	case InputText:
		return Reply{Text: render.IdleText, Keyboard: render.MainMenu()}, nil
	case InputUnknown:
		if !in.Button {
			return Reply{Text: render.IdleText, Keyboard: render.MainMenu()}, nil
		}
	}
	return Reply{Text: render.StaleButton, Keyboard: render.BackToMain()}, nil
}

func (e *Engine) cancel(s *session.Session, in Input) Reply {
	a := cancelArea(in.Action)
	if wf, ok := workflowOf(s.State); ok {
		a = wf.area
	}
	*s = session.Session{}
	return Reply{Text: render.Cancelled + "\n\n📌 Chọn chức năng:", Keyboard: a.keyboard()}
}

// reprompt repeats the current state's prompt under a hint line.
func (e *Engine) reprompt(ctx context.Context, s *session.Session, hint string) (Reply, error) {
	r, err := e.prompt(ctx, s)
	if err != nil {
		return Reply{}, err
	}
	r.Text = hint + "\n\n" + r.Text
	return r, nil
}

// invalid keeps the state and asks for the field again.
func invalid(s *session.Session, text string) Reply {
	wf, _ := workflowOf(s.State)
	kb := wf.cancelKeyboard()
	if skip, ok := skipKeyboards[s.State]; ok {
		kb = skip
	}
	return Reply{Text: text, Keyboard: kb}
}

// advance moves to the next state and renders its prompt.
func (e *Engine) advance(ctx context.Context, s *session.Session, next session.State) (Reply, error) {
	s.State = next
	return e.prompt(ctx, s)
}

// commit ends the workflow before running its single ledger write, so a
// failed write has to be restarted from the entry button.
func (e *Engine) commit(s *session.Session, write func() (Reply, error)) (Reply, error) {
	wf, _ := workflowOf(s.State)
	*s = session.Session{}

	reply, err := write()
	switch {
	case err == nil:
		e.metrics.Commit(wf.id, "ok")
		if reply.Keyboard == nil {
			reply.Keyboard = wf.area.keyboard()
		}
		return reply, nil
	case store.IsFault(err):
		e.metrics.Commit(wf.id, "fault")
		return Reply{Keyboard: wf.area.keyboard()}, err
	default:
		e.metrics.Commit(wf.id, "rejected")
		return Reply{Text: rejection(err), Keyboard: wf.area.keyboard()}, nil
	}
}

func rejection(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "❌ Không tìm thấy dữ liệu, có thể đã bị xóa."
	case errors.Is(err, store.ErrDuplicateSKU):
		return "❌ SKU đã tồn tại."
	case errors.Is(err, service.ErrAlreadyPaid):
		return "ℹ️ Khoản nợ này đã được trả."
	case errors.Is(err, store.ErrInvalidRow):
		return "❌ Số row không hợp lệ!"
	}
	return "❌ Giá trị không hợp lệ!"
}

func (e *Engine) failure(s *session.Session, partial Reply, err error) Reply {
	var fault *store.Fault
	if errors.As(err, &fault) {
		e.metrics.StoreFault(fault.Op)
	}
	e.logger.Error("update failed", slog.String("state", string(s.State)), slog.Any("error", err))

	kb := partial.Keyboard
	if wf, ok := workflowOf(s.State); ok {
		kb = wf.cancelKeyboard()
	}
	if kb == nil {
		kb = render.BackToMain()
	}
	return Reply{Text: render.GenericError, Keyboard: kb}
}

// parseRow reads a positional row id typed by the user.
func parseRow(text string) (int, bool) {
	row, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || store.CheckRow(row) != nil {
		return 0, false
	}
	return row, true
}

const invalidRow = "❌ Số row không hợp lệ!\n\nVui lòng nhập lại:"

func rowNotFound(row int) string {
	return fmt.Sprintf("❌ Không tìm thấy row %d!\n\nVui lòng nhập lại:", row)
}
