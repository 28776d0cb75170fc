package conversation

import (
	"strings"

	"cashflowbot/internal/callback"
)

// Update is the transport-neutral view of one Telegram update.
type Update struct {
	UserID    int64
	ChatID    int64
	FirstName string
	// Text is the message body; empty for button presses.
	Text string
	// Data is the callback payload of a button press.
	Data string
}

func (u Update) IsCallback() bool {
	return u.Data != ""
}

type InputKind int

const (
	InputUnknown InputKind = iota
	InputText
	InputCommand
	InputMenu
	InputProduct
	InputCategory
	InputEditField
	InputSkip
	InputCancel
	InputDebtCustomer
	InputDebtPayAll
)

var inputKindNames = map[InputKind]string{
	InputUnknown:      "unknown",
	InputText:         "text",
	InputCommand:      "command",
	InputMenu:         "menu",
	InputProduct:      "select_product",
	InputCategory:     "select_category",
	InputEditField:    "edit_field",
	InputSkip:         "skip",
	InputCancel:       "cancel",
	InputDebtCustomer: "debt_customer",
	InputDebtPayAll:   "debt_pay_all",
}

func (k InputKind) String() string {
	if name, ok := inputKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Input is an update decoded into the closed set of things the engine reacts to.
type Input struct {
	Kind InputKind
	// Text holds free text, or the payload of a parameterised button.
	Text string
	// Command is the lower-case command name without the slash.
	Command string
	Args    []string
	// Action is the fixed callback id for menu and cancel buttons.
	Action string
	Button bool
}

var menuActions = map[string]bool{
	callback.MenuMain: true, callback.MenuExpenses: true, callback.MenuSales: true,
	callback.MenuProducts: true, callback.MenuStats: true, callback.MenuDebts: true,
	callback.MenuHelp: true,

	callback.ProductList: true, callback.ProductAdd: true, callback.ProductEdit: true,
	callback.ProductDelete: true,

	callback.SaleAdd: true, callback.SaleHistory: true, callback.SaleDetail: true,
	callback.SaleEdit: true, callback.SaleProfit: true, callback.SaleDelete: true,

	callback.ExpenseAdd: true, callback.ExpenseToday: true, callback.ExpenseMonth: true,
	callback.ExpenseDelete: true,

	callback.StatsToday: true, callback.StatsMonth: true, callback.StatsProfit: true,

	callback.DebtAdd: true, callback.DebtList: true, callback.DebtByCustomer: true,
	callback.DebtPay: true, callback.DebtSummary: true, callback.DebtDelete: true,
}

// Decode classifies an update once, at the transport boundary.
func Decode(u Update) Input {
	if u.IsCallback() {
		return decodeCallback(u.Data)
	}

	text := strings.TrimSpace(u.Text)
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		name := strings.TrimPrefix(fields[0], "/")
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		rest := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
		return Input{
			Kind:    InputCommand,
			Command: strings.ToLower(name),
			Args:    fields[1:],
			Text:    rest,
		}
	}
	if text == "" {
		return Input{Kind: InputUnknown}
	}
	return Input{Kind: InputText, Text: text}
}

func decodeCallback(data string) Input {
	in := Input{Button: true, Action: data}
	switch {
	case callback.IsCancel(data):
		in.Kind = InputCancel
		return in
	case data == callback.SkipStep || data == callback.DebtSkipNote:
		in.Kind = InputSkip
		return in
	case menuActions[data]:
		in.Kind = InputMenu
		return in
	}

	prefix, payload, ok := callback.CutPrefix(data)
	if !ok {
		in.Kind = InputUnknown
		return in
	}
	in.Action = ""
	in.Text = payload
	switch prefix {
	case callback.PrefixProduct:
		in.Kind = InputProduct
	case callback.PrefixCategory:
		in.Kind = InputCategory
	case callback.PrefixEditField:
		in.Kind = InputEditField
	case callback.PrefixDebtCustomer:
		in.Kind = InputDebtCustomer
	case callback.PrefixDebtPayAll:
		in.Kind = InputDebtPayAll
	default:
		in.Kind = InputUnknown
	}
	return in
}
