// Package render turns ledger data into the Vietnamese chat messages and
// inline keyboards the bot sends. Messages use Telegram's legacy Markdown.
package render

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"cashflowbot/internal/money"
)

const divider = "━━━━━━━━━━━━━━━━━"

// Escape makes user supplied text safe outside Markdown entities.
func Escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// Code wraps s in a code span; backticks inside s cannot be escaped there.
func Code(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}

func Money(d decimal.Decimal) string {
	return money.Format(d)
}

func MonthName(m time.Month) string {
	return fmt.Sprintf("Tháng %d", int(m))
}

// Trend picks the up or down indicator for a profit or balance.
func Trend(d decimal.Decimal) string {
	if d.IsNegative() {
		return "📉"
	}
	return "📈"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return Escape(s)
}

func monthTitle(month, year int) string {
	return fmt.Sprintf("%s/%d", strings.ToUpper(MonthName(time.Month(month))), year)
}
