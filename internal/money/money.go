// Package money parses the shorthand amounts users type ("50k", "1.5m",
// "50.000") and formats amounts the way the ledger displays them.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)

	stripper = strings.NewReplacer("đ", "", "₫", "", "d", "", " ", "", "\t", "", " ", "")
	printer  = message.NewPrinter(language.Vietnamese)
)

// Parse returns the amount written in text and false when text is not a
// positive amount. Without a suffix "." and "," are grouping separators; with
// a suffix a single separator followed by at most two digits is a decimal point.
func Parse(text string) (decimal.Decimal, bool) {
	s := stripper.Replace(strings.ToLower(strings.TrimSpace(text)))
	if s == "" {
		return decimal.Zero, false
	}

	multiplier := decimal.NewFromInt(1)
	suffixed := true
	switch {
	case strings.HasSuffix(s, "tr"):
		multiplier, s = million, strings.TrimSuffix(s, "tr")
	case strings.HasSuffix(s, "m"):
		multiplier, s = million, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		multiplier, s = thousand, strings.TrimSuffix(s, "k")
	default:
		suffixed = false
	}

	var numeral string
	if suffixed {
		numeral = fractional(s)
	} else {
		numeral = ungroup(s)
	}
	if !isNumeral(numeral) {
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(numeral)
	if err != nil {
		return decimal.Zero, false
	}
	value = value.Mul(multiplier)
	if !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}

func ungroup(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

func fractional(s string) string {
	idx := strings.LastIndexAny(s, ".,")
	if idx < 0 {
		return s
	}
	whole, frac := s[:idx], s[idx+1:]
	if strings.ContainsAny(whole, ".,") || len(frac) == 0 || len(frac) > 2 {
		return ungroup(s)
	}
	return whole + "." + frac
}

func isNumeral(s string) bool {
	if s == "" || s == "." {
		return false
	}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}

// ParseEntry splits "50k Ăn trưa" into its leading amount and the remaining text.
func ParseEntry(text string) (decimal.Decimal, string, bool) {
	fields := strings.SplitN(strings.TrimSpace(text), " ", 2)
	amount, ok := Parse(fields[0])
	if !ok {
		return decimal.Zero, "", false
	}
	description := ""
	if len(fields) == 2 {
		description = strings.TrimSpace(fields[1])
	}
	return amount, description, true
}

// ParseQuantity is lenient: anything that is not a positive integer counts as one.
func ParseQuantity(text string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || qty <= 0 {
		return 1
	}
	return qty
}

// Format renders an amount as "1.500.000đ", rounded to whole units.
func Format(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	if rounded.IsNegative() {
		return "-" + printer.Sprintf("%d", rounded.Abs().IntPart()) + "đ"
	}
	return printer.Sprintf("%d", rounded.IntPart()) + "đ"
}
