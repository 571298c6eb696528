package domain

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the single currency the store trades in.
const Currency = "USD"

// Money pairs an amount in minor units (cents) with its display string.
// Integer cents avoid floating-point rounding in totals.
type Money struct {
	Amount    int64  `json:"amount"`
	Formatted string `json:"formatted"`
}

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// NewMoney wraps an amount of cents as Money, formatted as US dollars
// with thousands grouping, e.g. 123456 -> "$1,234.56".
func NewMoney(cents int64) Money {
	abs := cents
	sign := ""
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	// Grouping comes from the locale-aware printer; the cents part is
	// plain zero-padded fmt so it never gets grouped or trimmed.
	return Money{
		Amount:    cents,
		Formatted: usdPrinter.Sprintf("%s$%d", sign, abs/100) + fmt.Sprintf(".%02d", abs%100),
	}
}
