package tui

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatAmount renders a price with English digit grouping, dropping the
// fraction for whole amounts: 1500 -> "1,500", 99.5 -> "99.50".
func formatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}

// formatCount renders a count with digit grouping.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatRating renders a rating without trailing zeros: 4 -> "4", 3.9 -> "3.9".
func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func formatPrice(v float64) string {
	return currencyRs + " " + formatAmount(v)
}
