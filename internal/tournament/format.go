package tournament

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency formats an amount in dollars with thousands grouping.
// Whole amounts are printed without cents.
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v == math.Trunc(v) {
		return printer.Sprintf("%s$%.0f", sign, v)
	}
	return printer.Sprintf("%s$%.2f", sign, v)
}

// FormatSignedCurrency is FormatCurrency with an explicit plus sign.
func FormatSignedCurrency(v float64) string {
	if v > 0 {
		return "+" + FormatCurrency(v)
	}
	return FormatCurrency(v)
}

// FormatPercent formats a percentage with one decimal.
func FormatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// FormatSignedPercent is FormatPercent with an explicit plus sign.
func FormatSignedPercent(v float64) string {
	if v > 0 {
		return "+" + FormatPercent(v)
	}
	return FormatPercent(v)
}

// FormatDate formats a date as DD.MM.YYYY.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02.01.2006")
}
