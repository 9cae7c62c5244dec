package output

import (
	"strconv"

	"github.com/rpgo/actuarial-engine/pkg/decimal"
	shopspring "github.com/shopspring/decimal"
)

// FormatCurrency formats an amount as reais ("R$ 1.234,57").
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount float64) string { return decimal.NewMoney(amount).Format() }

// FormatAnnual formats a monthly amount paid payments times a year as a yearly total.
func FormatAnnual(monthly float64, payments int) string {
	return decimal.NewMoney(monthly).AnnualWithPayments(payments).Format()
}

// FormatPercentage formats a fraction as a percentage with 2 decimals (0.1235 -> "12.35%").
func FormatPercentage(fraction float64) string {
	return shopspring.NewFromFloat(fraction).Shift(2).StringFixed(2) + "%"
}

// fixed renders a float with a fixed number of decimals for CSV cells.
func fixed(v float64, places int32) string {
	return shopspring.NewFromFloat(v).StringFixed(places)
}

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }
