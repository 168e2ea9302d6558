package http

import (
	"strconv"

	"github.com/Rhymond/go-money"
)

// formatAmount renders minor units for display, e.g. 12500 USD as "$125.00".
// Codes go-money does not know fall back to the raw minor-unit value.
func formatAmount(amount int64, currency string) string {
	if money.GetCurrency(currency) == nil {
		return strconv.FormatInt(amount, 10) + " " + currency
	}
	return money.New(amount, currency).Display()
}

func formatOptionalAmount(amount *int64, currency string) *string {
	if amount == nil {
		return nil
	}
	s := formatAmount(*amount, currency)
	return &s
}
