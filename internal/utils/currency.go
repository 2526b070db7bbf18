package utils

import (
	"fmt"
	"math"
)

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var SupportedCurrencies = map[string]Currency{
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound"},
	"CHF": {Code: "CHF", Symbol: "CHF", Name: "Swiss Franc"},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
}

func ValidateCurrencyCode(code string) bool {
	_, exists := SupportedCurrencies[code]
	return exists
}

// RoundAmount rounds a monetary amount to 2 decimal places. The rounding sees
// the float64 product amount*100, so half-cent inputs follow their nearest
// representable value.
func RoundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func FormatCurrency(amount float64, currencyCode string) string {
	currency, exists := SupportedCurrencies[currencyCode]
	if !exists {
		currency = SupportedCurrencies[DefaultCurrency]
	}

	return fmt.Sprintf("%s%.2f", currency.Symbol, RoundAmount(amount))
}
