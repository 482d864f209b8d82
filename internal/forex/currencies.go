package forex

import (
	"strings"
)

// Currency is a 3-letter currency code from the closed supported set.
type Currency string

// currencyList is the closed set of supported currency codes. Any code
// entering the rate-fetch step must belong to this set; values produced by the
// completion capability are untrusted and re-checked against it.
var currencyList = []Currency{
	"AUD", "BGN", "BRL", "CAD", "CHF", "CNY", "CZK", "DKK", "EUR", "GBP",
	"HKD", "HUF", "IDR", "ILS", "INR", "ISK", "JPY", "KRW", "MXN", "MYR",
	"NOK", "NZD", "PHP", "PLN", "RON", "SEK", "SGD", "THB", "TRY", "USD",
	"ZAR",
}

var currencySet = func() map[Currency]struct{} {
	set := make(map[Currency]struct{}, len(currencyList))
	for _, c := range currencyList {
		set[c] = struct{}{}
	}
	return set
}()

// Currencies returns the supported codes in stable order.
func Currencies() []Currency {
	out := make([]Currency, len(currencyList))
	copy(out, currencyList)
	return out
}

// CurrencyNames returns the supported codes as plain strings, for prompts and
// error messages.
func CurrencyNames() []string {
	out := make([]string, len(currencyList))
	for i, c := range currencyList {
		out[i] = string(c)
	}
	return out
}

// IsValidCurrency reports whether the code belongs to the supported set as-is,
// without normalization.
func IsValidCurrency(code string) bool {
	_, ok := currencySet[Currency(code)]
	return ok
}

// ParseCurrency trims and uppercases the input and validates it against the
// supported set.
func ParseCurrency(code string) (Currency, bool) {
	normalized := Currency(strings.ToUpper(strings.TrimSpace(code)))
	_, ok := currencySet[normalized]
	return normalized, ok
}
