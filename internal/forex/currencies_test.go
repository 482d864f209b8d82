package forex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want Currency
		ok   bool
	}{
		{"USD", "USD", true},
		{"usd", "USD", true},
		{"  eur \n", "EUR", true},
		{"Jpy", "JPY", true},
		{"", "", false},
		{"DOLLARS", "", false},
		{"US", "", false},
		{"XYZ", "", false},
	} {
		got, ok := ParseCurrency(tc.raw)
		require.Equal(t, tc.ok, ok, "ParseCurrency(%q)", tc.raw)
		if ok {
			require.Equal(t, tc.want, got)
		}
	}
}

func TestIsValidCurrencyNoNormalization(t *testing.T) {
	require.True(t, IsValidCurrency("USD"))
	require.False(t, IsValidCurrency("usd"))
	require.False(t, IsValidCurrency(" USD"))
	require.False(t, IsValidCurrency(""))
}

func TestCurrenciesStableAndClosed(t *testing.T) {
	first := Currencies()
	second := Currencies()
	require.Equal(t, first, second)
	require.Len(t, first, 31)

	for _, c := range first {
		require.True(t, IsValidCurrency(string(c)))
	}

	// Returned slice is a copy; mutating it must not poison the set.
	first[0] = "XXX"
	require.True(t, IsValidCurrency(string(Currencies()[0])))
}

func TestRatesRoundTrip(t *testing.T) {
	rates := map[Currency]float64{
		"EUR": 0.85,
		"JPY": 147.32,
		"GBP": 0.74,
	}

	b, err := json.Marshal(rates)
	require.NoError(t, err)

	var parsed map[Currency]float64
	require.NoError(t, json.Unmarshal(b, &parsed))
	require.Equal(t, rates, parsed)
}
