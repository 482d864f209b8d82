package forex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientGetRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, latestRatesPath, r.URL.Path)
		require.Equal(t, "USD", r.URL.Query().Get("base"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2026-09-01","rates":{"EUR":0.85,"JPY":147.32}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.GetRates(context.Background(), "USD")
	require.NoError(t, err)
	require.Equal(t, Currency("USD"), resp.Base)
	require.Equal(t, "2026-09-01", resp.Date)
	require.Equal(t, map[Currency]float64{"EUR": 0.85, "JPY": 147.32}, resp.Rates)
}

func TestClientGetRatesNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetRates(context.Background(), "EUR")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestClientGetRatesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2026-09-01"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetRates(context.Background(), "USD")
	require.Error(t, err)
}

func TestClientGetRatesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetRates(context.Background(), "USD")
	require.Error(t, err)
}
