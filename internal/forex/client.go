package forex

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	logx "github.com/agents-play/server/pkg/logger"
)

const latestRatesPath = "/v1/rates/latest"

// RatesResponse is the rate source payload: rates relative to the base
// currency. No rounding or normalization is applied beyond what the source
// returns.
type RatesResponse struct {
	Base  Currency             `json:"base"`
	Date  string               `json:"date"`
	Rates map[Currency]float64 `json:"rates"`
}

// RateSource fetches current exchange rates for a base currency.
type RateSource interface {
	GetRates(ctx context.Context, base Currency) (*RatesResponse, error)
}

// Client is the HTTP rate source backed by the configured forex API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	client := resty.New().SetBaseURL(strings.TrimRight(baseURL, "/"))
	return &Client{http: client}
}

// GetRates fetches current rates relative to base. Non-success status codes
// and malformed payloads yield errors; callers treat them as terminal.
func (c *Client) GetRates(ctx context.Context, base Currency) (*RatesResponse, error) {
	var out RatesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("base", string(base)).
		SetResult(&out).
		Get(latestRatesPath)
	if err != nil {
		logx.Error().Err(err).Str("base", string(base)).Msg("rate source request failed")
		return nil, fmt.Errorf("rate source request: %w", err)
	}
	if !resp.IsSuccess() {
		logx.Error().Int("status", resp.StatusCode()).Str("base", string(base)).Msg("rate source returned non-success status")
		return nil, fmt.Errorf("rate source status %d", resp.StatusCode())
	}
	if out.Rates == nil {
		return nil, fmt.Errorf("rate source returned malformed payload")
	}
	return &out, nil
}

var _ RateSource = (*Client)(nil)
