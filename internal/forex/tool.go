package forex

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const ToolGetExchangeRates = "get_exchange_rates"

type GetExchangeRatesInput struct {
	BaseCurrency string `json:"base_currency"`
}

// NewRatesTool builds the exchange-rates tool over a rate source. The tool
// re-validates the code (trim + uppercase) before calling the source, since
// completion output is untrusted.
func NewRatesTool(source RateSource) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetExchangeRates,
			Desc: "Get current foreign exchange rates for a base currency. Returns a mapping of currency codes to their exchange rates relative to the base currency.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"base_currency": {
					Type:     schema.String,
					Desc:     "The 3-letter currency code to use as base (e.g., 'USD', 'EUR', 'GBP')",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetExchangeRatesInput) (map[Currency]float64, error) {
			base, ok := ParseCurrency(in.BaseCurrency)
			if !ok {
				return nil, fmt.Errorf(
					"unsupported currency: %s. Must be one of: %s",
					in.BaseCurrency, strings.Join(CurrencyNames(), ", "),
				)
			}

			resp, err := source.GetRates(ctx, base)
			if err != nil {
				return nil, fmt.Errorf("failed to get exchange rates for '%s': %w", in.BaseCurrency, err)
			}

			return resp.Rates, nil
		},
	)
}
