package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/agents-play/server/internal/forex"
	logx "github.com/agents-play/server/pkg/logger"
)

// ToolGetExchangeRates is the tool name exposed to the responder model.
const ToolGetExchangeRates = "get_exchange_rates"

// ExchangeRatesInput is the argument payload for the exchange rates tool.
type ExchangeRatesInput struct {
	UserRequest string `json:"user_request"`
}

// exchangeRatesTool wraps the currency sub-graph as a model-facing tool.
// Sub-graph failures come back as plain text tool results rather than errors,
// so the responder can relay them instead of aborting the run.
type exchangeRatesTool struct {
	runner forex.Runner
}

// NewExchangeRatesTool builds the exchange rates tool over the given currency
// graph runner.
func NewExchangeRatesTool(runner forex.Runner) tool.InvokableTool {
	return &exchangeRatesTool{runner: runner}
}

func (t *exchangeRatesTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: ToolGetExchangeRates,
		Desc: "Get current foreign exchange rates based on a natural language request, " +
			"e.g. \"What's the USD to EUR exchange rate?\" or \"Show me rates for GBP, EUR, and JPY\". " +
			"Returns a mapping of currency codes to rates, or a descriptive message when the request " +
			"could not be processed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"user_request": {
				Type:     schema.String,
				Desc:     "Natural language request describing what exchange rates the user wants",
				Required: true,
			},
		}),
	}, nil
}

func (t *exchangeRatesTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var in ExchangeRatesInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &in); err != nil {
		return "", fmt.Errorf("unmarshal exchange rates arguments: %w", err)
	}

	result, err := t.runner.Invoke(ctx, in.UserRequest)
	if err != nil {
		// Graph invocation errors (not classification rejections) abort the run.
		return "", fmt.Errorf("exchange rates graph: %w", err)
	}
	if !result.IsOK() {
		logx.Debug().Str("failure_message", result.FailureMessage).Msg("Exchange rates request rejected")
		return result.FailureMessage, nil
	}

	b, err := json.Marshal(result.Rates)
	if err != nil {
		return "", fmt.Errorf("marshal exchange rates: %w", err)
	}
	return string(b), nil
}
