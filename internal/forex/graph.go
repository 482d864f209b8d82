package forex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	logx "github.com/agents-play/server/pkg/logger"
)

// Graph node names.
const (
	NodeGetInput  = "get_user_currency_input_node"
	NodeDetermine = "determine_currency_and_get_rates_node"
	NodeEnd       = "end_node"
	NodeFailure   = "failure_node"
)

// Runner executes the compiled currency graph for one raw user input.
type Runner interface {
	Invoke(ctx context.Context, rawInput string) (*Result, error)
}

// Config holds everything needed to compose the currency graph.
type Config struct {
	// Model is the completion model used to identify the base currency. The
	// exchange-rates tool info is bound to it during graph construction.
	Model einomodel.ToolCallingChatModel
	// Tool is the exchange-rates tool executed when the model calls it.
	Tool tool.InvokableTool
}

type graphRunner struct {
	runnable compose.Runnable[string, *Result]
}

func (r *graphRunner) Invoke(ctx context.Context, rawInput string) (*Result, error) {
	out, err := r.runnable.Invoke(ctx, rawInput)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("currency graph finished without a result")
	}
	return out, nil
}

// BuildGraph composes and compiles the currency graph:
// get_input -> determine_currency_and_get_rates -> end, with failure as an
// absorbing terminal reachable from any state.
func BuildGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("currency model is nil")
	}
	if cfg.Tool == nil {
		return nil, fmt.Errorf("rates tool is nil")
	}

	info, err := cfg.Tool.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("rates tool info: %w", err)
	}
	toolModel, err := cfg.Model.WithTools([]*schema.ToolInfo{info})
	if err != nil {
		return nil, fmt.Errorf("bind rates tool to currency model: %w", err)
	}

	g := compose.NewGraph[string, *Result](
		compose.WithGenLocalState(func(ctx context.Context) *graphState {
			return &graphState{}
		}),
	)

	g.AddLambdaNode(NodeGetInput, newGetInputNode())
	g.AddLambdaNode(NodeDetermine, newDetermineNode(toolModel, cfg.Tool))
	g.AddLambdaNode(NodeEnd, newEndNode())
	g.AddLambdaNode(NodeFailure, newFailureNode())

	g.AddEdge(compose.START, NodeGetInput)
	g.AddEdge(NodeEnd, compose.END)
	g.AddEdge(NodeFailure, compose.END)

	inputBranch := compose.NewGraphBranch(
		newGetInputCondition(),
		map[string]bool{
			NodeDetermine: true,
			NodeFailure:   true,
		},
	)
	if err := g.AddBranch(NodeGetInput, inputBranch); err != nil {
		return nil, fmt.Errorf("error adding input branch: %w", err)
	}

	determineBranch := compose.NewGraphBranch(
		newDetermineCondition(),
		map[string]bool{
			NodeEnd:     true,
			NodeFailure: true,
		},
	)
	if err := g.AddBranch(NodeDetermine, determineBranch); err != nil {
		return nil, fmt.Errorf("error adding determine branch: %w", err)
	}

	runnable, err := g.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error compiling currency graph: %w", err)
	}

	logx.Debug().Msg("Currency graph compiled successfully")
	return &graphRunner{runnable: runnable}, nil
}

// newGetInputNode validates the raw user input. Empty or whitespace-only
// input resolves the failure outcome immediately.
func newGetInputNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, rawInput string) (string, error) {
		trimmed := strings.TrimSpace(rawInput)

		err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			s.rawInput = trimmed
			if trimmed == "" {
				s.result.Resolve(failure("Invalid user input"))
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		return trimmed, nil
	})
}

func newGetInputCondition() func(context.Context, string) (string, error) {
	return func(ctx context.Context, _ string) (string, error) {
		var resolved bool
		compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			resolved = s.result.Resolved()
			return nil
		})

		if resolved {
			return NodeFailure, nil
		}
		return NodeDetermine, nil
	}
}

// newDetermineNode runs the strict currency identification prompt against the
// tool-enabled model and applies the tool-call-or-reject policy: no tool call
// means rejection, an out-of-set code means rejection, and only a validated
// tool invocation fetches rates.
func newDetermineNode(m einomodel.BaseChatModel, ratesTool tool.InvokableTool) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, rawInput string) (*Result, error) {
		resolve := func(r *Result) (*Result, error) {
			err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
				s.result.Resolve(r)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to access state: %w", err)
			}
			return r, nil
		}

		out, err := m.Generate(ctx, []*schema.Message{
			schema.UserMessage(determineCurrencyPrompt(rawInput)),
		})
		if err != nil {
			logx.Error().Err(err).Msg("Currency identification model call failed")
			return resolve(failure(fmt.Sprintf("Error processing currency request: %v", err)))
		}

		if out == nil || len(out.ToolCalls) == 0 {
			return resolve(failure(fmt.Sprintf("Could not identify a valid currency from: '%s'", rawInput)))
		}

		var args GetExchangeRatesInput
		if err := json.Unmarshal([]byte(out.ToolCalls[0].Function.Arguments), &args); err != nil {
			logx.Warn().Err(err).Msg("Unparseable tool arguments from currency model")
			return resolve(failure(fmt.Sprintf("Could not identify a valid currency from: '%s'", rawInput)))
		}

		// Untrusted completion output: re-check membership before any fetch.
		if !IsValidCurrency(args.BaseCurrency) {
			return resolve(failure(fmt.Sprintf("AI identified invalid currency: '%s'", args.BaseCurrency)))
		}
		base := Currency(args.BaseCurrency)

		toolArgs, err := json.Marshal(GetExchangeRatesInput{BaseCurrency: string(base)})
		if err != nil {
			return nil, fmt.Errorf("marshal rates tool arguments: %w", err)
		}

		toolOut, err := ratesTool.InvokableRun(ctx, string(toolArgs))
		if err != nil {
			logx.Error().Err(err).Str("currency", string(base)).Msg("Rates tool execution failed")
			return resolve(failure(fmt.Sprintf("Failed to get exchange rates for '%s'", base)))
		}

		var rates map[Currency]float64
		if err := json.Unmarshal([]byte(toolOut), &rates); err != nil {
			logx.Error().Err(err).Str("currency", string(base)).Msg("Unparseable rates tool output")
			return resolve(failure(fmt.Sprintf("Failed to get exchange rates for '%s'", base)))
		}

		return resolve(success(base, rates))
	})
}

func newDetermineCondition() func(context.Context, *Result) (string, error) {
	return func(ctx context.Context, result *Result) (string, error) {
		if result != nil && result.IsOK() {
			return NodeEnd, nil
		}
		return NodeFailure, nil
	}
}

func newEndNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, result *Result) (*Result, error) {
		return result, nil
	})
}

// newFailureNode reads the resolved failure from state. It accepts any input
// because both the input validation and determine states route here.
func newFailureNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ any) (*Result, error) {
		var result *Result
		err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			result = s.result.MustGet()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().Str("failure_message", result.FailureMessage).Msg("Currency graph reached failure state")
		return result, nil
	})
}
