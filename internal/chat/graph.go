package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/agents-play/server/internal/agent/model"
	"github.com/agents-play/server/internal/agent/registry"
	"github.com/agents-play/server/internal/chat/observers"
	"github.com/agents-play/server/internal/todos"
	logx "github.com/agents-play/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled orchestrator graph.
type Runner interface {
	Invoke(ctx context.Context, in *model.ChatQuery) (*Result, error)
}

// Config holds everything needed to compose the orchestrator graph.
type Config struct {
	Registry     *registry.Registry
	TodoGraph    todos.Runner
	ExchangeTool tool.InvokableTool
	MaxToolCalls int
}

// GraphBuilder handles the construction of the orchestrator graph.
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[*model.ChatQuery, *Result]
}

type graphRunner struct {
	runnable compose.Runnable[*model.ChatQuery, *Result]
}

func (r *graphRunner) Invoke(ctx context.Context, in *model.ChatQuery) (*Result, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("orchestrator graph returned nil result")
	}
	return out, nil
}

// BuildGraph constructs and compiles the orchestrator graph.
func BuildGraph(ctx context.Context, config *Config) (Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Registry == nil {
		return nil, fmt.Errorf("agent registry is nil")
	}
	if config.TodoGraph == nil {
		return nil, fmt.Errorf("todo graph is nil")
	}
	if config.ExchangeTool == nil {
		return nil, fmt.Errorf("exchange tool is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[*model.ChatQuery, *Result](
			compose.WithGenLocalState(func(ctx context.Context) *chatState {
				return &chatState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Orchestrator graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// setupTools binds the exchange tool to every registered responder and adds
// the tool executor node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	chatTools := []tool.BaseTool{b.config.ExchangeTool}

	info, err := b.config.ExchangeTool.Info(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.Registry.BindResponderTools([]*schema.ToolInfo{info}); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to responders")
		return fmt.Errorf("failed to bind tools to responders: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               chatTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				return arguments, nil
			}

			if name == ToolGetExchangeRates {
				// user_request: string (required)
				if v, ok := m["user_request"]; ok {
					switch vv := v.(type) {
					case string:
						m["user_request"] = strings.TrimSpace(vv)
					default:
						m["user_request"] = strings.TrimSpace(fmt.Sprint(v))
					}
				}
			}

			out, err := json.Marshal(m)
			if err != nil {
				return arguments, nil
			}
			return string(out), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(NewToolExecutorPreHandler(b.config.MaxToolCalls)),
	)

	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(NodeAgentResolver,
		NewAgentResolverNode(b.config.Registry),
		compose.WithStatePreHandler(NewAgentResolverPreHandler()),
	)

	b.graph.AddLambdaNode(NodeIntentClassifier,
		NewIntentClassifierNode(),
	)

	b.graph.AddLambdaNode(NodeTodoRouter,
		NewTodoRouterNode(b.config.TodoGraph),
	)

	b.graph.AddLambdaNode(NodeContextAssembler,
		NewContextAssemblerNode(),
	)

	b.graph.AddLambdaNode(NodeResponseModel,
		NewResponseModelNode(),
		compose.WithStatePreHandler(NewResponseModelPreHandler(b.config.MaxToolCalls)),
		compose.WithStatePostHandler(NewResponseModelPostHandler()),
	)

	b.graph.AddLambdaNode(NodeFinish,
		NewFinishNode(),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, NodeAgentResolver},
		{NodeTodoRouter, NodeResponseModel},
		{NodeContextAssembler, NodeResponseModel},
		{NodeToolExecutor, NodeResponseModel},
		{NodeFinish, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches.
func (b *GraphBuilder) addBranches() error {
	resolverBranch := compose.NewGraphBranch(
		NewAgentResolvedCondition(),
		map[string]bool{
			NodeIntentClassifier: true,
			NodeFinish:           true,
		},
	)
	if err := b.graph.AddBranch(NodeAgentResolver, resolverBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding agent resolver branch")
		return fmt.Errorf("error adding agent resolver branch: %w", err)
	}

	intentBranch := compose.NewGraphBranch(
		NewIntentCondition(),
		map[string]bool{
			NodeTodoRouter:       true,
			NodeContextAssembler: true,
			NodeFinish:           true,
		},
	)
	if err := b.graph.AddBranch(NodeIntentClassifier, intentBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent branch")
		return fmt.Errorf("error adding intent branch: %w", err)
	}

	decisionBranch := compose.NewGraphBranch(
		NewToolDecisionCondition(),
		map[string]bool{
			NodeToolExecutor: true,
			NodeFinish:       true,
		},
	)
	if err := b.graph.AddBranch(NodeResponseModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.ChatQuery, *Result], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + normalizeMaxToolCalls(b.config.MaxToolCalls)*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling orchestrator graph")
		return nil, fmt.Errorf("error compiling orchestrator graph: %w", err)
	}

	logx.Debug().Msg("Orchestrator graph compiled successfully")
	return runnable, nil
}
