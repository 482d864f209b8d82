package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/agents-play/server/internal/agent/model"
	"github.com/agents-play/server/internal/agent/registry"
	"github.com/agents-play/server/internal/todos"
	logx "github.com/agents-play/server/pkg/logger"
)

const (
	NodeAgentResolver    = "agent_resolver_node"
	NodeIntentClassifier = "intent_classifier_node"
	NodeTodoRouter       = "todo_router_node"
	NodeContextAssembler = "context_assembler_node"
	NodeResponseModel    = "response_model_node"
	NodeToolExecutor     = "tool_executor_node"
	NodeFinish           = "finish_node"
)

// NewAgentResolverPreHandler resets per-run state before agent resolution.
func NewAgentResolverPreHandler() func(context.Context, *model.ChatQuery, *chatState) (*model.ChatQuery, error) {
	return func(ctx context.Context, in *model.ChatQuery, s *chatState) (*model.ChatQuery, error) {
		s.query = in
		s.toolCallCount = 0
		s.toolCallLimitReached = false
		s.toolCallIDSeq = 0
		s.totalCostUSD = 0
		return in, nil
	}
}

// NewAgentResolverNode resolves the requested provider/model key against the
// registry. An unknown key resolves the run as unsupported with zero
// completion calls made.
func NewAgentResolverNode(reg *registry.Registry) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.ChatQuery) (*model.ChatQuery, error) {
		err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			agent, err := reg.Resolve(in.AgentKey())
			if err != nil {
				logx.Warn().Str("agent_key", in.AgentKey().String()).Msg("Unsupported agent requested")
				s.result.Resolve(failed(FailureUnsupportedAgent, err))
				return nil
			}
			s.agent = agent
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return in, nil
	})
}

// NewAgentResolvedCondition routes unresolved runs into intent classification
// and already-failed runs straight to finish.
func NewAgentResolvedCondition() func(context.Context, *model.ChatQuery) (string, error) {
	return func(ctx context.Context, _ *model.ChatQuery) (string, error) {
		var resolved bool
		compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			resolved = s.result.Resolved()
			return nil
		})
		if resolved {
			return NodeFinish, nil
		}
		return NodeIntentClassifier, nil
	}
}

// NewIntentClassifierNode classifies the user question into the closed intent
// label set using the resolved agent's classifier.
func NewIntentClassifierNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.ChatQuery) (string, error) {
		var agent *registry.Agent
		if err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			agent = s.agent
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		label, err := agent.Intent.Classify(ctx, in.Question.Content)
		if err != nil {
			logx.Error().Err(err).Msg("Intent classification failed")
			serr := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
				s.result.Resolve(failed(FailureAgentInvocation, err))
				return nil
			})
			if serr != nil {
				return "", fmt.Errorf("failed to access state: %w", serr)
			}
			return "", nil
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			s.intent = Intent(label)
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}

		logx.Debug().Str("intent", label).Msg("Intent classified")
		return label, nil
	})
}

// NewIntentCondition routes todo-labeled runs into the todo sub-graph and
// everything else to the general context assembler.
func NewIntentCondition() func(context.Context, string) (string, error) {
	return func(ctx context.Context, label string) (string, error) {
		var resolved bool
		compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			resolved = s.result.Resolved()
			return nil
		})
		if resolved {
			return NodeFinish, nil
		}
		if Intent(label) == IntentTodo {
			return NodeTodoRouter, nil
		}
		return NodeContextAssembler, nil
	}
}

// NewTodoRouterNode invokes the todo sub-graph and, on success, builds a
// narration context describing exactly what happened for the responder to
// relay. A failed todo run falls through to the general path instead of
// erroring out.
func NewTodoRouterNode(todoGraph todos.Runner) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ string) ([]*schema.Message, error) {
		var query *model.ChatQuery
		if err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			query = s.query
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		res, err := todoGraph.Invoke(ctx, query.Question.Content)
		if err != nil || !res.IsOK() {
			if err != nil {
				logx.Warn().Err(err).Msg("Todo graph invocation failed; falling through to general path")
			} else {
				logx.Warn().
					Str("failure_code", string(res.Failure.Code)).
					Msg("Todo graph reached failure; falling through to general path")
			}
			return buildGeneralMessages(ctx, query)
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			s.todo = res
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		narration, err := renderNarrationSystem(ctx, query.Question.Content, res)
		if err != nil {
			return nil, err
		}

		return []*schema.Message{
			schema.SystemMessage(narration),
			query.Question.AsLLMMessage(),
		}, nil
	})
}

// NewContextAssemblerNode builds the general path context: system prompt plus
// full room history plus the new user question.
func NewContextAssemblerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ string) ([]*schema.Message, error) {
		var query *model.ChatQuery
		if err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			query = s.query
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return buildGeneralMessages(ctx, query)
	})
}

func buildGeneralMessages(ctx context.Context, query *model.ChatQuery) ([]*schema.Message, error) {
	sys, err := renderGeneralSystem(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]*schema.Message, 0, len(query.History)+2)
	messages = append(messages, schema.SystemMessage(sys))
	for _, m := range query.History {
		messages = append(messages, m.AsLLMMessage())
	}
	messages = append(messages, query.Question.AsLLMMessage())
	return messages, nil
}

// NewResponseModelPreHandler creates the pre-handler for the ResponseModel node.
func NewResponseModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *chatState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *chatState) ([]*schema.Message, error) {
		// Heuristic fix for providers that omit tool_call_id on tool results.
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.history) - 1; i >= 0; i-- {
					msg := state.history[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					id := msg.ToolCalls[0].ID
					if strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.history = append(state.history, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please synthesize a helpful response using the information you've already gathered. "+
						"Acknowledge any limitations in your response if you couldn't complete all necessary tool calls.",
					maxToolCalls,
				),
			}
			state.history = append(state.history, wrapUp)
		}

		logx.Debug().Msg("AI thinking...")

		return state.history, nil
	}
}

// NewResponseModelNode calls the resolved agent's responder with the
// accumulated context. Completion errors resolve the run as
// agent_invocation_failed rather than propagating.
func NewResponseModelNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in []*schema.Message) (*schema.Message, error) {
		var agent *registry.Agent
		if err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			agent = s.agent
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		out, err := agent.Responder.Generate(ctx, in)
		if err != nil {
			logx.Error().Err(err).Msg("Response model call failed")
			serr := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
				s.result.Resolve(failed(FailureAgentInvocation, err))
				return nil
			})
			if serr != nil {
				return nil, fmt.Errorf("failed to access state: %w", serr)
			}
			return schema.AssistantMessage("", nil), nil
		}
		return out, nil
	})
}

// NewResponseModelPostHandler logs usage cost, normalizes tool call IDs, and
// records the assistant message into state history.
func NewResponseModelPostHandler() func(context.Context, *schema.Message, *chatState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *chatState) (*schema.Message, error) {
		if out == nil {
			return out, nil
		}

		if state.agent != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			modelName := state.agent.ResponderModelName
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			state.totalCostUSD += totalC
			logx.Debug().
				Str("node", NodeResponseModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", state.totalCostUSD).
				Msg("LLM usage")
		}

		// Normalize tool calls: some providers may omit tool_call IDs.
		if len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.toolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.toolCallIDSeq)
				}
			}
		}

		state.history = append(state.history, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}

		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.toolCallLimitReached) {
			state.lastAssistant = out
		}

		return out, nil
	}
}

// NewToolDecisionCondition routes tool-calling turns into the executor and
// terminal turns to finish.
func NewToolDecisionCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var resolved, limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			resolved = s.result.Resolved()
			limitReached = s.toolCallLimitReached
			return nil
		})

		if resolved {
			return NodeFinish, nil
		}
		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to finish")
			return NodeFinish, nil
		}
		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}
		return NodeFinish, nil
	}
}

// NewToolExecutorPreHandler creates the pre-handler for the ToolExecutor node.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *chatState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *chatState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.toolCallCount).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_call_count", state.toolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Msg("Tool call limit exceeded")
		}

		return in, nil
	}
}

// NewFinishNode materializes the terminal Result. Failure paths arrive with
// the slot already resolved; the success path finalizes the assistant answer
// here, exactly once.
func NewFinishNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ any) (*Result, error) {
		var result *Result
		err := compose.ProcessState(ctx, func(_ context.Context, s *chatState) error {
			if !s.result.Resolved() {
				if s.lastAssistant == nil || strings.TrimSpace(s.lastAssistant.Content) == "" {
					s.result.Resolve(failed(FailureAgentInvocation,
						fmt.Errorf("responder produced no assistant message")))
				} else {
					answer := model.ChatMessage{
						ID:       uuid.New(),
						Role:     model.RoleAssistant,
						Content:  s.lastAssistant.Content,
						Provider: s.query.Question.Provider,
						ModelKey: s.query.Question.ModelKey,
						Date:     time.Now().UTC(),
					}
					s.result.Resolve(success(&Success{
						Answer:       answer,
						Intent:       s.intent,
						Todo:         s.todo,
						TotalCostUSD: s.totalCostUSD,
					}))
				}
			}
			result = s.result.MustGet()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return result, nil
	})
}
