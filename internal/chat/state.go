// Package chat implements the conversation orchestrator: agent resolution,
// intent routing between the todo and general paths, the tool-calling response
// loop, and persistence of the resulting exchange.
package chat

import (
	"github.com/cloudwego/eino/schema"

	"github.com/agents-play/server/internal/agent/model"
	"github.com/agents-play/server/internal/agent/registry"
	"github.com/agents-play/server/internal/todos"
)

// Intent is a routing label from the closed intent set.
type Intent string

const (
	IntentTodo    Intent = "todo"
	IntentGeneral Intent = "general"
)

// IntentLabels is the closed label set for the intent classifier. The last
// label is the fallback for off-label completions.
var IntentLabels = []string{string(IntentTodo), string(IntentGeneral)}

// FailureCode identifies why an orchestrator run produced no answer.
type FailureCode string

const (
	// FailureUnsupportedAgent means the requested provider/model key has no
	// registered agent. No completion calls are made.
	FailureUnsupportedAgent FailureCode = "unsupported_llm"

	// FailureAgentInvocation wraps any completion-capability error during the
	// run. Fatal per request, never retried.
	FailureAgentInvocation FailureCode = "agent_invocation_failed"
)

// Failure carries the terminal failure of an orchestrator run.
type Failure struct {
	Code  FailureCode
	Cause error
}

// Success carries the finalized assistant answer plus routing context.
type Success struct {
	Answer model.ChatMessage
	Intent Intent

	// Todo is set when the run completed a todo action before narration.
	Todo *todos.Result

	// TotalCostUSD is the accumulated completion cost of the run.
	TotalCostUSD float64
}

// Result is the terminal outcome of the orchestrator graph. Exactly one of
// Success or Failure is set.
type Result struct {
	Success *Success
	Failure *Failure
}

func (r *Result) IsOK() bool {
	return r.Failure == nil
}

func success(s *Success) *Result {
	return &Result{Success: s}
}

func failed(code FailureCode, cause error) *Result {
	return &Result{Failure: &Failure{Code: code, Cause: cause}}
}

// chatState is the orchestrator graph's local state for a single run.
type chatState struct {
	query *model.ChatQuery
	agent *registry.Agent

	intent Intent
	todo   *todos.Result

	history       []*schema.Message
	lastAssistant *schema.Message

	toolCallCount        int
	toolCallLimitReached bool
	toolCallIDSeq        int
	totalCostUSD         float64

	result model.ResultSlot[*Result]
}
