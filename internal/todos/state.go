package todos

import (
	"github.com/agents-play/server/internal/agent/model"
)

// Action is the concrete todo operation the graph resolved from user input.
type Action string

const (
	ActionCreate  Action = "create"
	ActionList    Action = "list"
	ActionUnknown Action = "unknown"
)

// FailureCode categorizes terminal todo graph failures.
type FailureCode string

const (
	// FailureAgentInvocation wraps a completion-capability error. Terminal,
	// never retried.
	FailureAgentInvocation FailureCode = "agent_invocation_failed"
	// FailureStore wraps a todo store error.
	FailureStore FailureCode = "todo_store_failed"
)

// Failure describes why the graph terminated without completing an action.
type Failure struct {
	Code  FailureCode
	Cause error
}

// Result is the terminal outcome of the todo graph, built once per invocation.
type Result struct {
	Action  Action
	NewTodo *model.Todo
	Todos   []model.Todo
	Failure *Failure
}

// IsOK reports whether the graph finished with a successful action.
func (r *Result) IsOK() bool {
	return r.Failure == nil
}

func createSuccess(todo model.Todo) *Result {
	return &Result{Action: ActionCreate, NewTodo: &todo}
}

func listSuccess(items []model.Todo) *Result {
	return &Result{Action: ActionList, Todos: items}
}

func unknownSuccess() *Result {
	return &Result{Action: ActionUnknown}
}

func failed(code FailureCode, cause error) *Result {
	return &Result{Failure: &Failure{Code: code, Cause: cause}}
}

// graphState is the per-invocation local state. The result slot follows
// write-once discipline: resolving it twice panics.
type graphState struct {
	userInput string
	action    Action
	result    model.ResultSlot[*Result]
}
