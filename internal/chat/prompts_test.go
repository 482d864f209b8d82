package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agents-play/server/internal/agent/model"
	"github.com/agents-play/server/internal/todos"
)

func TestNarrationOutcomeCreate(t *testing.T) {
	out := narrationOutcome(&todos.Result{
		Action:  todos.ActionCreate,
		NewTodo: &model.Todo{ID: uuid.New(), Title: "Buy milk"},
	})
	require.Contains(t, out, `"Buy milk"`)
	require.Contains(t, out, "created successfully")
}

func TestNarrationOutcomeListEmpty(t *testing.T) {
	out := narrationOutcome(&todos.Result{Action: todos.ActionList, Todos: []model.Todo{}})
	require.Equal(t, "The user's todo list is empty.", out)
}

func TestNarrationOutcomeListRendersItems(t *testing.T) {
	out := narrationOutcome(&todos.Result{
		Action: todos.ActionList,
		Todos: []model.Todo{
			{ID: uuid.New(), Title: "Water plants", Completed: false, UpdatedAt: time.Now().UTC()},
			{ID: uuid.New(), Title: "Buy milk", Completed: true, UpdatedAt: time.Now().UTC()},
		},
	})
	require.Contains(t, out, "- [ ] Water plants")
	require.Contains(t, out, "- [x] Buy milk")
}

func TestNarrationOutcomeUnknown(t *testing.T) {
	out := narrationOutcome(&todos.Result{Action: todos.ActionUnknown})
	require.Contains(t, out, "not supported")
}

func TestRenderNarrationSystemIncludesQuestionAndOutcome(t *testing.T) {
	rendered, err := renderNarrationSystem(context.Background(), "Show me my todos",
		&todos.Result{Action: todos.ActionList, Todos: []model.Todo{}})
	require.NoError(t, err)
	require.Contains(t, rendered, `"Show me my todos"`)
	require.Contains(t, rendered, "The user's todo list is empty.")
}

func TestRenderGeneralSystemNamesTheTool(t *testing.T) {
	rendered, err := renderGeneralSystem(context.Background())
	require.NoError(t, err)
	require.Contains(t, rendered, ToolGetExchangeRates)
	require.NotContains(t, rendered, "{{")
}
