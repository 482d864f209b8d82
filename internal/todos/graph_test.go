package todos

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agents-play/server/internal/agent/model"
)

type scriptedChatModel struct {
	responses []*schema.Message
	errs      []error
	callCount int
}

func (m *scriptedChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	idx := m.callCount
	m.callCount++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *scriptedChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type stubTodoRepo struct {
	CreateFunc  func(ctx context.Context, title string) (model.Todo, error)
	ListFunc    func(ctx context.Context) ([]model.Todo, error)
	createCalls int
	listCalls   int
}

func (r *stubTodoRepo) Create(ctx context.Context, title string) (model.Todo, error) {
	r.createCalls++
	return r.CreateFunc(ctx, title)
}

func (r *stubTodoRepo) List(ctx context.Context) ([]model.Todo, error) {
	r.listCalls++
	return r.ListFunc(ctx)
}

func assistant(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

func buildTestGraph(t *testing.T, m *scriptedChatModel, repo *stubTodoRepo) Runner {
	t.Helper()
	runner, err := BuildGraph(context.Background(), Config{Model: m, Repo: repo})
	require.NoError(t, err)
	return runner
}

func TestTodoGraphCreate(t *testing.T) {
	m := &scriptedChatModel{responses: []*schema.Message{
		assistant("create"),
		assistant("Buy milk\n"),
	}}
	repo := &stubTodoRepo{
		CreateFunc: func(_ context.Context, title string) (model.Todo, error) {
			require.Equal(t, "Buy milk", title)
			return model.Todo{
				ID:        uuid.New(),
				Title:     title,
				Completed: false,
				UpdatedAt: time.Now().UTC(),
			}, nil
		},
	}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "Add buy milk to my list")
	require.NoError(t, err)
	require.True(t, result.IsOK())
	require.Equal(t, ActionCreate, result.Action)
	require.NotNil(t, result.NewTodo)
	require.Equal(t, "Buy milk", result.NewTodo.Title)
	require.False(t, result.NewTodo.Completed)
	require.Equal(t, 1, repo.createCalls)
	require.Equal(t, 2, m.callCount)
}

func TestTodoGraphListEmpty(t *testing.T) {
	m := &scriptedChatModel{responses: []*schema.Message{assistant("list")}}
	repo := &stubTodoRepo{
		ListFunc: func(_ context.Context) ([]model.Todo, error) {
			return []model.Todo{}, nil
		},
	}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "Show me my todos")
	require.NoError(t, err)
	require.True(t, result.IsOK())
	require.Equal(t, ActionList, result.Action)
	require.Empty(t, result.Todos)
	require.Nil(t, result.NewTodo)
}

func TestTodoGraphListIdempotent(t *testing.T) {
	todos := []model.Todo{
		{ID: uuid.New(), Title: "Water plants", UpdatedAt: time.Now().UTC()},
		{ID: uuid.New(), Title: "Buy milk", Completed: true, UpdatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	m := &scriptedChatModel{responses: []*schema.Message{assistant("list")}}
	repo := &stubTodoRepo{
		ListFunc: func(_ context.Context) ([]model.Todo, error) {
			return todos, nil
		},
	}
	runner := buildTestGraph(t, m, repo)

	first, err := runner.Invoke(context.Background(), "what's on my list")
	require.NoError(t, err)

	m.callCount = 0
	second, err := runner.Invoke(context.Background(), "what's on my list")
	require.NoError(t, err)

	require.Equal(t, first.Todos, second.Todos)
	require.Equal(t, 2, repo.listCalls)
}

func TestTodoGraphUnknownAction(t *testing.T) {
	m := &scriptedChatModel{responses: []*schema.Message{assistant("unknown")}}
	repo := &stubTodoRepo{}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "mark everything as done")
	require.NoError(t, err)
	require.True(t, result.IsOK())
	require.Equal(t, ActionUnknown, result.Action)
	require.Equal(t, 0, repo.createCalls)
	require.Equal(t, 0, repo.listCalls)
}

func TestTodoGraphOffLabelPlanFallsBackToUnknown(t *testing.T) {
	m := &scriptedChatModel{responses: []*schema.Message{assistant("I would say this is a create request")}}
	repo := &stubTodoRepo{}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "do the thing")
	require.NoError(t, err)
	require.True(t, result.IsOK())
	require.Equal(t, ActionUnknown, result.Action)
}

func TestTodoGraphPlannerFailure(t *testing.T) {
	m := &scriptedChatModel{errs: []error{errors.New("provider unavailable")}}
	repo := &stubTodoRepo{}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "Add buy milk")
	require.NoError(t, err)
	require.False(t, result.IsOK())
	require.Equal(t, FailureAgentInvocation, result.Failure.Code)
	require.Equal(t, 0, repo.createCalls)
}

func TestTodoGraphTitleExtractionFailure(t *testing.T) {
	m := &scriptedChatModel{
		responses: []*schema.Message{assistant("create"), nil},
		errs:      []error{nil, errors.New("provider unavailable")},
	}
	repo := &stubTodoRepo{}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "Add buy milk")
	require.NoError(t, err)
	require.False(t, result.IsOK())
	require.Equal(t, FailureAgentInvocation, result.Failure.Code)
	require.Equal(t, 0, repo.createCalls)
}

func TestTodoGraphStoreFailure(t *testing.T) {
	m := &scriptedChatModel{responses: []*schema.Message{
		assistant("create"),
		assistant("Buy milk"),
	}}
	repo := &stubTodoRepo{
		CreateFunc: func(_ context.Context, _ string) (model.Todo, error) {
			return model.Todo{}, errors.New("database operation failed")
		},
	}
	runner := buildTestGraph(t, m, repo)

	result, err := runner.Invoke(context.Background(), "Add buy milk")
	require.NoError(t, err)
	require.False(t, result.IsOK())
	require.Equal(t, FailureStore, result.Failure.Code)
}
