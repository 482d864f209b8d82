package classify

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
)

type stubChatModel struct {
	responses []*schema.Message
	err       error
	callCount int
}

func (m *stubChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	idx := m.callCount - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *stubChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{SystemPrompt: "p", Labels: []string{"a", "b"}})
	require.Error(t, err)

	_, err = New(Config{Model: &stubChatModel{}, SystemPrompt: "p", Labels: []string{"only"}})
	require.Error(t, err)

	_, err = New(Config{Model: &stubChatModel{}, SystemPrompt: "  ", Labels: []string{"a", "b"}})
	require.Error(t, err)
}

func TestClassifyExactMatch(t *testing.T) {
	m := &stubChatModel{responses: []*schema.Message{schema.AssistantMessage("todo", nil)}}
	c, err := New(Config{Model: m, SystemPrompt: "classify", Labels: []string{"todo", "general"}})
	require.NoError(t, err)

	label, err := c.Classify(context.Background(), "Add milk to my list")
	require.NoError(t, err)
	require.Equal(t, "todo", label)
	require.Equal(t, 1, m.callCount)
}

func TestClassifyTrimsWhitespace(t *testing.T) {
	m := &stubChatModel{responses: []*schema.Message{schema.AssistantMessage("  list\n", nil)}}
	c, err := New(Config{Model: m, SystemPrompt: "classify", Labels: []string{"create", "list", "unknown"}})
	require.NoError(t, err)

	label, err := c.Classify(context.Background(), "show todos")
	require.NoError(t, err)
	require.Equal(t, "list", label)
}

func TestClassifyOffLabelFallsBack(t *testing.T) {
	m := &stubChatModel{responses: []*schema.Message{schema.AssistantMessage("I think this is a todo request", nil)}}
	c, err := New(Config{Model: m, SystemPrompt: "classify", Labels: []string{"todo", "general"}})
	require.NoError(t, err)

	label, err := c.Classify(context.Background(), "hmm")
	require.NoError(t, err)
	require.Equal(t, "general", label)
}

func TestClassifyDeterministicRouting(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want string
	}{
		{"create", "create"},
		{"list", "list"},
		{"unknown", "unknown"},
		{"something else entirely", "unknown"},
	} {
		m := &stubChatModel{responses: []*schema.Message{schema.AssistantMessage(tc.raw, nil)}}
		c, err := New(Config{Model: m, SystemPrompt: "classify", Labels: []string{"create", "list", "unknown"}})
		require.NoError(t, err)

		label, err := c.Classify(context.Background(), "input")
		require.NoError(t, err)
		require.Equal(t, tc.want, label)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	m := &stubChatModel{responses: []*schema.Message{schema.AssistantMessage("todo", nil)}}
	c, err := New(Config{Model: m, SystemPrompt: "classify", Labels: []string{"todo", "general"}})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "   ")
	require.Error(t, err)
	require.Equal(t, 0, m.callCount)
}

func TestClassifyModelError(t *testing.T) {
	m := &stubChatModel{err: errors.New("provider unavailable")}
	c, err := New(Config{Model: m, SystemPrompt: "classify", Labels: []string{"todo", "general"}})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "anything")
	require.Error(t, err)
	require.Equal(t, 1, m.callCount)
}
