package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agents-play/server/internal/agent/model"
	"github.com/agents-play/server/internal/chat"
	"github.com/agents-play/server/internal/core"
)

type stubChatRepo struct {
	rooms      []model.ChatRoom
	listErr    error
	appendErr  error
	appendedTo *model.ChatRoom
	appended   []model.ChatMessage
}

func (r *stubChatRepo) ListRooms(_ context.Context) ([]model.ChatRoom, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.rooms, nil
}

func (r *stubChatRepo) AppendMessages(_ context.Context, room *model.ChatRoom, messages []model.ChatMessage) (*model.ChatRoom, error) {
	if r.appendErr != nil {
		return nil, r.appendErr
	}
	r.appendedTo = room
	r.appended = messages

	updated := model.ChatRoom{
		ID:        uuid.New(),
		Title:     messages[0].Content,
		Messages:  messages,
		UpdatedAt: time.Now().UTC(),
	}
	if room != nil {
		updated.ID = room.ID
		updated.Title = room.Title
		updated.Messages = append(append([]model.ChatMessage{}, room.Messages...), messages...)
	}
	return &updated, nil
}

type stubRunner struct {
	result *chat.Result
	err    error
}

func (r *stubRunner) Invoke(_ context.Context, q *model.ChatQuery) (*chat.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func successResult(answer string) *chat.Result {
	return &chat.Result{Success: &chat.Success{
		Answer: model.ChatMessage{
			ID:      uuid.New(),
			Role:    model.RoleAssistant,
			Content: answer,
			Date:    time.Now().UTC(),
		},
		Intent: chat.IntentGeneral,
	}}
}

func newTestRouter(repo *stubChatRepo, runner *stubRunner) http.Handler {
	controller := chat.NewController(repo, runner,
		model.AgentKey{Provider: "google", ModelKey: "gemini-2.5-flash"})
	return SetupRouter(core.Testing, controller)
}

func postChat(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/llm/chats", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubChatRepo{}, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateChatMessageCreated(t *testing.T) {
	repo := &stubChatRepo{}
	router := newTestRouter(repo, &stubRunner{result: successResult("Hi there!")})

	rec := postChat(t, router, `{"message":"Hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp chat.CreateChatMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Created", resp.Detail)
	require.Equal(t, "Hi there!", resp.Data.Answer.Content)

	// Question and answer are persisted as one exchange.
	require.Len(t, repo.appended, 2)
	require.Equal(t, model.RoleUser, repo.appended[0].Role)
	require.Equal(t, "Hello", repo.appended[0].Content)
	require.Equal(t, model.RoleAssistant, repo.appended[1].Role)
}

func TestCreateChatMessageDefaultsAgentKey(t *testing.T) {
	repo := &stubChatRepo{}
	router := newTestRouter(repo, &stubRunner{result: successResult("ok")})

	rec := postChat(t, router, `{"message":"Hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "google", repo.appended[0].Provider)
	require.Equal(t, "gemini-2.5-flash", repo.appended[0].ModelKey)
}

func TestCreateChatMessageInvalidPayload(t *testing.T) {
	router := newTestRouter(&stubChatRepo{}, &stubRunner{result: successResult("unused")})

	for _, body := range []string{`{}`, `{"message":"   "}`, `not json`} {
		rec := postChat(t, router, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestCreateChatMessageForbiddenAgent(t *testing.T) {
	router := newTestRouter(&stubChatRepo{}, &stubRunner{result: &chat.Result{
		Failure: &chat.Failure{Code: chat.FailureUnsupportedAgent, Cause: errors.New("unsupported llm agent: foo:bar")},
	}})

	rec := postChat(t, router, `{"message":"Hello","llm_provider":"foo","llm_key":"bar"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "forbidden LLM has been selected", resp["detail"])
}

func TestCreateChatMessageAgentInvocationFailed(t *testing.T) {
	router := newTestRouter(&stubChatRepo{}, &stubRunner{result: &chat.Result{
		Failure: &chat.Failure{Code: chat.FailureAgentInvocation, Cause: errors.New("provider unavailable")},
	}})

	rec := postChat(t, router, `{"message":"Hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Internal causes never leak to the client.
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "internal server error", resp["detail"])
	require.NotContains(t, rec.Body.String(), "provider unavailable")
}

func TestCreateChatMessageRunnerError(t *testing.T) {
	router := newTestRouter(&stubChatRepo{}, &stubRunner{err: errors.New("graph invocation failed")})

	rec := postChat(t, router, `{"message":"Hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListChatMessagesEmpty(t *testing.T) {
	router := newTestRouter(&stubChatRepo{}, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/llm/chats/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chat.ListChatMessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "OK", resp.Detail)
	require.Empty(t, resp.Data)
}

func TestListChatMessagesReturnsActiveRoom(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	repo := &stubChatRepo{rooms: []model.ChatRoom{{
		ID:    uuid.New(),
		Title: "Hello",
		Messages: []model.ChatMessage{
			{ID: uuid.New(), Role: model.RoleUser, Content: "Hello", Date: now},
			{ID: uuid.New(), Role: model.RoleAssistant, Content: "Hi!", Date: now.Add(time.Second)},
		},
		UpdatedAt: now,
	}}}
	router := newTestRouter(repo, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/llm/chats/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chat.ListChatMessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, "Hello", resp.Data[0].Content)
}
