package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agents-play/server/internal/agent/model"
	errx "github.com/agents-play/server/internal/core/error"
	logx "github.com/agents-play/server/pkg/logger"
)

// Controller exposes the chat operations behind the HTTP handlers. It owns
// the single-active-room convention: the most recently updated room is the
// conversation, and a nil room on append creates it.
type Controller struct {
	rooms      model.ChatRepository
	runner     Runner
	defaultKey model.AgentKey
}

func NewController(rooms model.ChatRepository, runner Runner, defaultKey model.AgentKey) *Controller {
	return &Controller{
		rooms:      rooms,
		runner:     runner,
		defaultKey: defaultKey,
	}
}

// CreateChatMessage runs the orchestrator for a new user message and persists
// the question/answer pair into the active room.
func (c *Controller) CreateChatMessage(ctx context.Context, payload CreateChatMessagePayload) (*CreateChatMessageResponse, error) {
	content := strings.TrimSpace(payload.Message)
	if content == "" {
		return nil, errx.New(nil, http.StatusBadRequest, errx.InvalidPayloadMessage)
	}

	provider := payload.Provider
	if provider == "" {
		provider = c.defaultKey.Provider
	}
	modelKey := payload.ModelKey
	if modelKey == "" {
		modelKey = c.defaultKey.ModelKey
	}

	rooms, err := c.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	var room *model.ChatRoom
	var history []model.ChatMessage
	if len(rooms) > 0 {
		room = &rooms[0]
		history = room.Messages
	}

	question := model.ChatMessage{
		ID:       uuid.New(),
		Role:     model.RoleUser,
		Content:  content,
		Provider: provider,
		ModelKey: modelKey,
		Date:     time.Now().UTC(),
	}

	result, err := c.runner.Invoke(ctx, &model.ChatQuery{
		Question: question,
		History:  history,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Orchestrator graph invocation failed")
		return nil, errx.New(err, http.StatusInternalServerError, errx.SystemErrorMessage)
	}

	if !result.IsOK() {
		failure := result.Failure
		switch failure.Code {
		case FailureUnsupportedAgent:
			return nil, errx.New(failure.Cause, http.StatusForbidden, errx.ForbiddenAgentMessage)
		default:
			logx.Error().
				Str("failure_code", string(failure.Code)).
				Err(failure.Cause).
				Msg("Orchestrator run failed")
			return nil, errx.New(failure.Cause, http.StatusInternalServerError, errx.SystemErrorMessage)
		}
	}

	answer := result.Success.Answer
	updated, err := c.rooms.AppendMessages(ctx, room, []model.ChatMessage{question, answer})
	if err != nil {
		return nil, err
	}

	return &CreateChatMessageResponse{
		Detail: "Created",
		Data: ChatExchange{
			Room: RoomMetadata{
				ID:        updated.ID,
				Title:     updated.Title,
				UpdatedAt: updated.UpdatedAt,
			},
			Answer: answer,
		},
	}, nil
}

// ListChatMessages returns the active room's history in chronological order.
// No room yet means an empty history, not an error.
func (c *Controller) ListChatMessages(ctx context.Context) (*ListChatMessagesResponse, error) {
	rooms, err := c.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	if len(rooms) == 0 {
		return &ListChatMessagesResponse{Detail: "OK", Data: []model.ChatMessage{}}, nil
	}

	return &ListChatMessagesResponse{Detail: "OK", Data: rooms[0].Messages}, nil
}
