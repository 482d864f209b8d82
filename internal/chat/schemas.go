package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/agents-play/server/internal/agent/model"
)

// CreateChatMessagePayload is the request body for posting a chat message.
type CreateChatMessagePayload struct {
	Message  string `json:"message" binding:"required"`
	Provider string `json:"llm_provider"`
	ModelKey string `json:"llm_key"`
}

// RoomMetadata is the room summary returned alongside a finalized exchange.
type RoomMetadata struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatExchange couples the finalized assistant answer with its room.
type ChatExchange struct {
	Room   RoomMetadata      `json:"room"`
	Answer model.ChatMessage `json:"answer"`
}

// CreateChatMessageResponse is the envelope for a created exchange.
type CreateChatMessageResponse struct {
	Detail string       `json:"detail"`
	Data   ChatExchange `json:"data"`
}

// ListChatMessagesResponse is the envelope for the room's message history.
type ListChatMessagesResponse struct {
	Detail string              `json:"detail"`
	Data   []model.ChatMessage `json:"data"`
}
