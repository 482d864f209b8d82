package model

import (
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// MessageRole is the author side of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single persisted conversation entry. Immutable once created.
type ChatMessage struct {
	ID       uuid.UUID   `json:"id"`
	Role     MessageRole `json:"role"`
	Content  string      `json:"content"`
	Provider string      `json:"llm_provider"`
	ModelKey string      `json:"llm_key"`
	Date     time.Time   `json:"date"`
}

// AsLLMMessage strips persistence metadata down to the completion-capability shape.
func (m ChatMessage) AsLLMMessage() *schema.Message {
	if m.Role == RoleAssistant {
		return schema.AssistantMessage(m.Content, nil)
	}
	return schema.UserMessage(m.Content)
}

// ProviderGoogle is the provider key for Gemini-backed agents.
const ProviderGoogle = "google"

// AgentKey identifies a configured agent by provider and model key.
type AgentKey struct {
	Provider string
	ModelKey string
}

func (k AgentKey) String() string {
	return fmt.Sprintf("%s:%s", k.Provider, k.ModelKey)
}

// ChatRoom holds the ordered message history of the single active room.
// Messages are chronological, oldest first.
type ChatRoom struct {
	ID        uuid.UUID
	Title     string
	Messages  []ChatMessage
	UpdatedAt time.Time
}

// ChatQuery is the orchestrator graph input: the new user question plus the
// room's prior history in chronological order.
type ChatQuery struct {
	Question ChatMessage
	History  []ChatMessage
}

// AgentKey extracts the requested agent identity from the question.
func (q *ChatQuery) AgentKey() AgentKey {
	return AgentKey{Provider: q.Question.Provider, ModelKey: q.Question.ModelKey}
}
