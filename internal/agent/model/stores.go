package model

import (
	"context"
)

// ChatRepository is the persistence contract for the single active chat room.
type ChatRepository interface {
	// ListRooms returns all chat rooms ordered most-recently-updated first.
	ListRooms(ctx context.Context) ([]ChatRoom, error)

	// AppendMessages folds messages into the given room and commits in a single
	// transaction. A nil room creates one, deriving the title from the first
	// message. Concurrent appenders to the same room race last-write-wins.
	AppendMessages(ctx context.Context, room *ChatRoom, messages []ChatMessage) (*ChatRoom, error)
}

// TodoRepository is the persistence contract for todo items.
type TodoRepository interface {
	// Create persists a new uncompleted todo with the given title.
	Create(ctx context.Context, title string) (Todo, error)

	// List returns all todos ordered most-recently-updated first.
	List(ctx context.Context) ([]Todo, error)
}
