package model

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a single todo item. No update or delete path exists.
type Todo struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}
