package storage

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agents-play/server/internal/agent/model"
	errx "github.com/agents-play/server/internal/core/error"
)

type todoRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Title     string    `gorm:"not null;column:title"`
	Completed bool      `gorm:"not null;default:false;column:completed"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index;column:updated_at"`
}

func (todoRecord) TableName() string {
	return "todo"
}

func (r *todoRecord) toDomain() model.Todo {
	return model.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		UpdatedAt: r.UpdatedAt,
	}
}

// TodoStore implements model.TodoRepository over Postgres.
type TodoStore struct {
	db *gorm.DB
}

func NewTodoStore(db *gorm.DB) *TodoStore {
	return &TodoStore{db: db}
}

// Create persists a new uncompleted todo with the given title.
func (s *TodoStore) Create(ctx context.Context, title string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, errx.New(nil, http.StatusBadRequest, errx.InvalidPayloadMessage)
	}

	record := todoRecord{
		ID:    uuid.New(),
		Title: title,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return model.Todo{}, errx.WrapDatabase(err)
	}
	return record.toDomain(), nil
}

// List returns all todos ordered most-recently-updated first.
func (s *TodoStore) List(ctx context.Context) ([]model.Todo, error) {
	var records []todoRecord
	if err := s.db.WithContext(ctx).Order("updated_at desc").Find(&records).Error; err != nil {
		return nil, errx.WrapDatabase(err)
	}

	todos := make([]model.Todo, len(records))
	for i := range records {
		todos[i] = records[i].toDomain()
	}
	return todos, nil
}
