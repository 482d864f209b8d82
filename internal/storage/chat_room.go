package storage

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agents-play/server/internal/agent/model"
	errx "github.com/agents-play/server/internal/core/error"
)

// ChatRoomMaxTitleLength caps the room title derived from the first message.
const ChatRoomMaxTitleLength = 255

// messageList stores the room's messages as a single jsonb column.
type messageList []model.ChatMessage

func (m messageList) Value() (driver.Value, error) {
	if m == nil {
		m = messageList{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal chat messages: %w", err)
	}
	return string(b), nil
}

func (m *messageList) Scan(src any) error {
	if src == nil {
		*m = messageList{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported chat messages column type %T", src)
	}
	if err := json.Unmarshal(b, m); err != nil {
		return fmt.Errorf("unmarshal chat messages: %w", err)
	}
	return nil
}

type chatRoomRecord struct {
	ID        uuid.UUID   `gorm:"primaryKey;type:uuid;column:id"`
	Title     string      `gorm:"size:255;not null;column:title"`
	Messages  messageList `gorm:"type:jsonb;not null;column:messages"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime;index;column:updated_at"`
}

func (chatRoomRecord) TableName() string {
	return "chat_room"
}

func (r *chatRoomRecord) toDomain() model.ChatRoom {
	messages := make([]model.ChatMessage, len(r.Messages))
	copy(messages, r.Messages)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Date.Before(messages[j].Date)
	})
	return model.ChatRoom{
		ID:        r.ID,
		Title:     r.Title,
		Messages:  messages,
		UpdatedAt: r.UpdatedAt,
	}
}

// ChatRoomStore implements model.ChatRepository over Postgres.
type ChatRoomStore struct {
	db *gorm.DB
}

func NewChatRoomStore(db *gorm.DB) *ChatRoomStore {
	return &ChatRoomStore{db: db}
}

// ListRooms returns all rooms, most recently updated first, with each room's
// messages in chronological order.
func (s *ChatRoomStore) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	var records []chatRoomRecord
	if err := s.db.WithContext(ctx).Order("updated_at desc").Find(&records).Error; err != nil {
		return nil, errx.WrapDatabase(err)
	}

	rooms := make([]model.ChatRoom, len(records))
	for i := range records {
		rooms[i] = records[i].toDomain()
	}
	return rooms, nil
}

// AppendMessages folds messages into the room and commits in one transaction.
// A nil room creates one, deriving the title from the first message.
func (s *ChatRoomStore) AppendMessages(ctx context.Context, room *model.ChatRoom, messages []model.ChatMessage) (*model.ChatRoom, error) {
	if len(messages) == 0 {
		return nil, errx.New(nil, http.StatusBadRequest, errx.InvalidPayloadMessage)
	}

	var record chatRoomRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if room == nil {
			record = chatRoomRecord{
				ID:       uuid.New(),
				Title:    deriveTitle(messages[0].Content),
				Messages: messageList(messages),
			}
			return tx.Create(&record).Error
		}

		if err := tx.First(&record, "id = ?", room.ID).Error; err != nil {
			return err
		}
		record.Messages = append(record.Messages, messages...)
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, errx.WrapDatabase(err)
	}

	updated := record.toDomain()
	return &updated, nil
}

// deriveTitle truncates the first message content to the title column limit.
func deriveTitle(content string) string {
	title := strings.TrimSpace(content)
	runes := []rune(title)
	if len(runes) > ChatRoomMaxTitleLength {
		return string(runes[:ChatRoomMaxTitleLength])
	}
	return title
}
