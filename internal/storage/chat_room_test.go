package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agents-play/server/internal/agent/model"
)

func TestDeriveTitle(t *testing.T) {
	require.Equal(t, "Hello there", deriveTitle("  Hello there \n"))

	long := strings.Repeat("a", 600)
	require.Len(t, deriveTitle(long), ChatRoomMaxTitleLength)

	// Rune-safe truncation for multi-byte content.
	multi := strings.Repeat("ä", 300)
	title := deriveTitle(multi)
	require.Equal(t, ChatRoomMaxTitleLength, len([]rune(title)))
}

func TestMessageListRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	original := messageList{
		{
			ID:       uuid.New(),
			Role:     model.RoleUser,
			Content:  "What's USD worth in EUR?",
			Provider: "google",
			ModelKey: "gemini-2.5-flash",
			Date:     now,
		},
		{
			ID:       uuid.New(),
			Role:     model.RoleAssistant,
			Content:  "About 0.85 EUR.",
			Provider: "google",
			ModelKey: "gemini-2.5-flash",
			Date:     now.Add(time.Second),
		},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var parsed messageList
	require.NoError(t, parsed.Scan(value))
	require.Equal(t, original, parsed)
}

func TestMessageListScanVariants(t *testing.T) {
	var fromBytes messageList
	require.NoError(t, fromBytes.Scan([]byte(`[]`)))
	require.Empty(t, fromBytes)

	var fromNil messageList
	require.NoError(t, fromNil.Scan(nil))
	require.Empty(t, fromNil)

	var fromBad messageList
	require.Error(t, fromBad.Scan(42))
}

func TestChatRoomRecordToDomainSortsChronologically(t *testing.T) {
	now := time.Now().UTC()
	record := chatRoomRecord{
		ID:    uuid.New(),
		Title: "Test",
		Messages: messageList{
			{ID: uuid.New(), Role: model.RoleAssistant, Content: "second", Date: now.Add(time.Minute)},
			{ID: uuid.New(), Role: model.RoleUser, Content: "first", Date: now},
		},
		UpdatedAt: now,
	}

	room := record.toDomain()
	require.Equal(t, "first", room.Messages[0].Content)
	require.Equal(t, "second", room.Messages[1].Content)
}
