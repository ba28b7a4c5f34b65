package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"challenge-streak-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database. cache=shared keeps every
// pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Challenge{}, &models.ParticipantRecord{}))
	return db
}

// writeTempCatalog writes a catalog file and returns its path.
func writeTempCatalog(t *testing.T, defs string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "challenges.json")
	require.NoError(t, os.WriteFile(path, []byte(defs), 0o600))
	return path
}

// newTestCatalog writes a catalog file and loads it.
func newTestCatalog(t *testing.T, defs string) *CatalogService {
	t.Helper()

	catalog, err := LoadCatalog(writeTempCatalog(t, defs))
	require.NoError(t, err)
	return catalog
}

const testCatalogJSON = `[
	{
		"id": "training-7",
		"title": "Training, 7 days",
		"duration_days": 7,
		"start_date": "2026-06-01",
		"group_chat_id": -100111,
		"emoji": "🏋️",
		"pay_url": "https://pay.example/training"
	},
	{
		"id": "reading-21",
		"title": "Reading, 21 days",
		"duration_days": 21,
		"start_date": "2026-06-10",
		"group_chat_id": -100222,
		"emoji": "📚",
		"pay_url": "https://pay.example/reading"
	}
]`

type sentMessage struct {
	To   string
	Chat int64
	Text string
}

// fakeMessenger records outbound calls and can be told to fail per
// participant or per group.
type fakeMessenger struct {
	mu sync.Mutex

	directs  []sentMessage
	groups   []sentMessage
	removed  []sentMessage
	restored []sentMessage

	failDirectFor map[string]bool
	failGroup     map[int64]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		failDirectFor: make(map[string]bool),
		failGroup:     make(map[int64]bool),
	}
}

func (f *fakeMessenger) SendDirectMessage(participantID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDirectFor[participantID] {
		return fmt.Errorf("participant %s blocked the bot", participantID)
	}
	f.directs = append(f.directs, sentMessage{To: participantID, Text: text})
	return nil
}

func (f *fakeMessenger) SendGroupMessage(groupChatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGroup[groupChatID] {
		return fmt.Errorf("group %d unreachable", groupChatID)
	}
	f.groups = append(f.groups, sentMessage{Chat: groupChatID, Text: text})
	return nil
}

func (f *fakeMessenger) RemoveFromGroup(groupChatID int64, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGroup[groupChatID] {
		return fmt.Errorf("group %d unreachable", groupChatID)
	}
	f.removed = append(f.removed, sentMessage{To: participantID, Chat: groupChatID})
	return nil
}

func (f *fakeMessenger) RestoreToGroup(groupChatID int64, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGroup[groupChatID] {
		return fmt.Errorf("group %d unreachable", groupChatID)
	}
	f.restored = append(f.restored, sentMessage{To: participantID, Chat: groupChatID})
	return nil
}

func (f *fakeMessenger) removedCountFor(participantID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.removed {
		if m.To == participantID {
			n++
		}
	}
	return n
}
