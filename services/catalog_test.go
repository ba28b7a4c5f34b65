package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog := newTestCatalog(t, testCatalogJSON)

	require.Len(t, catalog.All(), 2)

	ch, ok := catalog.ByID("training-7")
	require.True(t, ok)
	assert.Equal(t, "Training, 7 days", ch.Title)
	assert.Equal(t, 7, ch.DurationDays)
	assert.Equal(t, int64(-100111), ch.GroupChatID)

	byGroup, ok := catalog.ByGroup(-100222)
	require.True(t, ok)
	assert.Equal(t, "reading-21", byGroup.ID)

	_, ok = catalog.ByGroup(-999)
	assert.False(t, ok)
}

func TestLoadCatalogSlugsMissingID(t *testing.T) {
	catalog := newTestCatalog(t, `[
		{"title": "Quit Smoking 21 Days", "duration_days": 21, "start_date": "2026-06-01", "group_chat_id": -100333}
	]`)

	ch, ok := catalog.ByID("quit-smoking-21-days")
	require.True(t, ok)
	assert.Equal(t, "Quit Smoking 21 Days", ch.Title)
}

func TestLoadCatalogRejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"zero duration": `[{"title": "X", "duration_days": 0, "start_date": "2026-06-01", "group_chat_id": -1}]`,
		"bad date":      `[{"title": "X", "duration_days": 7, "start_date": "June 1st", "group_chat_id": -1}]`,
		"no group":      `[{"title": "X", "duration_days": 7, "start_date": "2026-06-01"}]`,
		"empty catalog": `[]`,
		"duplicate group": `[
			{"title": "A", "duration_days": 7, "start_date": "2026-06-01", "group_chat_id": -1},
			{"title": "B", "duration_days": 7, "start_date": "2026-06-01", "group_chat_id": -1}
		]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeTempCatalog(t, body)
			_, err := LoadCatalog(path)
			assert.Error(t, err)
		})
	}
}

func TestCatalogSeedUpserts(t *testing.T) {
	db := newTestDB(t)
	catalog := newTestCatalog(t, testCatalogJSON)

	require.NoError(t, catalog.Seed(db))
	// Seeding twice must not fail or duplicate rows.
	require.NoError(t, catalog.Seed(db))

	var count int64
	require.NoError(t, db.Table("challenges").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestChallengeDayIndexBoundaries(t *testing.T) {
	catalog := newTestCatalog(t, testCatalogJSON)
	ch, ok := catalog.ByID("training-7")
	require.True(t, ok)

	start := time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, ch.DayIndex(start))
	assert.True(t, ch.IsRunning(start))

	lastDay := start.AddDate(0, 0, 6)
	assert.Equal(t, 7, ch.DayIndex(lastDay))
	assert.True(t, ch.IsRunning(lastDay))

	dayAfter := start.AddDate(0, 0, 8)
	assert.Equal(t, 9, ch.DayIndex(dayAfter))
	assert.False(t, ch.IsRunning(dayAfter))

	before := start.AddDate(0, 0, -1)
	assert.Equal(t, 0, ch.DayIndex(before))
	assert.False(t, ch.IsRunning(before))
}
