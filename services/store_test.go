package services

import (
	"testing"

	"challenge-streak-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreatesDefaultRecordLazily(t *testing.T) {
	store := NewParticipantStore(newTestDB(t))

	rec, err := store.Get("1001")
	require.NoError(t, err)

	assert.Equal(t, "1001", rec.ParticipantID)
	assert.False(t, rec.Enrolled)
	assert.False(t, rec.ReportedToday)
	assert.Equal(t, 0, rec.Streak)
	assert.Nil(t, rec.ChallengeID)
	assert.NotEmpty(t, rec.ID)

	// Second reference returns the same record, not a new one.
	again, err := store.Get("1001")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
}

func TestStoreUpdatePersists(t *testing.T) {
	store := NewParticipantStore(newTestDB(t))

	updated, err := store.Update("1002", func(rec *models.ParticipantRecord) bool {
		rec.Enrolled = true
		rec.Streak = 3
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Streak)

	reloaded, err := store.Get("1002")
	require.NoError(t, err)
	assert.True(t, reloaded.Enrolled)
	assert.Equal(t, 3, reloaded.Streak)
}

func TestStoreUpdateSkipsWriteWhenFnDeclines(t *testing.T) {
	store := NewParticipantStore(newTestDB(t))

	_, err := store.Update("1003", func(rec *models.ParticipantRecord) bool {
		rec.Streak = 99 // must not be persisted
		return false
	})
	require.NoError(t, err)

	rec, err := store.Get("1003")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Streak)
}

func TestStoreGroupStats(t *testing.T) {
	store := NewParticipantStore(newTestDB(t))
	challengeID := "training-7"

	// 5 enrolled, 3 reported; plus one evicted straggler that must not count.
	for i, reported := range []bool{true, true, true, false, false} {
		id := string(rune('a' + i))
		r := reported
		_, err := store.Update(id, func(rec *models.ParticipantRecord) bool {
			rec.ChallengeID = &challengeID
			rec.Enrolled = true
			rec.ReportedToday = r
			return true
		})
		require.NoError(t, err)
	}
	_, err := store.Update("evicted", func(rec *models.ParticipantRecord) bool {
		rec.ChallengeID = &challengeID
		rec.Enrolled = false
		rec.ReportedToday = true
		return true
	})
	require.NoError(t, err)

	reported, total, err := store.GroupStats(challengeID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reported)
	assert.Equal(t, int64(5), total)
}

func TestStoreAllEnrolled(t *testing.T) {
	store := NewParticipantStore(newTestDB(t))

	for _, id := range []string{"e1", "e2"} {
		_, err := store.Update(id, func(rec *models.ParticipantRecord) bool {
			rec.Enrolled = true
			return true
		})
		require.NoError(t, err)
	}
	_, err := store.Get("bystander")
	require.NoError(t, err)

	enrolled, err := store.AllEnrolled()
	require.NoError(t, err)
	assert.Len(t, enrolled, 2)

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
