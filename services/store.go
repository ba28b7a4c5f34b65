// services/store.go — durable participant records with serialized
// read-modify-write.
package services

import (
	"errors"
	"fmt"
	"sync"

	"challenge-streak-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParticipantStore owns every ParticipantRecord. All mutations go through
// Update, which holds a store-level critical section so a report racing an
// enrollment (or the nightly sweep) for the same participant never tears a
// read-modify-write. A single lock is fine at this write rate.
type ParticipantStore struct {
	DB *gorm.DB
	mu sync.Mutex
}

func NewParticipantStore(db *gorm.DB) *ParticipantStore {
	return &ParticipantStore{DB: db}
}

// defaultRecord is the state of a participant on first reference: unenrolled,
// streak 0.
func defaultRecord(participantID string) models.ParticipantRecord {
	return models.ParticipantRecord{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
	}
}

// Get returns the participant's record, creating the default one on first
// reference.
func (s *ParticipantStore) Get(participantID string) (models.ParticipantRecord, error) {
	return s.Update(participantID, nil)
}

// Update runs fn over the participant's record inside the store's critical
// section and persists the result in the same transaction. fn returning false
// (or a nil fn) skips the write. The returned record reflects the state after
// fn ran.
func (s *ParticipantStore) Update(participantID string, fn func(rec *models.ParticipantRecord) bool) (models.ParticipantRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec models.ParticipantRecord
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("participant_id = ?", participantID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = defaultRecord(participantID)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to create participant %s: %w", participantID, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to load participant %s: %w", participantID, err)
		}

		if fn == nil || !fn(&rec) {
			return nil
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save participant %s: %w", participantID, err)
		}
		return nil
	})
	return rec, err
}

// All returns every known participant record (enrolled or not), for snapshots.
func (s *ParticipantStore) All() ([]models.ParticipantRecord, error) {
	var recs []models.ParticipantRecord
	if err := s.DB.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	return recs, nil
}

// AllEnrolled returns the records the nightly sweep must evaluate.
func (s *ParticipantStore) AllEnrolled() ([]models.ParticipantRecord, error) {
	var recs []models.ParticipantRecord
	if err := s.DB.Where("enrolled = ?", true).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load enrolled participants: %w", err)
	}
	return recs, nil
}

// GroupStats counts, for one challenge, enrolled participants and how many of
// them have reported today.
func (s *ParticipantStore) GroupStats(challengeID string) (reported, total int64, err error) {
	base := s.DB.Model(&models.ParticipantRecord{}).
		Where("challenge_id = ? AND enrolled = ?", challengeID, true)

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count participants for %s: %w", challengeID, err)
	}
	if err := base.Session(&gorm.Session{}).Where("reported_today = ?", true).Count(&reported).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count reports for %s: %w", challengeID, err)
	}
	return reported, total, nil
}
