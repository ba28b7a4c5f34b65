// services/enforcement.go — the daily reminder pass and the end-of-day
// miss-evaluation sweep.
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"challenge-streak-system/models"
)

// SnapshotSink receives the post-sweep participant snapshot (R2 in
// production). A nil sink disables backups.
type SnapshotSink interface {
	Upload(key string, data []byte) error
}

type EnforcementService struct {
	Store     *ParticipantStore
	Catalog   *CatalogService
	Messenger Messenger
	Snapshots SnapshotSink

	sweepMu sync.Mutex
}

func NewEnforcementService(store *ParticipantStore, catalog *CatalogService, messenger Messenger, snapshots SnapshotSink) *EnforcementService {
	return &EnforcementService{Store: store, Catalog: catalog, Messenger: messenger, Snapshots: snapshots}
}

// SendReminders posts the day-counter reminder into every cohort group whose
// challenge window covers today. Challenges not yet started or already over
// are skipped; one failed group must not block the rest.
func (s *EnforcementService) SendReminders(today time.Time) {
	for _, ch := range s.Catalog.All() {
		day := ch.DayIndex(today)
		if day < 1 || day > ch.DurationDays {
			continue
		}
		text := fmt.Sprintf(textReminder, ch.Emoji, day, ch.DurationDays)
		if err := s.Messenger.SendGroupMessage(ch.GroupChatID, text); err != nil {
			log.Printf("⚠️ [REMINDER] group %d (%s): %v", ch.GroupChatID, ch.ID, err)
			continue
		}
		log.Printf("🔔 [REMINDER] challenge %s day %d/%d", ch.ID, day, ch.DurationDays)
	}
}

// RunNightlySweep evaluates every enrolled participant for the day that just
// ended. Overlapping fires are skipped: a sweep never runs concurrently with
// itself.
func (s *EnforcementService) RunNightlySweep(today time.Time) {
	if !s.sweepMu.TryLock() {
		log.Println("⚠️ [SWEEP] previous sweep still in progress, skipping this fire")
		return
	}
	defer s.sweepMu.Unlock()

	recs, err := s.Store.AllEnrolled()
	if err != nil {
		log.Printf("❌ [SWEEP] failed to load participants: %v", err)
		return
	}

	evicted := 0
	for _, rec := range recs {
		wasEvicted, err := s.evaluateParticipant(rec.ParticipantID)
		if err != nil {
			// One broken record must not stall the rest of the sweep.
			log.Printf("❌ [SWEEP] participant %s: %v", rec.ParticipantID, err)
			continue
		}
		if wasEvicted {
			evicted++
		}
	}

	log.Printf("✅ [SWEEP] done: %d participant(s) evaluated, %d evicted", len(recs), evicted)
	s.uploadSnapshot(today)
}

// evaluateParticipant decides compliance for one participant and applies the
// consequences. The decision and the record mutation happen atomically, so a
// second sweep over an unchanged store finds evicted participants already
// unenrolled and leaves them alone.
func (s *EnforcementService) evaluateParticipant(participantID string) (evicted bool, err error) {
	var missed *models.Challenge

	_, err = s.Store.Update(participantID, func(rec *models.ParticipantRecord) bool {
		if !rec.Enrolled {
			// Already evicted (or a stale listing) — nothing to evaluate.
			return false
		}
		if rec.ReportedToday {
			// Compliant: clear the flag for the next day, streak untouched.
			rec.ReportedToday = false
			return true
		}

		// Non-compliant: out of the game. The streak value is left as-is;
		// only a fresh enrollment resets it, and an unenrolled record's
		// streak is dead anyway.
		if rec.ChallengeID != nil {
			if ch, ok := s.Catalog.ByID(*rec.ChallengeID); ok {
				missed = ch
			}
		}
		rec.Enrolled = false
		rec.ReportedToday = false
		evicted = true
		return true
	})
	if err != nil {
		return false, err
	}
	if !evicted {
		return false, nil
	}

	log.Printf("🚪 [SWEEP] participant %s missed their report, evicted", participantID)

	// Expulsion notifications go out after the record is already persisted;
	// their failure cannot undo the eviction, and each one is swallowed
	// independently.
	if err := s.Messenger.SendDirectMessage(participantID, textMissed); err != nil {
		log.Printf("⚠️ [SWEEP] missed-report DM to %s failed: %v", participantID, err)
	}
	if missed != nil {
		// Remove-then-restore: a one-shot expulsion. The participant stays
		// eligible to rejoin via a fresh payment, no new invite needed.
		if err := s.Messenger.RemoveFromGroup(missed.GroupChatID, participantID); err != nil {
			log.Printf("⚠️ [SWEEP] failed to remove %s from group %d: %v", participantID, missed.GroupChatID, err)
		}
		if err := s.Messenger.RestoreToGroup(missed.GroupChatID, participantID); err != nil {
			log.Printf("⚠️ [SWEEP] failed to restore %s to group %d: %v", participantID, missed.GroupChatID, err)
		}
	}
	return true, nil
}

// uploadSnapshot backs the full participant set up to the snapshot sink,
// best-effort, as a dated full-object rewrite.
func (s *EnforcementService) uploadSnapshot(today time.Time) {
	if s.Snapshots == nil {
		return
	}

	recs, err := s.Store.All()
	if err != nil {
		log.Printf("⚠️ [SNAPSHOT] failed to load participants: %v", err)
		return
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		log.Printf("⚠️ [SNAPSHOT] failed to encode participants: %v", err)
		return
	}

	key := fmt.Sprintf("snapshots/participants-%s.json", today.Format("2006-01-02"))
	if err := s.Snapshots.Upload(key, data); err != nil {
		log.Printf("⚠️ [SNAPSHOT] upload of %s failed: %v", key, err)
		return
	}
	log.Printf("💾 [SNAPSHOT] uploaded %s (%d record(s))", key, len(recs))
}
