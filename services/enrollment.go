// services/enrollment.go — binds participants to challenges on membership
// signals.
package services

import (
	"fmt"
	"log"

	"challenge-streak-system/models"

	"github.com/gofiber/fiber/v2"
)

// Membership statuses that mean "is now an active member of the group".
// Anything else (left, kicked, restricted) is not an enrollment signal.
func isActiveMemberStatus(status string) bool {
	return status == "member" || status == "administrator" || status == "creator"
}

type EnrollmentService struct {
	Store     *ParticipantStore
	Catalog   *CatalogService
	Messenger Messenger
}

func NewEnrollmentService(store *ParticipantStore, catalog *CatalogService, messenger Messenger) *EnrollmentService {
	return &EnrollmentService{Store: store, Catalog: catalog, Messenger: messenger}
}

// HandleMembershipUpdate processes one membership-change event. Events for
// groups the catalog doesn't know (the bot sits in other chats too) and
// statuses other than "now a member" are silent no-ops.
func (s *EnrollmentService) HandleMembershipUpdate(participantID string, groupChatID int64, newStatus string) error {
	if !isActiveMemberStatus(newStatus) {
		return nil
	}
	ch, ok := s.Catalog.ByGroup(groupChatID)
	if !ok {
		return nil
	}
	return s.Enroll(participantID, ch.ID)
}

// Enroll upserts the participant's record: bound to the challenge, enrolled,
// streak and daily flag reset. Unknown challenge ids are ignored.
func (s *EnrollmentService) Enroll(participantID, challengeID string) error {
	ch, ok := s.Catalog.ByID(challengeID)
	if !ok {
		return nil
	}

	_, err := s.Store.Update(participantID, func(rec *models.ParticipantRecord) bool {
		id := ch.ID
		rec.ChallengeID = &id
		rec.Enrolled = true
		rec.Streak = 0
		rec.ReportedToday = false
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to enroll %s in %s: %w", participantID, ch.ID, err)
	}

	log.Printf("✅ [ENROLL] participant %s joined challenge %s", participantID, ch.ID)

	// Welcome DM is best-effort: the participant may have blocked private
	// messages, and enrollment must not depend on delivery.
	if err := s.Messenger.SendDirectMessage(participantID, fmt.Sprintf(textWelcomeRules, ch.Title)); err != nil {
		log.Printf("⚠️ [ENROLL] welcome DM to %s failed: %v", participantID, err)
	}
	return nil
}

// EnrollEndpoint lets the gateway inject an enrollment signal directly, e.g.
// after an out-of-band payment confirmation.
func (s *EnrollmentService) EnrollEndpoint(c *fiber.Ctx) error {
	var body struct {
		ParticipantID string `json:"participant_id"`
		GroupChatID   int64  `json:"group_chat_id"`
		Status        string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ParticipantID == "" || body.GroupChatID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "participant_id and group_chat_id are required"})
	}
	if body.Status == "" {
		body.Status = "member"
	}

	if err := s.HandleMembershipUpdate(body.ParticipantID, body.GroupChatID, body.Status); err != nil {
		log.Printf("❌ [ENROLL] endpoint failed for %s: %v", body.ParticipantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "enrollment failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
