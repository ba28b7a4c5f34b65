// services/report.go — daily report intake and the per-group stats query.
package services

import (
	"fmt"
	"log"
	"strconv"

	"challenge-streak-system/models"

	"github.com/gofiber/fiber/v2"
)

type ReportService struct {
	Store   *ParticipantStore
	Catalog *CatalogService
}

func NewReportService(store *ParticipantStore, catalog *CatalogService) *ReportService {
	return &ReportService{Store: store, Catalog: catalog}
}

// RecordReport applies one report and returns the reply text for the sender,
// or "" when the report must be silently ignored (not an enrolled participant).
func (s *ReportService) RecordReport(participantID string, payload models.ReportPayload) (string, error) {
	if !payload.Valid() {
		// The message carried no recognizable proof. Only enrolled
		// participants get the correction prompt.
		rec, err := s.Store.Get(participantID)
		if err != nil {
			return "", err
		}
		if !rec.Enrolled {
			return "", nil
		}
		return textAskReport, nil
	}

	ignored := false
	rec, err := s.Store.Update(participantID, func(rec *models.ParticipantRecord) bool {
		if !rec.Enrolled {
			ignored = true
			return false
		}
		// Every valid report counts again, even a second one the same day:
		// there is no same-day dedup window.
		rec.ReportedToday = true
		rec.Streak++
		return true
	})
	if err != nil {
		return "", fmt.Errorf("failed to record report for %s: %w", participantID, err)
	}
	if ignored {
		return "", nil
	}

	log.Printf("📝 [REPORT] participant %s reported (%s), streak now %d", participantID, payload, rec.Streak)
	return fmt.Sprintf(textReportSaved, rec.Streak), nil
}

// GroupStats answers (reportedToday, totalEnrolled) for the challenge bound
// to the group. ok is false when the group is not a cohort group.
func (s *ReportService) GroupStats(groupChatID int64) (reported, total int64, ok bool, err error) {
	ch, found := s.Catalog.ByGroup(groupChatID)
	if !found {
		return 0, 0, false, nil
	}
	reported, total, err = s.Store.GroupStats(ch.ID)
	if err != nil {
		return 0, 0, false, err
	}
	return reported, total, true, nil
}

// StatsLine formats the /stats reply for a cohort group, or "" for chats the
// catalog doesn't know.
func (s *ReportService) StatsLine(groupChatID int64) (string, error) {
	reported, total, ok, err := s.GroupStats(groupChatID)
	if err != nil || !ok {
		return "", err
	}
	return fmt.Sprintf(textStats, reported, total), nil
}

// SubmitReportEndpoint accepts a report from the gateway. The kind field is
// one of photo/video/text/none; anything unknown is treated as none.
func (s *ReportService) SubmitReportEndpoint(c *fiber.Ctx) error {
	var body struct {
		ParticipantID string `json:"participant_id"`
		Kind          string `json:"kind"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ParticipantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "participant_id is required"})
	}

	reply, err := s.RecordReport(body.ParticipantID, models.ReportPayload(body.Kind))
	if err != nil {
		log.Printf("❌ [REPORT] endpoint failed for %s: %v", body.ParticipantID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record report"})
	}

	rec, err := s.Store.Get(body.ParticipantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load participant"})
	}
	return c.JSON(fiber.Map{
		"accepted": rec.Enrolled && models.ReportPayload(body.Kind).Valid(),
		"streak":   rec.Streak,
		"reply":    reply,
	})
}

// GroupStatsEndpoint exposes the per-group stats query.
func (s *ReportService) GroupStatsEndpoint(c *fiber.Ctx) error {
	chatID, err := strconv.ParseInt(c.Params("chat_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}

	reported, total, ok, err := s.GroupStats(chatID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no challenge bound to this group"})
	}
	return c.JSON(fiber.Map{"reported": reported, "total": total})
}

// GetParticipantEndpoint returns one participant's current record (read-only).
func (s *ReportService) GetParticipantEndpoint(c *fiber.Ctx) error {
	participantID := c.Params("participant_id")
	if participantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "participant id is required"})
	}
	rec, err := s.Store.Get(participantID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load participant"})
	}
	return c.JSON(rec)
}
