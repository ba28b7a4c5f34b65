// services/catalog.go — static challenge definitions, loaded once at startup.
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"challenge-streak-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeDefinition mirrors one entry of the catalog file (CHALLENGES_FILE).
type ChallengeDefinition struct {
	ID           string `json:"id,omitempty"` // optional; slugged from the title when absent
	Title        string `json:"title"`
	DurationDays int    `json:"duration_days"`
	StartDate    string `json:"start_date"` // YYYY-MM-DD
	GroupChatID  int64  `json:"group_chat_id"`
	Emoji        string `json:"emoji,omitempty"`
	PayURL       string `json:"pay_url,omitempty"`
}

// CatalogService owns the immutable challenge catalog. Lookups only — the
// catalog never mutates after startup.
type CatalogService struct {
	byID    map[string]*models.Challenge
	byGroup map[int64]*models.Challenge
	ordered []*models.Challenge
}

// LoadCatalog reads and validates the catalog file. Any invalid definition is
// fatal for startup: a half-loaded catalog would silently drop cohort groups.
func LoadCatalog(path string) (*CatalogService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge catalog: %w", err)
	}

	var defs []ChallengeDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse challenge catalog %s: %w", path, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("challenge catalog %s defines no challenges", path)
	}

	c := &CatalogService{
		byID:    make(map[string]*models.Challenge, len(defs)),
		byGroup: make(map[int64]*models.Challenge, len(defs)),
	}

	for i, def := range defs {
		if def.Title == "" {
			return nil, fmt.Errorf("challenge #%d: title is required", i+1)
		}
		if def.DurationDays < 1 {
			return nil, fmt.Errorf("challenge %q: duration_days must be >= 1 (got %d)", def.Title, def.DurationDays)
		}
		if def.GroupChatID == 0 {
			return nil, fmt.Errorf("challenge %q: group_chat_id is required", def.Title)
		}
		startDate, err := time.Parse("2006-01-02", def.StartDate)
		if err != nil {
			return nil, fmt.Errorf("challenge %q: invalid start_date %q: %w", def.Title, def.StartDate, err)
		}

		id := def.ID
		if id == "" {
			id = slug.Make(def.Title)
		}

		ch := &models.Challenge{
			ID:           id,
			Title:        def.Title,
			DurationDays: def.DurationDays,
			StartDate:    startDate,
			GroupChatID:  def.GroupChatID,
			Emoji:        def.Emoji,
			PayURL:       def.PayURL,
		}

		if _, dup := c.byID[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge id %q", ch.ID)
		}
		if _, dup := c.byGroup[ch.GroupChatID]; dup {
			return nil, fmt.Errorf("group chat %d is bound to more than one challenge", ch.GroupChatID)
		}

		c.byID[ch.ID] = ch
		c.byGroup[ch.GroupChatID] = ch
		c.ordered = append(c.ordered, ch)
	}

	return c, nil
}

// Seed mirrors the catalog into the challenges table so reporting joins can
// use it. Upsert, same pattern as the sync workers: catalog wins on conflict.
func (s *CatalogService) Seed(db *gorm.DB) error {
	for _, ch := range s.ordered {
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "duration_days", "start_date", "group_chat_id", "emoji", "pay_url", "updated_at",
			}),
		}).Create(ch).Error; err != nil {
			return fmt.Errorf("failed to seed challenge %s: %w", ch.ID, err)
		}
	}
	return nil
}

// ByID looks a challenge up by its id.
func (s *CatalogService) ByID(id string) (*models.Challenge, bool) {
	ch, ok := s.byID[id]
	return ch, ok
}

// ByGroup looks a challenge up by its cohort group chat id.
func (s *CatalogService) ByGroup(chatID int64) (*models.Challenge, bool) {
	ch, ok := s.byGroup[chatID]
	return ch, ok
}

// All returns the challenges in catalog-file order.
func (s *CatalogService) All() []*models.Challenge {
	return s.ordered
}

// ListChallenges exposes the catalog over HTTP (read-only).
func (s *CatalogService) ListChallenges(c *fiber.Ctx) error {
	return c.JSON(s.ordered)
}
