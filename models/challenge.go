package models

import (
	"time"
)

// Challenge is one fixed-length challenge flow (e.g. "Training, 7 days").
// Definitions come from the catalog file at startup and never change at
// runtime; the table copy exists for reporting joins only.
type Challenge struct {
	ID           string    `gorm:"primaryKey" json:"id"` // slug, e.g. "training-7-days"
	Title        string    `gorm:"not null" json:"title"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	StartDate    time.Time `gorm:"not null" json:"start_date"` // calendar date, no time-of-day
	GroupChatID  int64     `gorm:"uniqueIndex;not null" json:"group_chat_id"` // private cohort group
	Emoji        string    `json:"emoji,omitempty"`
	PayURL       string    `json:"pay_url,omitempty"` // payment link shown on /start

	Timestamps
}

// DayIndex returns the 1-based challenge day for the given date: 1 on the
// start date itself. Values outside [1, DurationDays] mean the challenge is
// not running on that date.
func (c *Challenge) DayIndex(today time.Time) int {
	return int(dateOnly(today).Sub(dateOnly(c.StartDate)).Hours()/24) + 1
}

// IsRunning reports whether the challenge window covers the given date.
func (c *Challenge) IsRunning(today time.Time) bool {
	day := c.DayIndex(today)
	return day >= 1 && day <= c.DurationDays
}

// dateOnly strips the time-of-day and zone so day arithmetic is DST-safe.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
