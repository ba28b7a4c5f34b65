package models

// ReportPayload classifies what proof a daily report carried.
type ReportPayload string

const (
	PayloadPhoto ReportPayload = "photo"
	PayloadVideo ReportPayload = "video"
	PayloadText  ReportPayload = "text"
	PayloadNone  ReportPayload = "none" // message had no recognizable proof
)

// Valid reports whether the payload counts as proof-of-activity.
func (p ReportPayload) Valid() bool {
	return p == PayloadPhoto || p == PayloadVideo || p == PayloadText
}

// ParticipantRecord is the per-participant streak state. Created lazily on
// first reference, never deleted — a participant may re-enroll indefinitely.
type ParticipantRecord struct {
	ID            string  `gorm:"primaryKey;type:uuid" json:"id"`
	ParticipantID string  `gorm:"uniqueIndex;not null" json:"participant_id"` // Telegram user id (stringified)
	ChallengeID   *string `gorm:"index" json:"challenge_id,omitempty"`        // unset until first enrollment
	Enrolled      bool    `gorm:"default:false" json:"enrolled"`              // currently active/paid participant
	ReportedToday bool    `gorm:"default:false" json:"reported_today"`        // authoritative for one calendar day
	Streak        int     `gorm:"default:0" json:"streak"`                    // consecutive compliant days

	Timestamps
}
