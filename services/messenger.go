package services

// Messenger is the outbound messaging capability (Telegram in production).
// Every call is best-effort: callers log and discard errors instead of
// propagating them, so one undeliverable message never stalls a sweep or
// fails an enrollment. The next scheduled cycle is the retry boundary.
type Messenger interface {
	SendDirectMessage(participantID, text string) error
	SendGroupMessage(groupChatID int64, text string) error
	RemoveFromGroup(groupChatID int64, participantID string) error
	RestoreToGroup(groupChatID int64, participantID string) error
}
