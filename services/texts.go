package services

// All user-visible bot texts in one place, so wording changes never touch
// handler logic.
const (
	// TextStart is the /start greeting; the poller pairs it with the
	// payment-link keyboard built from the catalog.
	TextStart = "Hi! Pick a challenge and complete the payment to join."

	textWelcomeRules = "✅ Payment confirmed! You are in \"%s\".\n\n" +
		"👉 Rules:\n" +
		"• Report EVERY day with /report (photo/video/text).\n" +
		"• Miss a report and the bot removes you from the group, no refund.\n" +
		"• Your streak counts consecutive days. Good luck! 🚀"

	textAskReport   = "Send a photo, video or text report about your day."
	textReportSaved = "✅ Saved! Your streak: %d 🔥"
	textReminder    = "%s Day %d/%d! Don't forget your /report."
	textMissed      = "⚠️ You missed a report. Your streak is reset — try again tomorrow!"
	textStats       = "%d/%d participants have reported today."
)
