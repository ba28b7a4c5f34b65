// workers/update_poller.go — long-polls the Bot API and dispatches commands
// and membership events to the services.
package workers

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"challenge-streak-system/models"
	"challenge-streak-system/services"
	"challenge-streak-system/telegram"
)

const (
	pollTimeoutSec = 30
	errorBackoff   = 3 * time.Second
)

type UpdatePoller struct {
	Client     *telegram.Client
	Enrollment *services.EnrollmentService
	Reports    *services.ReportService
	Catalog    *services.CatalogService

	offset int64
}

func NewUpdatePoller(client *telegram.Client, enrollment *services.EnrollmentService, reports *services.ReportService, catalog *services.CatalogService) *UpdatePoller {
	return &UpdatePoller{
		Client:     client,
		Enrollment: enrollment,
		Reports:    reports,
		Catalog:    catalog,
	}
}

// Start runs the long-poll loop until ctx is cancelled.
func (w *UpdatePoller) Start(ctx context.Context) {
	log.Println("🔁 Starting Telegram update poller…")

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Telegram update poller stopped")
			return
		default:
		}

		updates, err := w.Client.GetUpdates(ctx, w.offset, pollTimeoutSec, []string{"message", "chat_member"})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("❌ [POLLER] getUpdates failed: %v", err)
			time.Sleep(errorBackoff)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= w.offset {
				w.offset = u.UpdateID + 1
			}
			// One bad update must not take the poller down.
			if err := w.handleUpdate(u); err != nil {
				log.Printf("❌ [POLLER] update %d: %v", u.UpdateID, err)
			}
		}
	}
}

func (w *UpdatePoller) handleUpdate(u telegram.Update) error {
	switch {
	case u.ChatMember != nil:
		return w.handleMembership(u.ChatMember)
	case u.Message != nil:
		return w.handleMessage(u.Message)
	}
	return nil
}

// handleMembership forwards a chat_member event as an enrollment signal. The
// enrollment service decides whether the group and status matter.
func (w *UpdatePoller) handleMembership(ev *telegram.ChatMemberUpdated) error {
	if ev.Chat == nil || ev.NewChatMember == nil || ev.NewChatMember.User == nil {
		return nil
	}
	participantID := strconv.FormatInt(ev.NewChatMember.User.ID, 10)
	return w.Enrollment.HandleMembershipUpdate(participantID, ev.Chat.ID, ev.NewChatMember.Status)
}

func (w *UpdatePoller) handleMessage(msg *telegram.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}

	command, arg := splitCommand(msg)
	switch command {
	case "/start":
		return w.handleStart(msg)
	case "/report":
		return w.handleReport(msg, arg)
	case "/stats":
		return w.handleStats(msg)
	}
	return nil
}

// handleStart replies with the payment-link menu, one button per challenge.
func (w *UpdatePoller) handleStart(msg *telegram.Message) error {
	var rows [][]telegram.InlineKeyboardButton
	for _, ch := range w.Catalog.All() {
		if ch.PayURL == "" {
			continue
		}
		label := strings.TrimSpace(ch.Emoji + " " + ch.Title)
		rows = append(rows, []telegram.InlineKeyboardButton{{Text: label, URL: ch.PayURL}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if len(rows) == 0 {
		return w.Client.SendMessage(ctx, msg.Chat.ID, services.TextStart)
	}
	return w.Client.SendMessageWithKeyboard(ctx, msg.Chat.ID, services.TextStart, &telegram.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (w *UpdatePoller) handleReport(msg *telegram.Message, arg string) error {
	participantID := strconv.FormatInt(msg.From.ID, 10)

	reply, err := w.Reports.RecordReport(participantID, classifyPayload(msg, arg))
	if err != nil {
		return err
	}
	if reply == "" {
		return nil // silent ignore (not enrolled)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Reply lands in the chat the report came from (group or DM), best-effort.
	if err := w.Client.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		log.Printf("⚠️ [POLLER] report reply to chat %d failed: %v", msg.Chat.ID, err)
	}
	return nil
}

func (w *UpdatePoller) handleStats(msg *telegram.Message) error {
	if !msg.Chat.IsGroup() {
		return nil
	}

	line, err := w.Reports.StatsLine(msg.Chat.ID)
	if err != nil {
		return err
	}
	if line == "" {
		return nil // not one of our cohort groups
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := w.Client.SendMessage(ctx, msg.Chat.ID, line); err != nil {
		log.Printf("⚠️ [POLLER] stats reply to chat %d failed: %v", msg.Chat.ID, err)
	}
	return nil
}

// splitCommand extracts the leading bot command (with any @BotName suffix
// stripped) and the remaining text. Captions count too, so a photo sent with
// "/report did my workout" is a command message.
func splitCommand(msg *telegram.Message) (command, arg string) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command = text
	if idx := strings.IndexAny(text, " \n"); idx >= 0 {
		command = text[:idx]
		arg = strings.TrimSpace(text[idx+1:])
	}
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return command, arg
}

// classifyPayload decides what proof a /report message carried: attached
// photo or video beats text, text after the command counts, a bare command
// carries nothing.
func classifyPayload(msg *telegram.Message, arg string) models.ReportPayload {
	switch {
	case len(msg.Photo) > 0:
		return models.PayloadPhoto
	case msg.Video != nil:
		return models.PayloadVideo
	case arg != "":
		return models.PayloadText
	default:
		return models.PayloadNone
	}
}
