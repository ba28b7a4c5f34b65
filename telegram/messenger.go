package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Messenger adapts the bot client to the outbound messaging capability the
// services consume. Participant ids arrive as strings (that is how the store
// keys them) and map onto Telegram user ids.
type Messenger struct {
	Client  *Client
	Timeout time.Duration
}

// NewMessenger wraps a client with a per-call timeout for fire-and-forget sends.
func NewMessenger(client *Client) *Messenger {
	return &Messenger{Client: client, Timeout: 15 * time.Second}
}

func (m *Messenger) userID(participantID string) (int64, error) {
	id, err := strconv.ParseInt(participantID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid participant id %q: %w", participantID, err)
	}
	return id, nil
}

func (m *Messenger) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.Timeout)
}

// SendDirectMessage delivers text to the participant's private chat.
func (m *Messenger) SendDirectMessage(participantID, text string) error {
	id, err := m.userID(participantID)
	if err != nil {
		return err
	}
	ctx, cancel := m.callCtx()
	defer cancel()
	return m.Client.SendMessage(ctx, id, text)
}

// SendGroupMessage delivers text to a cohort group.
func (m *Messenger) SendGroupMessage(groupChatID int64, text string) error {
	ctx, cancel := m.callCtx()
	defer cancel()
	return m.Client.SendMessage(ctx, groupChatID, text)
}

// RemoveFromGroup kicks the participant out of the cohort group.
func (m *Messenger) RemoveFromGroup(groupChatID int64, participantID string) error {
	id, err := m.userID(participantID)
	if err != nil {
		return err
	}
	ctx, cancel := m.callCtx()
	defer cancel()
	return m.Client.BanChatMember(ctx, groupChatID, id)
}

// RestoreToGroup lifts the removal so the participant can rejoin after a
// fresh payment — a one-shot expulsion, not a permanent ban.
func (m *Messenger) RestoreToGroup(groupChatID int64, participantID string) error {
	id, err := m.userID(participantID)
	if err != nil {
		return err
	}
	ctx, cancel := m.callCtx()
	defer cancel()
	return m.Client.UnbanChatMember(ctx, groupChatID, id)
}
