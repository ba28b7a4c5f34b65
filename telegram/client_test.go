package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer runs a fake Bot API endpoint and captures the last request.
func newTestServer(t *testing.T, respond func(method string, body map[string]any) APIResponse) (*Client, *struct {
	Method string
	Body   map[string]any
}) {
	t.Helper()

	last := &struct {
		Method string
		Body   map[string]any
	}{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path is /bot<token>/<method>
		last.Method = r.URL.Path[len("/bottest-token/"):]
		require.NoError(t, json.NewDecoder(r.Body).Decode(&last.Body))

		resp := respond(last.Method, last.Body)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	return NewClientWithBaseURL("test-token", srv.URL), last
}

func okResult(t *testing.T, v any) APIResponse {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return APIResponse{OK: true, Result: raw}
}

func TestSendMessage(t *testing.T) {
	client, last := newTestServer(t, func(method string, body map[string]any) APIResponse {
		return okResult(t, Message{MessageID: 7})
	})

	err := client.SendMessage(context.Background(), -100111, "Day 1/7!")
	require.NoError(t, err)

	assert.Equal(t, "sendMessage", last.Method)
	assert.Equal(t, float64(-100111), last.Body["chat_id"])
	assert.Equal(t, "Day 1/7!", last.Body["text"])
}

func TestSendMessageWithKeyboard(t *testing.T) {
	client, last := newTestServer(t, func(method string, body map[string]any) APIResponse {
		return okResult(t, Message{MessageID: 8})
	})

	kb := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "🏋️ Training", URL: "https://pay.example/training"}},
	}}
	err := client.SendMessageWithKeyboard(context.Background(), 42, "Pick one", kb)
	require.NoError(t, err)

	assert.Equal(t, "sendMessage", last.Method)
	assert.Contains(t, last.Body, "reply_markup")
}

func TestBanAndUnbanChatMember(t *testing.T) {
	client, last := newTestServer(t, func(method string, body map[string]any) APIResponse {
		return okResult(t, true)
	})

	require.NoError(t, client.BanChatMember(context.Background(), -100111, 42))
	assert.Equal(t, "banChatMember", last.Method)
	assert.Equal(t, false, last.Body["revoke_messages"])

	require.NoError(t, client.UnbanChatMember(context.Background(), -100111, 42))
	assert.Equal(t, "unbanChatMember", last.Method)
	assert.Equal(t, true, last.Body["only_if_banned"])
}

func TestGetUpdates(t *testing.T) {
	client, last := newTestServer(t, func(method string, body map[string]any) APIResponse {
		return okResult(t, []Update{
			{UpdateID: 100, Message: &Message{MessageID: 1, Text: "/report done", Chat: &Chat{ID: 5, Type: "private"}}},
			{UpdateID: 101},
		})
	})

	updates, err := client.GetUpdates(context.Background(), 100, 30, []string{"message", "chat_member"})
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, int64(100), updates[0].UpdateID)
	assert.Equal(t, "/report done", updates[0].Message.Text)

	assert.Equal(t, "getUpdates", last.Method)
	assert.Equal(t, float64(100), last.Body["offset"])
	assert.Equal(t, float64(30), last.Body["timeout"])
}

func TestAPIErrorSurfaces(t *testing.T) {
	client, _ := newTestServer(t, func(method string, body map[string]any) APIResponse {
		return APIResponse{OK: false, ErrorCode: 403, Description: "Forbidden: bot was blocked by the user"}
	})

	err := client.SendMessage(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "blocked")
}
