package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/services"
)

func dialChat(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) services.ChatEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var ev services.ChatEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

// ping waits for the pong, which proves the connection is registered with the hub.
func ping(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(chatInbound{Type: services.EventPing}))
	assert.Equal(t, services.EventPong, readEvent(t, conn).Type)
}

func TestChatWebSocketRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatWebSocketPingAndUnknownEvent(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialChat(t, srv, env.token(t, uuid.New(), models.RoleStudent))
	ping(t, conn)

	require.NoError(t, conn.WriteJSON(chatInbound{Type: "dance"}))
	ev := readEvent(t, conn)
	assert.Equal(t, services.EventError, ev.Type)
	assert.Equal(t, "Unknown event type", ev.Error)
}

func TestChatWebSocketJoinRequiresParticipant(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	me, a, b, convID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	env.mock.ExpectQuery("FROM conversations WHERE id").WithArgs(convID).
		WillReturnRows(sqlmock.NewRows(conversationCols).AddRow(convID.String(), a.String(), b.String(), time.Now(), nil))

	conn := dialChat(t, srv, env.token(t, me, models.RoleStudent))
	require.NoError(t, conn.WriteJSON(chatInbound{Type: services.EventJoinConversation, ConversationID: convID.String()}))
	ev := readEvent(t, conn)
	assert.Equal(t, services.EventError, ev.Type)
	assert.Equal(t, "You are not a participant in this conversation", ev.Error)
}

func TestChatWebSocketSendDeliversToReceiver(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice, bob, convID, msgID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	sender := dialChat(t, srv, env.token(t, alice, models.RoleStudent))
	receiver := dialChat(t, srv, env.token(t, bob, models.RoleTherapist))
	ping(t, sender)
	ping(t, receiver)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery("FOR UPDATE").WithArgs(convID).
		WillReturnRows(sqlmock.NewRows(conversationCols).AddRow(convID.String(), alice.String(), bob.String(), now, nil))
	env.mock.ExpectQuery("INSERT INTO messages").WithArgs(convID, alice, bob, "hello").
		WillReturnRows(sqlmock.NewRows(messageCols).AddRow(msgID.String(), 1, convID.String(), alice.String(), bob.String(), "hello", now, false))
	env.mock.ExpectExec("UPDATE conversations SET last_message_at").WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	require.NoError(t, sender.WriteJSON(chatInbound{
		Type:           services.EventSendMessage,
		ConversationID: convID.String(),
		ReceiverID:     bob.String(),
		MessageContent: "hello",
	}))

	ack := readEvent(t, sender)
	assert.Equal(t, services.EventMessageSent, ack.Type)
	require.NotNil(t, ack.Message)
	assert.Equal(t, msgID, ack.Message.ID)
	assert.Equal(t, convID.String(), ack.ConversationID)
	assert.Equal(t, alice.String(), ack.SenderID)
	assert.Equal(t, bob.String(), ack.ReceiverID)
	assert.Equal(t, "hello", ack.MessageContent)

	got := readEvent(t, receiver)
	assert.Equal(t, services.EventReceiveMessage, got.Type)
	assert.Equal(t, convID.String(), got.ConversationID)
	require.NotNil(t, got.Message)
	assert.Equal(t, "hello", got.Message.Content)
	assert.Equal(t, alice.String(), got.SenderID)
	assert.Equal(t, bob.String(), got.ReceiverID)
	assert.Equal(t, "hello", got.MessageContent)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
