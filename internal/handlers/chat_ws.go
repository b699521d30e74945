package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
	"github.com/AnshRaj112/serenify-care/internal/services"
)

const (
	chatReadLimit  = 64 * 1024
	chatPongWait   = 90 * time.Second
	chatPingPeriod = 30 * time.Second
	chatWriteWait  = 10 * time.Second
	chatReplyQueue = 16
)

// chatInbound is a client event on the live channel.
type chatInbound struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId,omitempty"`
	ReceiverID     string `json:"receiverId,omitempty"`
	MessageContent string `json:"messageContent,omitempty"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts non-browser clients and the configured CORS origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg == nil || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ChatWebSocket handles GET /ws/chat?token=. Browsers cannot set headers on the
// upgrade request, so the token may come from the query string.
func (h *Handler) ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	claims, err := h.sessions.Verify(token)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		h.respondError(w, r, apperrors.Unauthorized("Invalid authentication token"))
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		return
	}

	client := services.NewChatClient(userID)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	replies := make(chan services.ChatEvent, chatReplyQueue)
	done := make(chan struct{})
	go h.chatWriter(conn, client, replies, done)
	defer func() {
		close(done)
		h.hub.Unregister(client)
		conn.Close()
	}()

	reply := func(ev services.ChatEvent) {
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now().UTC()
		}
		select {
		case replies <- ev:
		default:
			h.log.WithField("user_id", userID).Warn("chat reply queue full, dropping event")
		}
	}

	conn.SetReadLimit(chatReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(chatPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("user_id", userID).Debug("chat connection closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(chatPongWait))

		var in chatInbound
		if err := json.Unmarshal(data, &in); err != nil {
			reply(services.ChatEvent{Type: services.EventError, Error: "Invalid event payload"})
			continue
		}
		h.handleChatEvent(r.Context(), userID, in, reply)
	}
}

func (h *Handler) handleChatEvent(ctx context.Context, userID uuid.UUID, in chatInbound, reply func(services.ChatEvent)) {
	switch in.Type {
	case services.EventPing:
		reply(services.ChatEvent{Type: services.EventPong})

	case services.EventJoinConversation:
		convID, err := uuid.Parse(in.ConversationID)
		if err != nil {
			reply(services.ChatEvent{Type: services.EventError, Error: "Invalid conversationId"})
			return
		}
		conv, err := h.store.GetConversation(ctx, convID)
		if err != nil {
			reply(services.ChatEvent{Type: services.EventError, ConversationID: in.ConversationID, Error: apperrors.PublicMessage(apperrors.From(err))})
			return
		}
		if !conv.HasParticipant(userID) {
			reply(services.ChatEvent{Type: services.EventError, ConversationID: in.ConversationID, Error: "You are not a participant in this conversation"})
			return
		}
		reply(services.ChatEvent{Type: services.EventJoinedConversation, ConversationID: in.ConversationID})

	case services.EventSendMessage:
		h.handleChatSend(ctx, userID, in, reply)

	default:
		reply(services.ChatEvent{Type: services.EventError, Error: "Unknown event type"})
	}
}

func (h *Handler) handleChatSend(ctx context.Context, userID uuid.UUID, in chatInbound, reply func(services.ChatEvent)) {
	fail := func(msg string) {
		reply(services.ChatEvent{Type: services.EventError, ConversationID: in.ConversationID, Error: msg})
	}

	convID, err := uuid.Parse(in.ConversationID)
	if err != nil {
		fail("Invalid conversationId")
		return
	}
	receiverID, err := uuid.Parse(in.ReceiverID)
	if err != nil {
		fail("Invalid receiverId")
		return
	}
	if in.SenderID != "" && in.SenderID != userID.String() {
		fail("You can only send messages as yourself")
		return
	}
	if !h.chatLimit.Allow(userID) {
		fail("You are sending messages too quickly.")
		return
	}

	msg, err := h.messages.Send(ctx, convID, userID, receiverID, strings.TrimSpace(in.MessageContent))
	if err != nil {
		appErr := apperrors.From(err)
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			h.log.WithError(appErr).WithField("user_id", userID).Error("chat send failed")
		}
		fail(apperrors.PublicMessage(appErr))
		return
	}
	reply(services.NewMessageEvent(services.EventMessageSent, msg))
}

// chatWriter is the connection's only writer. It drains hub deliveries and direct
// replies and keeps the connection alive with pings.
func (h *Handler) chatWriter(conn *websocket.Conn, client *services.ChatClient, replies <-chan services.ChatEvent, done <-chan struct{}) {
	ticker := time.NewTicker(chatPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	write := func(ev services.ChatEvent) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
		return conn.WriteJSON(ev) == nil
	}

	for {
		select {
		case ev, ok := <-client.Send:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if !write(ev) {
				return
			}
		case ev := <-replies:
			if !write(ev) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
