package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/internal/models"
)

// Live channel event types.
const (
	EventJoinConversation   = "joinConversation"
	EventSendMessage        = "sendMessage"
	EventPing               = "ping"
	EventPong               = "pong"
	EventReceiveMessage     = "receiveMessage"
	EventMessageSent        = "messageSent"
	EventJoinedConversation = "joinedConversation"
	EventError              = "error"

	chatUserChannelPrefix = "chat:user:"
	clientSendBuffer      = 32
)

// ChatEvent is the payload written to WebSocket clients and carried over Redis.
// Message events carry the flat senderId/receiverId/messageContent fields as well
// as the stored message.
type ChatEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversationId,omitempty"`
	SenderID       string          `json:"senderId,omitempty"`
	ReceiverID     string          `json:"receiverId,omitempty"`
	MessageContent string          `json:"messageContent,omitempty"`
	Message        *models.Message `json:"message,omitempty"`
	Error          string          `json:"error,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewMessageEvent builds a receiveMessage or messageSent event for msg.
func NewMessageEvent(eventType string, msg *models.Message) ChatEvent {
	return ChatEvent{
		Type:           eventType,
		ConversationID: msg.ConversationID.String(),
		SenderID:       msg.SenderID.String(),
		ReceiverID:     msg.ReceiverID.String(),
		MessageContent: msg.Content,
		Message:        msg,
	}
}

// ChatClient is one live connection. The hub writes to Send; the connection's
// writer goroutine drains it. Send is closed when the client is unregistered.
type ChatClient struct {
	UserID uuid.UUID
	Send   chan ChatEvent
}

func NewChatClient(userID uuid.UUID) *ChatClient {
	return &ChatClient{UserID: userID, Send: make(chan ChatEvent, clientSendBuffer)}
}

type delivery struct {
	userID uuid.UUID
	event  ChatEvent
}

// ChatHub owns the user id -> connections registry. All mutation happens on the
// goroutine running Run.
type ChatHub struct {
	register   chan *ChatClient
	unregister chan *ChatClient
	deliver    chan delivery
	count      chan countRequest
	done       chan struct{}
	log        logrus.FieldLogger

	clients map[uuid.UUID]map[*ChatClient]struct{}
}

type countRequest struct {
	userID uuid.UUID
	reply  chan int
}

func NewChatHub(log logrus.FieldLogger) *ChatHub {
	return &ChatHub{
		register:   make(chan *ChatClient),
		unregister: make(chan *ChatClient),
		deliver:    make(chan delivery, 256),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		log:        log,
		clients:    make(map[uuid.UUID]map[*ChatClient]struct{}),
	}
}

// Run processes hub operations until ctx ends, then closes every client.
func (h *ChatHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.Send)
				}
			}
			h.clients = nil
			return
		case c := <-h.register:
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*ChatClient]struct{})
				h.clients[c.UserID] = set
			}
			set[c] = struct{}{}
		case c := <-h.unregister:
			if set, ok := h.clients[c.UserID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.Send)
					if len(set) == 0 {
						delete(h.clients, c.UserID)
					}
				}
			}
		case d := <-h.deliver:
			for c := range h.clients[d.userID] {
				select {
				case c.Send <- d.event:
				default:
					h.log.WithField("user_id", d.userID).Warn("chat client buffer full, dropping event")
				}
			}
		case req := <-h.count:
			req.reply <- len(h.clients[req.userID])
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *ChatHub) Register(c *ChatClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *ChatHub) Unregister(c *ChatClient) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Deliver queues an event for every connection of userID.
func (h *ChatHub) Deliver(userID uuid.UUID, event ChatEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.deliver <- delivery{userID: userID, event: event}:
	case <-h.done:
	}
}

// Connections returns how many live connections userID has on this instance.
func (h *ChatHub) Connections(userID uuid.UUID) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{userID: userID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ChatPublisher hands an event to whichever instance holds userID's sockets.
type ChatPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event ChatEvent) error
}

// LocalPublisher delivers straight to the in-process hub.
type LocalPublisher struct {
	Hub *ChatHub
}

func (p LocalPublisher) Publish(_ context.Context, userID uuid.UUID, event ChatEvent) error {
	p.Hub.Deliver(userID, event)
	return nil
}

// RedisPublisher publishes to chat:user:<id>; every instance's subscriber delivers
// to its local connections.
type RedisPublisher struct {
	Client *redis.Client
}

func (p RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, event ChatEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Client.Publish(ctx, chatUserChannelPrefix+userID.String(), data).Err()
}

// NewChatPublisher picks Redis fan-out when a client is configured.
func NewChatPublisher(client *redis.Client, hub *ChatHub) ChatPublisher {
	if client == nil {
		return LocalPublisher{Hub: hub}
	}
	return RedisPublisher{Client: client}
}

// StartRedisChatSubscriber starts the instance's Redis listener; call it once.
func StartRedisChatSubscriber(ctx context.Context, client *redis.Client, hub *ChatHub, log logrus.FieldLogger) {
	if client == nil {
		return
	}
	go runRedisSubscriber(ctx, client, hub, log)
}

func runRedisSubscriber(ctx context.Context, client *redis.Client, hub *ChatHub, log logrus.FieldLogger) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, chatUserChannelPrefix+"*")
			defer pubsub.Close()

			log.WithField("pattern", chatUserChannelPrefix+"*").Info("chat redis subscriber started")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.WithError(err).Warn("redis subscriber error")
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}
				backoff = time.Second

				userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, chatUserChannelPrefix))
				if err != nil {
					continue
				}
				var event ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.WithError(err).Warn("failed to unmarshal chat event")
					continue
				}
				hub.Deliver(userID, event)
			}
		}()
	}
}
