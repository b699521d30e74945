package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/internal/models"
)

// MessageStore is the persistence used by MessageService.
type MessageStore interface {
	CreateMessage(ctx context.Context, conversationID, senderID, receiverID uuid.UUID, content string) (*models.Message, error)
}

// MessageService is the single send path for REST and WebSocket. The message is
// committed first; live delivery afterwards is best-effort.
type MessageService struct {
	store     MessageStore
	publisher ChatPublisher
	activity  *ActivityLogger
	log       logrus.FieldLogger
}

func NewMessageService(store MessageStore, publisher ChatPublisher, activity *ActivityLogger, log logrus.FieldLogger) *MessageService {
	return &MessageService{store: store, publisher: publisher, activity: activity, log: log}
}

func (s *MessageService) Send(ctx context.Context, conversationID, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	msg, err := s.store.CreateMessage(ctx, conversationID, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, receiverID, NewMessageEvent(EventReceiveMessage, msg)); err != nil {
			s.log.WithError(err).WithField("message_id", msg.ID).Warn("live delivery failed; receiver will see it on next fetch")
		}
	}

	s.activity.RecordAsync(ActivityEvent{
		Type:     ActivityMessageSent,
		UserID:   senderID.String(),
		Metadata: map[string]string{"conversation_id": conversationID.String()},
	})
	return msg, nil
}
