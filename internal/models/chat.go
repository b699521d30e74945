package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation pairs two users. The pair is unordered and unique.
type Conversation struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ParticipantOne uuid.UUID  `db:"participant_one" json:"participant_one"`
	ParticipantTwo uuid.UUID  `db:"participant_two" json:"participant_two"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	LastMessageAt  *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantOne == userID || c.ParticipantTwo == userID
}

// ConversationDetails adds participant display names.
type ConversationDetails struct {
	Conversation
	ParticipantOneName string `db:"participant_one_name" json:"participant_one_name"`
	ParticipantTwoName string `db:"participant_two_name" json:"participant_two_name"`
}

// Message is stored in PostgreSQL; Seq breaks ties between equal sent_at values.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Seq            int64     `db:"seq" json:"-"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id" json:"sender_id"`
	ReceiverID     uuid.UUID `db:"receiver_id" json:"receiver_id"`
	Content        string    `db:"content" json:"content"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
	IsRead         bool      `db:"is_read" json:"is_read"`
}
