package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

const messageColumns = `id, seq, conversation_id, sender_id, receiver_id, content, sent_at, is_read`

// CreateMessage stores a message and bumps the conversation's last_message_at in one
// transaction. Sender and receiver must be the conversation's two participants.
func (s *Store) CreateMessage(ctx context.Context, conversationID, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.BadRequest("Message content is required")
	}
	if senderID == receiverID {
		return nil, apperrors.BadRequest("Sender and receiver must differ")
	}

	var m models.Message
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var c models.Conversation
		if err := tx.GetContext(ctx, &c,
			`SELECT `+conversationColumns+` FROM conversations WHERE id = $1 FOR UPDATE`, conversationID); err != nil {
			return mapError(err, "Conversation")
		}
		if !c.HasParticipant(senderID) || !c.HasParticipant(receiverID) {
			return apperrors.BadRequest("Sender and receiver must be the conversation participants")
		}

		if err := tx.GetContext(ctx, &m,
			`INSERT INTO messages (conversation_id, sender_id, receiver_id, content)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+messageColumns,
			conversationID, senderID, receiverID, content); err != nil {
			return mapError(err, "Message")
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE conversations SET last_message_at = $2 WHERE id = $1`, conversationID, m.SentAt)
		return mapError(err, "Conversation")
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns a conversation's messages in send order.
func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	var out []models.Message
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+messageColumns+` FROM messages WHERE conversation_id = $1 ORDER BY sent_at, seq`, conversationID)
	if err != nil {
		return nil, mapError(err, "Message")
	}
	return nonNil(out), nil
}

func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var m models.Message
	if err := s.db.GetContext(ctx, &m, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Message")
	}
	return &m, nil
}

// MarkMessageRead sets is_read. Marking a read message again is a no-op.
func (s *Store) MarkMessageRead(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var m models.Message
	err := s.db.GetContext(ctx, &m,
		`UPDATE messages SET is_read = TRUE WHERE id = $1 RETURNING `+messageColumns, id)
	if err != nil {
		return nil, mapError(err, "Message")
	}
	return &m, nil
}
