package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

const conversationColumns = `id, participant_one, participant_two, created_at, last_message_at`

const conversationPairQuery = `SELECT ` + conversationColumns + ` FROM conversations
	WHERE LEAST(participant_one, participant_two) = LEAST($1::uuid, $2::uuid)
	  AND GREATEST(participant_one, participant_two) = GREATEST($1::uuid, $2::uuid)`

// CreateConversation returns the conversation for the unordered pair {a, b}, creating it
// when absent. created reports whether a new row was inserted.
func (s *Store) CreateConversation(ctx context.Context, a, b uuid.UUID) (conv *models.Conversation, created bool, err error) {
	if a == b {
		return nil, false, apperrors.BadRequest("Participants must be two different users")
	}

	var c models.Conversation
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.QueryRowxContext(ctx,
			`SELECT COUNT(*) FROM users WHERE id IN ($1, $2)`, a, b).Scan(&n); err != nil {
			return mapError(err, "User")
		}
		if n != 2 {
			return apperrors.BadRequest("Participant not found")
		}

		err := tx.GetContext(ctx, &c, conversationPairQuery, a, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return mapError(err, "Conversation")
		}

		// A concurrent create for the same pair makes the insert a no-op; read the winner's row.
		err = tx.GetContext(ctx, &c,
			`INSERT INTO conversations (participant_one, participant_two) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING
			 RETURNING `+conversationColumns, a, b)
		if errors.Is(err, sql.ErrNoRows) {
			return mapError(tx.GetContext(ctx, &c, conversationPairQuery, a, b), "Conversation")
		}
		if err != nil {
			return mapError(err, "Conversation")
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &c, created, nil
}

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var c models.Conversation
	if err := s.db.GetContext(ctx, &c, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Conversation")
	}
	return &c, nil
}

// GetConversationDetails returns the conversation with both participants' names.
func (s *Store) GetConversationDetails(ctx context.Context, id uuid.UUID) (*models.ConversationDetails, error) {
	var c models.ConversationDetails
	err := s.db.GetContext(ctx, &c, `
		SELECT c.id, c.participant_one, c.participant_two, c.created_at, c.last_message_at,
			u1.first_name || ' ' || u1.last_name AS participant_one_name,
			u2.first_name || ' ' || u2.last_name AS participant_two_name
		FROM conversations c
		JOIN users u1 ON u1.id = c.participant_one
		JOIN users u2 ON u2.id = c.participant_two
		WHERE c.id = $1`, id)
	if err != nil {
		return nil, mapError(err, "Conversation")
	}
	return &c, nil
}

// ListConversationsByUser returns the user's conversations, most recent activity first.
func (s *Store) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]models.ConversationDetails, error) {
	var out []models.ConversationDetails
	err := s.db.SelectContext(ctx, &out, `
		SELECT c.id, c.participant_one, c.participant_two, c.created_at, c.last_message_at,
			u1.first_name || ' ' || u1.last_name AS participant_one_name,
			u2.first_name || ' ' || u2.last_name AS participant_two_name
		FROM conversations c
		JOIN users u1 ON u1.id = c.participant_one
		JOIN users u2 ON u2.id = c.participant_two
		WHERE c.participant_one = $1 OR c.participant_two = $1
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC, c.id`, userID)
	if err != nil {
		return nil, mapError(err, "Conversation")
	}
	return nonNil(out), nil
}
