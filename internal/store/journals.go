package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

const journalColumns = `id, user_id, title, content, mood, created_at, updated_at`

// JournalUpdate holds optional journal fields; nil means unchanged.
type JournalUpdate struct {
	Title   *string
	Content *string
	Mood    *string
}

func (s *Store) CreateJournal(ctx context.Context, j models.Journal) (*models.Journal, error) {
	var out models.Journal
	err := s.db.GetContext(ctx, &out,
		`INSERT INTO journals (user_id, title, content, mood) VALUES ($1, $2, $3, $4) RETURNING `+journalColumns,
		j.UserID, j.Title, j.Content, j.Mood)
	if err != nil {
		return nil, mapError(err, "Journal")
	}
	return &out, nil
}

func (s *Store) GetJournal(ctx context.Context, id uuid.UUID) (*models.Journal, error) {
	var out models.Journal
	if err := s.db.GetContext(ctx, &out, `SELECT `+journalColumns+` FROM journals WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Journal")
	}
	return &out, nil
}

// ListJournalsByUser returns a user's journals, newest first.
func (s *Store) ListJournalsByUser(ctx context.Context, userID uuid.UUID) ([]models.Journal, error) {
	var out []models.Journal
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, mapError(err, "Journal")
	}
	return nonNil(out), nil
}

func (s *Store) UpdateJournal(ctx context.Context, id uuid.UUID, upd JournalUpdate) (*models.Journal, error) {
	var out models.Journal
	err := s.db.GetContext(ctx, &out,
		`UPDATE journals SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			mood = COALESCE($4, mood),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+journalColumns,
		id, upd.Title, upd.Content, upd.Mood)
	if err != nil {
		return nil, mapError(err, "Journal")
	}
	return &out, nil
}

func (s *Store) DeleteJournal(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Journal")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("Journal not found")
	}
	return nil
}
