package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/models"
)

const surveyColumns = `id, user_id, title, answers, score, submitted_at, updated_at`

// SurveyUpdate holds optional survey fields; nil means unchanged.
type SurveyUpdate struct {
	Title   *string
	Answers json.RawMessage
	Score   *int
}

func (s *Store) CreateSurvey(ctx context.Context, userID uuid.UUID, title string, answers json.RawMessage, score *int) (*models.Survey, error) {
	var out models.Survey
	err := s.db.GetContext(ctx, &out,
		`INSERT INTO surveys (user_id, title, answers, score) VALUES ($1, $2, $3, $4) RETURNING `+surveyColumns,
		userID, title, string(answers), score)
	if err != nil {
		return nil, mapError(err, "Survey")
	}
	return &out, nil
}

func (s *Store) GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	var out models.Survey
	if err := s.db.GetContext(ctx, &out, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Survey")
	}
	return &out, nil
}

// ListSurveysByUser returns a user's surveys, newest first.
func (s *Store) ListSurveysByUser(ctx context.Context, userID uuid.UUID) ([]models.Survey, error) {
	var out []models.Survey
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+surveyColumns+` FROM surveys WHERE user_id = $1 ORDER BY submitted_at DESC, id`, userID)
	if err != nil {
		return nil, mapError(err, "Survey")
	}
	return nonNil(out), nil
}

func (s *Store) UpdateSurvey(ctx context.Context, id uuid.UUID, upd SurveyUpdate) (*models.Survey, error) {
	// lib/pq sends []byte as bytea, so JSON goes over the wire as text
	var answers *string
	if len(upd.Answers) > 0 {
		a := string(upd.Answers)
		answers = &a
	}
	var out models.Survey
	err := s.db.GetContext(ctx, &out,
		`UPDATE surveys SET
			title = COALESCE($2, title),
			answers = COALESCE($3::jsonb, answers),
			score = COALESCE($4, score),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+surveyColumns,
		id, upd.Title, answers, upd.Score)
	if err != nil {
		return nil, mapError(err, "Survey")
	}
	return &out, nil
}
