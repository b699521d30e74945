package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/models"
)

const reviewColumns = `id, therapist_id, student_id, rating, comment, created_at, updated_at`

// ReviewSummary is a therapist's reviews with their average rating.
type ReviewSummary struct {
	TherapistID   uuid.UUID       `json:"therapist_id"`
	AverageRating float64         `json:"average_rating"`
	Count         int             `json:"count"`
	Reviews       []models.Review `json:"reviews"`
}

// ReviewUpdate holds optional review fields; nil means unchanged.
type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

func (s *Store) CreateReview(ctx context.Context, r models.Review) (*models.Review, error) {
	if err := requireTherapist(ctx, s.db, r.TherapistID); err != nil {
		return nil, err
	}
	var out models.Review
	err := s.db.GetContext(ctx, &out,
		`INSERT INTO reviews (therapist_id, student_id, rating, comment) VALUES ($1, $2, $3, $4) RETURNING `+reviewColumns,
		r.TherapistID, r.StudentID, r.Rating, r.Comment)
	if err != nil {
		return nil, mapError(err, "Review")
	}
	return &out, nil
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var out models.Review
	if err := s.db.GetContext(ctx, &out, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Review")
	}
	return &out, nil
}

// ListTherapistReviews returns the therapist's reviews, newest first, with the average rating.
func (s *Store) ListTherapistReviews(ctx context.Context, therapistID uuid.UUID) (*ReviewSummary, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		`SELECT `+reviewColumns+` FROM reviews WHERE therapist_id = $1 ORDER BY created_at DESC, id`, therapistID)
	if err != nil {
		return nil, mapError(err, "Review")
	}
	summary := &ReviewSummary{TherapistID: therapistID, Reviews: nonNil(reviews), Count: len(reviews)}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		summary.AverageRating = float64(total) / float64(len(reviews))
	}
	return summary, nil
}

func (s *Store) UpdateReview(ctx context.Context, id uuid.UUID, upd ReviewUpdate) (*models.Review, error) {
	var out models.Review
	err := s.db.GetContext(ctx, &out,
		`UPDATE reviews SET rating = COALESCE($2, rating), comment = COALESCE($3, comment), updated_at = NOW()
		 WHERE id = $1 RETURNING `+reviewColumns,
		id, upd.Rating, upd.Comment)
	if err != nil {
		return nil, mapError(err, "Review")
	}
	return &out, nil
}
