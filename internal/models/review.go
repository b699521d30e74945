package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TherapistID uuid.UUID  `db:"therapist_id" json:"therapist_id"`
	StudentID   *uuid.UUID `db:"student_id" json:"student_id,omitempty"`
	Rating      int        `db:"rating" json:"rating"`
	Comment     string     `db:"comment" json:"comment,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
