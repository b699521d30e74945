package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Survey struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Title       string          `db:"title" json:"title"`
	Answers     json.RawMessage `db:"answers" json:"answers"`
	Score       *int            `db:"score" json:"score,omitempty"`
	SubmittedAt time.Time       `db:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
