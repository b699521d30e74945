package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	StudentID   uuid.UUID  `db:"student_id" json:"student_id"`
	TherapistID *uuid.UUID `db:"therapist_id" json:"therapist_id,omitempty"`
	Amount      float64    `db:"amount" json:"amount"`
	Description string     `db:"description" json:"description,omitempty"`
	IsPaid      bool       `db:"is_paid" json:"is_paid"`
	IssuedAt    time.Time  `db:"issued_at" json:"issued_at"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}
