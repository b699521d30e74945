package models

import (
	"time"

	"github.com/google/uuid"
)

type Therapist struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	LicenseNumber     string    `db:"license_number" json:"license_number"`
	Specialization    string    `db:"specialization" json:"specialization,omitempty"`
	YearsOfExperience int       `db:"years_of_experience" json:"years_of_experience"`
	MonthlyRate       float64   `db:"monthly_rate" json:"monthly_rate"`
	IsAvailable       bool      `db:"is_available" json:"is_available"`
	CertificateURL    string    `db:"certificate_url" json:"certificate_url,omitempty"`
	Bio               string    `db:"bio" json:"bio,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// TherapistDetails is a therapist joined with its user record, login email and review summary.
type TherapistDetails struct {
	Therapist
	FirstName     string  `db:"first_name" json:"first_name"`
	LastName      string  `db:"last_name" json:"last_name"`
	Email         string  `db:"email" json:"email"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
}

// StudentSummary is a student as seen from a therapist's relationship list.
type StudentSummary struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Email      string    `db:"email" json:"email"`
	School     string    `db:"school" json:"school,omitempty"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
