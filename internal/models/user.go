package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleTherapist Role = "therapist"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTherapist
}

// User is the identity record shared by students and therapists.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Role      Role      `db:"role" json:"role"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Bio       string    `db:"bio" json:"bio,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Credential is the email + password hash bound one-to-one to a user.
type Credential struct {
	UserID       uuid.UUID `db:"user_id" json:"-"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // never returned in JSON
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// Student is the student-specific profile.
type Student struct {
	UserID           uuid.UUID `db:"user_id" json:"user_id"`
	School           string    `db:"school" json:"school,omitempty"`
	YearOfStudy      int       `db:"year_of_study" json:"year_of_study,omitempty"`
	EmergencyContact string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// UserProfile is a user joined with its login email.
type UserProfile struct {
	User
	Email string `db:"email" json:"email"`
}

// AccountAuditEntry records a change to an account (registration, email or password changes).
type AccountAuditEntry struct {
	ID         int64     `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Action     string    `db:"action" json:"action"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

const (
	AccountActionRegistered     = "registered"
	AccountActionProfileUpdated = "profile_updated"
	AccountActionEmailChanged   = "email_changed"
	AccountActionPasswordChange = "password_changed"
	AccountActionPasswordReset  = "password_reset_direct"
)
