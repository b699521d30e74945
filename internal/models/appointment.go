package models

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Terminal reports whether no further status change is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled
}

// CanTransitionTo enforces scheduled -> {completed, cancelled}.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s != AppointmentScheduled {
		return false
	}
	return next == AppointmentCompleted || next == AppointmentCancelled
}

type Appointment struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	StudentID   uuid.UUID         `db:"student_id" json:"student_id"`
	TherapistID uuid.UUID         `db:"therapist_id" json:"therapist_id"`
	ScheduledAt time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Notes       string            `db:"notes" json:"notes,omitempty"`
	CancelledAt *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CompletedAt *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}
