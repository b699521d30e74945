package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

const appointmentColumns = `id, student_id, therapist_id, scheduled_at, status, notes,
	cancelled_at, completed_at, created_at, updated_at`

// AppointmentUpdate holds optional appointment fields; nil means unchanged.
type AppointmentUpdate struct {
	ScheduledAt *time.Time
	Notes       *string
	Status      *models.AppointmentStatus
}

// ScheduleAppointment inserts a scheduled appointment and links the student to the
// therapist in the same transaction.
func (s *Store) ScheduleAppointment(ctx context.Context, studentID, therapistID uuid.UUID, at time.Time, notes string) (*models.Appointment, error) {
	var a models.Appointment
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireStudent(ctx, tx, studentID); err != nil {
			return err
		}
		if err := requireTherapist(ctx, tx, therapistID); err != nil {
			return err
		}
		err := tx.GetContext(ctx, &a,
			`INSERT INTO appointments (student_id, therapist_id, scheduled_at, status, notes)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+appointmentColumns,
			studentID, therapistID, at.UTC(), models.AppointmentScheduled, notes)
		if err != nil {
			return mapError(err, "Appointment")
		}
		return linkStudentTherapist(ctx, tx, studentID, therapistID)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.GetContext(ctx, &a, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Appointment")
	}
	return &a, nil
}

// UpdateAppointment changes time, notes or status. Terminal appointments cannot change
// and status only moves scheduled -> completed|cancelled.
func (s *Store) UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*models.Appointment, error) {
	var a models.Appointment
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &a,
			`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id); err != nil {
			return mapError(err, "Appointment")
		}
		if a.Status.Terminal() {
			return apperrors.Conflict("Appointment is already " + string(a.Status))
		}

		status := a.Status
		if upd.Status != nil && *upd.Status != a.Status {
			if !a.Status.CanTransitionTo(*upd.Status) {
				return apperrors.Conflict("Cannot change appointment status from " + string(a.Status) + " to " + string(*upd.Status))
			}
			status = *upd.Status
		}

		var at *time.Time
		if upd.ScheduledAt != nil {
			utc := upd.ScheduledAt.UTC()
			at = &utc
		}

		err := tx.GetContext(ctx, &a,
			`UPDATE appointments SET
				scheduled_at = COALESCE($2, scheduled_at),
				notes = COALESCE($3, notes),
				status = $4,
				cancelled_at = CASE WHEN $4 = 'cancelled' THEN NOW() ELSE cancelled_at END,
				completed_at = CASE WHEN $4 = 'completed' THEN NOW() ELSE completed_at END,
				updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+appointmentColumns,
			id, at, upd.Notes, status)
		return mapError(err, "Appointment")
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CancelAppointment soft-cancels. Cancelling a cancelled appointment returns it unchanged;
// a completed appointment cannot be cancelled.
func (s *Store) CancelAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &a,
			`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id); err != nil {
			return mapError(err, "Appointment")
		}
		switch a.Status {
		case models.AppointmentCancelled:
			return nil
		case models.AppointmentCompleted:
			return apperrors.Conflict("Completed appointments cannot be cancelled")
		}
		err := tx.GetContext(ctx, &a,
			`UPDATE appointments SET status = 'cancelled', cancelled_at = NOW(), updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+appointmentColumns, id)
		return mapError(err, "Appointment")
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListStudentAppointments returns a student's appointments by scheduled time ascending.
func (s *Store) ListStudentAppointments(ctx context.Context, studentID uuid.UUID) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+appointmentColumns+` FROM appointments WHERE student_id = $1 ORDER BY scheduled_at, id`, studentID)
	if err != nil {
		return nil, mapError(err, "Appointment")
	}
	return nonNil(out), nil
}

// ListTherapistAppointments returns a therapist's appointments by scheduled time ascending.
func (s *Store) ListTherapistAppointments(ctx context.Context, therapistID uuid.UUID) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+appointmentColumns+` FROM appointments WHERE therapist_id = $1 ORDER BY scheduled_at, id`, therapistID)
	if err != nil {
		return nil, mapError(err, "Appointment")
	}
	return nonNil(out), nil
}

// CompleteOverdueAppointments marks scheduled appointments that started before cutoff
// as completed and returns how many changed.
func (s *Store) CompleteOverdueAppointments(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		 WHERE status = 'scheduled' AND scheduled_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, mapError(err, "Appointment")
	}
	return res.RowsAffected()
}
