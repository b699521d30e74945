package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

var appointmentCols = []string{"id", "student_id", "therapist_id", "scheduled_at", "status", "notes",
	"cancelled_at", "completed_at", "created_at", "updated_at"}

func appointmentRow(id uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(appointmentCols).
		AddRow(id.String(), uuid.NewString(), uuid.NewString(), now.Add(time.Hour), status, "", nil, nil, now, now)
}

func TestScheduleAppointmentLinksRelationship(t *testing.T) {
	s, mock := newMockStore(t)
	id, student, therapist := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").WithArgs(student).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("student"))
	mock.ExpectQuery("FROM therapists").WithArgs(therapist).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO appointments").WillReturnRows(appointmentRow(id, "scheduled"))
	mock.ExpectExec("INSERT INTO student_therapists").WithArgs(student, therapist).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := s.ScheduleAppointment(context.Background(), student, therapist, time.Now().Add(time.Hour), "")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, models.AppointmentScheduled, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleAppointmentUnknownStudent(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))
	mock.ExpectRollback()

	_, err := s.ScheduleAppointment(context.Background(), uuid.New(), uuid.New(), time.Now(), "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Student not found", apperrors.From(err).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleAppointmentUnknownTherapist(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("student"))
	mock.ExpectQuery("FROM therapists").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := s.ScheduleAppointment(context.Background(), uuid.New(), uuid.New(), time.Now(), "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, "Therapist not found", apperrors.From(err).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelAppointmentIsIdempotent(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(id).WillReturnRows(appointmentRow(id, "cancelled"))
	mock.ExpectCommit()

	a, err := s.CancelAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelScheduledAppointment(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(appointmentRow(id, "scheduled"))
	mock.ExpectQuery("UPDATE appointments SET status = 'cancelled'").WillReturnRows(appointmentRow(id, "cancelled"))
	mock.ExpectCommit()

	a, err := s.CancelAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCancelled, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelCompletedAppointmentIsConflict(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(appointmentRow(id, "completed"))
	mock.ExpectRollback()

	_, err := s.CancelAppointment(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentRejectsTerminalAndBadTransitions(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(appointmentRow(id, "completed"))
	mock.ExpectRollback()

	notes := "moved"
	_, err := s.UpdateAppointment(context.Background(), id, AppointmentUpdate{Notes: &notes})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(appointmentRow(id, "scheduled"))
	mock.ExpectRollback()

	bogus := models.AppointmentStatus("rescheduled")
	_, err = s.UpdateAppointment(context.Background(), id, AppointmentUpdate{Status: &bogus})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentCompletes(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(appointmentRow(id, "scheduled"))
	mock.ExpectQuery("UPDATE appointments SET").
		WithArgs(id, nil, nil, "completed").
		WillReturnRows(appointmentRow(id, "completed"))
	mock.ExpectCommit()

	done := models.AppointmentCompleted
	a, err := s.UpdateAppointment(context.Background(), id, AppointmentUpdate{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompleted, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointmentNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM appointments").WillReturnRows(sqlmock.NewRows(appointmentCols))

	_, err := s.GetAppointment(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCompleteOverdueAppointments(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE appointments SET status = 'completed'").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.CompleteOverdueAppointments(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
